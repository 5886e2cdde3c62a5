/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/errors"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "docstore.yaml")
	content := fmt.Sprintf(`log:
  level: warn
connections:
  default:
    driver: sqlite
    dsn: %s
    auto_migrate: true
`, filepath.Join(dir, "docs.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v), s)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)

	var info docstore.VersionInfo
	decodeJSON(t, out, &info)
	assert.Equal(t, docstore.Version, info.Version)

	out, err = run(t, "", "version", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "version: "+docstore.Version)

	_, err = run(t, "", "version", "-o", "xml")
	assert.Error(t, err)
}

func TestDocumentCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "save", "articles", "-c", cfg, "--id", "a1", "--data", `{"title":"Hello","n":2}`)
	require.NoError(t, err)
	var saved map[string]any
	decodeJSON(t, out, &saved)
	assert.Equal(t, "a1", saved["id"])
	assert.Equal(t, float64(1), saved["_version"])
	assert.Equal(t, "Hello", saved["title"])

	_, err = run(t, "", "save", "articles", "-c", cfg, "--id", "a1", "--data", `{"title":"Again"}`)
	assert.True(t, errors.IsAlreadyExists(err))

	out, err = run(t, "", "save", "articles", "-c", cfg, "--id", "a1", "--existing", "--data", `{"title":"Updated"}`)
	require.NoError(t, err)
	decodeJSON(t, out, &saved)
	assert.Equal(t, float64(2), saved["_version"])

	out, err = run(t, "title: From stdin\n", "save", "articles", "-c", cfg)
	require.NoError(t, err)
	decodeJSON(t, out, &saved)
	assert.NotEmpty(t, saved["id"])
	assert.Equal(t, "From stdin", saved["title"])

	out, err = run(t, "", "get", "articles", "a1", "-c", cfg, "-o", "yaml")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Updated", got["title"])

	out, err = run(t, "", "find", "articles", "-c", cfg, "--where", "title=Updated")
	require.NoError(t, err)
	var found []map[string]any
	decodeJSON(t, out, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "a1", found[0]["id"])

	out, err = run(t, "", "find", "articles", "-c", cfg, "--match", "title=From*")
	require.NoError(t, err)
	decodeJSON(t, out, &found)
	assert.Len(t, found, 1)

	out, err = run(t, "", "find", "articles", "-c", cfg, "--count")
	require.NoError(t, err)
	var count map[string]int
	decodeJSON(t, out, &count)
	assert.Equal(t, 2, count["count"])

	_, err = run(t, "", "find", "articles", "popular", "-c", cfg)
	assert.True(t, errors.IsValidationError(err))

	out, err = run(t, "", "delete", "articles", "a1", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Document deleted: articles/a1")

	_, err = run(t, "", "get", "articles", "a1", "-c", cfg)
	assert.True(t, errors.IsNotFound(err))
}

func TestParseAssignment(t *testing.T) {
	field, value, err := parseAssignment("n=4")
	require.NoError(t, err)
	assert.Equal(t, "n", field)
	assert.Equal(t, 4, value)

	_, value, err = parseAssignment("ok=true")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	_, value, err = parseAssignment("path=a=b")
	require.NoError(t, err)
	assert.Equal(t, "a=b", value)

	_, value, err = parseAssignment("tags=[a, b]")
	require.NoError(t, err)
	assert.Equal(t, "[a, b]", value)

	_, _, err = parseAssignment("novalue")
	assert.Error(t, err)
}
