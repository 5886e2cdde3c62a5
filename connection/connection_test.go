/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package connection

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/datastore/sqlstore"
	"github.com/suparena/docstore/errors"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestConnection(t *testing.T) {
	client := mock.New().WithDefaultIndex("fallback")

	conn := New("main", client, WithIndex("blog"), WithLogger(quietLogger()))
	assert.Equal(t, "main", conn.Name())
	assert.Same(t, client, conn.Client())
	assert.Equal(t, "blog", conn.IndexName())
	assert.Equal(t, "blog", conn.Index().Name())

	bare := New("bare", client)
	assert.Equal(t, "fallback", bare.Index().Name())

	require.NoError(t, conn.Close())
	assert.True(t, client.Closed())
}

func TestManager(t *testing.T) {
	m := NewManager()
	a := New("a", mock.New(), WithLogger(quietLogger()))
	b := New("b", mock.New(), WithLogger(quietLogger()))

	require.NoError(t, m.Register(a))
	require.NoError(t, m.Register(b))
	assert.True(t, errors.IsAlreadyExists(m.Register(a)))
	assert.Equal(t, []string{"a", "b"}, m.Names())

	got, err := m.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = m.Get("missing")
	assert.True(t, errors.IsConfigurationError(err))

	t.Run("Alias", func(t *testing.T) {
		require.NoError(t, m.Alias("default", "a"))
		got, err := m.Get("default")
		require.NoError(t, err)
		assert.Same(t, a, got)

		assert.True(t, errors.IsConfigurationError(m.Alias("x", "nope")))
		assert.True(t, errors.IsAlreadyExists(m.Alias("b", "a")))
	})

	t.Run("Drop", func(t *testing.T) {
		assert.True(t, m.Drop("a"))
		assert.False(t, m.Drop("a"))
		_, err := m.Get("default")
		assert.True(t, errors.IsConfigurationError(err), "alias must go with its target")
		assert.Equal(t, []string{"b"}, m.Names())
	})

	t.Run("CloseAll", func(t *testing.T) {
		require.NoError(t, m.CloseAll())
		assert.Empty(t, m.Names())
		assert.True(t, b.Client().(*mock.Client).Closed())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		conn, err := Open(ctx, "scratch", config.ConnectionConfig{Driver: config.DriverMemory, Index: "blog"}, quietLogger())
		require.NoError(t, err)
		assert.IsType(t, &mock.Client{}, conn.Client())
		assert.Equal(t, "blog", conn.Index().Name())
	})

	t.Run("SQLite", func(t *testing.T) {
		conn, err := Open(ctx, "local", config.ConnectionConfig{
			Driver:      config.DriverSQLite,
			DSN:         filepath.Join(t.TempDir(), "docs.db"),
			Index:       "default",
			AutoMigrate: true,
		}, quietLogger())
		require.NoError(t, err)
		defer conn.Close()
		assert.IsType(t, &sqlstore.Client{}, conn.Client())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := Open(ctx, "x", config.ConnectionConfig{Driver: "cassandra"}, nil)
		assert.True(t, errors.IsConfigurationError(err))
	})
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Parse([]byte("connections:\n  default:\n    driver: memory\n  archive:\n    driver: memory\n    index: old\n"))
	require.NoError(t, err)

	m := NewManager()
	require.NoError(t, LoadAll(ctx, m, cfg, quietLogger()))
	assert.Equal(t, []string{"archive", "default"}, m.Names())

	archive, err := m.Get("archive")
	require.NoError(t, err)
	assert.Equal(t, "old", archive.IndexName())

	t.Run("RollsBackOnFailure", func(t *testing.T) {
		m := NewManager()
		existing := New("zz", mock.New(), WithLogger(quietLogger()))
		require.NoError(t, m.Register(existing))

		bad := &config.Config{Connections: map[string]config.ConnectionConfig{
			"aa": {Driver: config.DriverMemory},
			"zz": {Driver: config.DriverMemory},
		}}
		err := LoadAll(ctx, m, bad, quietLogger())
		assert.True(t, errors.IsAlreadyExists(err))
		assert.Equal(t, []string{"zz"}, m.Names())
	})
}
