/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/errors"
)

func TestExpandMacros(t *testing.T) {
	indexMap := map[string]string{
		"PK":     "{_index}#{_type}",
		"SK":     "ARTICLE#{id}",
		"GSI1PK": "AUTHOR#{author}",
		"GSI1SK": "RANK#{rank}",
		"GSI2PK": "{missing}",
	}
	in := keyInput("docs", "articles", "42", map[string]any{"author": "ann", "rank": 3})

	expanded, err := expandMacros(indexMap, in)
	require.NoError(t, err)
	assert.Equal(t, "docs#articles", expanded["PK"])
	assert.Equal(t, "ARTICLE#42", expanded["SK"])
	assert.Equal(t, "AUTHOR#ann", expanded["GSI1PK"])
	assert.Equal(t, "RANK#3", expanded["GSI1SK"])
	assert.Equal(t, "", expanded["GSI2PK"])

	assert.Equal(t, map[string]string{"GSI1PK": "AUTHOR#ann", "GSI1SK": "RANK#3"}, secondaryKeys(expanded))
}

func TestKeyInputReservedNamesWin(t *testing.T) {
	in := keyInput("docs", "articles", "42", map[string]any{"id": "spoofed", "_type": "x"})
	assert.Equal(t, "42", in["id"])
	assert.Equal(t, "articles", in["_type"])
}

func TestPrimaryKey(t *testing.T) {
	_, err := primaryKey(map[string]string{"PK": "a", "SK": ""})
	assert.True(t, errors.IsValidationError(err))

	key, err := primaryKey(map[string]string{"PK": "a", "SK": "b"})
	require.NoError(t, err)
	assert.Len(t, key, 2)
}

func TestPartitionOnly(t *testing.T) {
	assert.True(t, partitionOnly("{_type}"))
	assert.True(t, partitionOnly("TENANT#{_index}#{_type}"))
	assert.True(t, partitionOnly("STATIC"))
	assert.False(t, partitionOnly("USER#{id}"))
	assert.False(t, partitionOnly("{email}"))
}
