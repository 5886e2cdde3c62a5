/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document_test

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/document"
)

func TestNewDefaults(t *testing.T) {
	data := map[string]any{"title": "A newer title"}
	doc := document.New(data)

	assert.True(t, doc.IsNew())
	assert.False(t, doc.IsDirty())
	assert.Equal(t, data, doc.ToMap())
	assert.Empty(t, doc.ID())
	assert.Zero(t, doc.Version())

	existing := document.New(map[string]any{"id": "123"}, document.WithMarkNew(false), document.WithSource("articles"))
	assert.False(t, existing.IsNew())
	assert.Equal(t, "123", existing.ID())
	assert.Equal(t, "articles", existing.Source())
}

func TestConstructionCopiesInput(t *testing.T) {
	data := map[string]any{
		"title": "original",
		"meta":  map[string]any{"lang": "en"},
	}
	doc := document.New(data)

	data["title"] = "changed"
	data["meta"].(map[string]any)["lang"] = "fr"

	assert.Equal(t, "original", doc.Get("title"))
	assert.Equal(t, map[string]any{"lang": "en"}, doc.Get("meta"))
}

func TestToMapIsSnapshot(t *testing.T) {
	doc := document.New(map[string]any{
		"tags": []any{"a", "b"},
		"meta": map[string]any{"lang": "en"},
	})

	snap := doc.ToMap()
	snap["extra"] = true
	snap["tags"].([]any)[0] = "z"
	snap["meta"].(map[string]any)["lang"] = "fr"

	assert.False(t, doc.Has("extra"))
	assert.Equal(t, []any{"a", "b"}, doc.Get("tags"))
	assert.Equal(t, map[string]any{"lang": "en"}, doc.Get("meta"))
}

func TestDirtyTracking(t *testing.T) {
	doc := document.New(map[string]any{"title": "t", "body": "b"}, document.WithMarkNew(false))

	t.Run("Set", func(t *testing.T) {
		doc.Set("title", "new title")
		assert.True(t, doc.IsDirty())
		assert.True(t, doc.IsDirty("title"))
		assert.False(t, doc.IsDirty("body"))
		assert.Equal(t, []string{"title"}, doc.DirtyFields())
	})

	t.Run("Unset", func(t *testing.T) {
		doc.Unset("body")
		assert.False(t, doc.Has("body"))
		assert.Equal(t, []string{"body", "title"}, doc.DirtyFields())

		doc.Unset("missing")
		assert.False(t, doc.IsDirty("missing"))
	})

	t.Run("Clean", func(t *testing.T) {
		doc.Clean()
		assert.False(t, doc.IsDirty())
		assert.Empty(t, doc.DirtyFields())
	})

	t.Run("Patch", func(t *testing.T) {
		doc.Patch(map[string]any{"a": 1, "b": 2})
		assert.Equal(t, []string{"a", "b"}, doc.DirtyFields())
		assert.Equal(t, 1, doc.Get("a"))
	})
}

func TestMarkPersisted(t *testing.T) {
	doc := document.New(map[string]any{"title": "A brand new article"})
	doc.Set("body", "Some new content")
	require.True(t, doc.IsDirty())

	doc.MarkPersisted("abc", 1)

	assert.False(t, doc.IsNew())
	assert.False(t, doc.IsDirty())
	assert.Equal(t, "abc", doc.ID())
	assert.Equal(t, int64(1), doc.Version())
	assert.Equal(t, map[string]any{
		"id":       "abc",
		"_version": int64(1),
		"title":    "A brand new article",
		"body":     "Some new content",
	}, doc.ToMap())

	// an empty id or zero version keeps what is already there
	doc.MarkPersisted("", 0)
	assert.Equal(t, "abc", doc.ID())
	assert.Equal(t, int64(1), doc.Version())
}

func TestVersionConversions(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int64
	}{
		{"int64", int64(3), 3},
		{"int", 4, 4},
		{"int32", int32(5), 5},
		{"float64 from json", float64(6), 6},
		{"string is ignored", "7", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New(map[string]any{"_version": tt.value})
			assert.Equal(t, tt.expected, doc.Version())
		})
	}

	numericID := document.New(map[string]any{"id": 42})
	assert.Equal(t, "42", numericID.ID())
}

func TestFieldsStripsMetadata(t *testing.T) {
	doc := document.New(map[string]any{"id": "1", "_version": int64(2), "title": "t"})
	assert.Equal(t, map[string]any{"title": "t"}, document.Fields(doc))
	assert.Equal(t, "1", doc.ID(), "Fields must not mutate the entity")
}

type article struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Views     int             `json:"views"`
	Published strfmt.DateTime `json:"published"`
}

func TestDecodeAndEncode(t *testing.T) {
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := document.New(map[string]any{
		"id":        "a1",
		"title":     "Hello",
		"views":     float64(10),
		"published": strfmt.DateTime(published).String(),
	}, document.WithMarkNew(false))

	var out article
	require.NoError(t, document.Decode(doc, &out))
	assert.Equal(t, "a1", out.ID)
	assert.Equal(t, "Hello", out.Title)
	assert.Equal(t, 10, out.Views)
	assert.True(t, time.Time(out.Published).Equal(published))

	encoded, err := document.Encode(out)
	require.NoError(t, err)
	assert.Equal(t, "Hello", encoded["title"])
	assert.Equal(t, float64(10), encoded["views"])
	assert.Equal(t, strfmt.DateTime(published).String(), encoded["published"])
}
