/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/connection"
	"github.com/suparena/docstore/errors"
)

func newTestLocator() (*Locator, *connection.Connection) {
	conn := connection.New("test", newMockClient(), connection.WithLogger(quietLogger()))
	return NewLocator(Config{Connection: conn, Registry: testRegistry()}), conn
}

func TestLocator(t *testing.T) {
	t.Run("BuildsAndCaches", func(t *testing.T) {
		l, conn := newTestLocator()

		repo, err := l.Get("articles")
		require.NoError(t, err)
		assert.Equal(t, "articles", repo.Name())
		assert.Same(t, conn, repo.Connection())

		again, err := l.Get("articles")
		require.NoError(t, err)
		assert.Same(t, repo, again)

		assert.True(t, l.Exists("articles"))
		assert.False(t, l.Exists("users"))
		assert.Equal(t, []string{"articles"}, l.List())
	})

	t.Run("Configure", func(t *testing.T) {
		l, _ := newTestLocator()

		require.NoError(t, l.Configure("users", Config{EntityClass: "TestUser"}))
		assert.True(t, l.Exists("users"))
		assert.Empty(t, l.List())

		users, err := l.Get("users")
		require.NoError(t, err)
		class, err := users.EntityClass()
		require.NoError(t, err)
		assert.Equal(t, "App/Model/Document/TestUser", class)

		err = l.Configure("users", Config{})
		assert.True(t, errors.IsAlreadyExists(err))
	})

	t.Run("ConfigurationErrorsSurface", func(t *testing.T) {
		l, _ := newTestLocator()
		require.NoError(t, l.Configure("ghosts", Config{EntityClass: "Ghost"}))

		_, err := l.Get("ghosts")
		assert.True(t, errors.IsClassNotFound(err))
		assert.Empty(t, l.List())
	})

	t.Run("SetRemoveClear", func(t *testing.T) {
		l, _ := newTestLocator()
		repo := newTestRepo(t, newMockClient(), Config{Name: "custom"})

		l.Set("custom", repo)
		got, err := l.Get("custom")
		require.NoError(t, err)
		assert.Same(t, repo, got)

		assert.True(t, l.Remove("custom"))
		assert.False(t, l.Remove("custom"))
		assert.False(t, l.Exists("custom"))

		_, err = l.Get("a")
		require.NoError(t, err)
		_, err = l.Get("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, l.List())

		l.Clear()
		assert.Empty(t, l.List())
	})

	t.Run("ConcurrentGet", func(t *testing.T) {
		l, _ := newTestLocator()

		var wg sync.WaitGroup
		repos := make([]*Repository, 20)
		for i := range repos {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r, err := l.Get("articles")
				assert.NoError(t, err)
				repos[i] = r
			}(i)
		}
		wg.Wait()

		for _, r := range repos {
			assert.Same(t, repos[0], r)
		}
	})
}
