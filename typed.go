/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"fmt"

	"github.com/suparena/docstore/document"
)

// Typed wraps a repository with conversions to and from a struct type T.
// Struct fields map to document fields through their json tags; a field
// tagged "id" or "_version" receives the identifier or version.
type Typed[T any] struct {
	repo *Repository
}

// NewTyped creates a Typed view of repo
func NewTyped[T any](repo *Repository) *Typed[T] {
	return &Typed[T]{repo: repo}
}

func (t *Typed[T]) Repository() *Repository {
	return t.repo
}

// Get fetches and decodes one document.
func (t *Typed[T]) Get(ctx context.Context, id string) (*T, error) {
	e, err := t.repo.Get(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return t.decode(e)
}

// Save stores v. An empty id creates a new document with a store-assigned
// id; otherwise the document with that id is replaced or created. The saved
// value is returned with its id and version filled in.
func (t *Typed[T]) Save(ctx context.Context, id string, v *T) (*T, error) {
	if v == nil {
		return nil, fmt.Errorf("save %s: nil value", t.repo.name)
	}
	fields, err := document.Encode(v)
	if err != nil {
		return nil, err
	}

	if id == "" {
		delete(fields, document.FieldID)
	} else {
		fields[document.FieldID] = id
	}

	e := t.repo.build(fields, document.WithMarkNew(id == ""))
	if _, err := t.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return t.decode(e)
}

// All runs q, or the "all" finder when q is nil, and decodes every result.
func (t *Typed[T]) All(ctx context.Context, q *Query) ([]*T, error) {
	if q == nil {
		q = t.repo.Find(FinderAll)
	}
	entities, err := q.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(entities))
	for _, e := range entities {
		v, err := t.decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *Typed[T]) decode(e document.Entity) (*T, error) {
	out := new(T)
	if err := document.Decode(e, out); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", t.repo.name, e.ID(), err)
	}
	return out, nil
}
