/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/docstore/storagemodels"
)

// Client is a session against a document store.
type Client interface {
	// Index returns a handle to a named index. An empty name selects the
	// client's default index.
	Index(name string) Index

	Close() error
}

// Index is a handle to one index (a DynamoDB table, a SQL namespace).
type Index interface {
	Name() string

	Collection(name string) Collection
}

// Collection is a handle to one named collection of documents inside an index.
type Collection interface {
	Name() string

	// GetDocument returns a NotFoundError when no document has the id.
	GetDocument(ctx context.Context, id string, params map[string]any) (*storagemodels.RawDocument, error)

	// CreateDocument stores a new document. An empty doc.ID asks the store to
	// assign one; an existing id yields an AlreadyExistsError.
	CreateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error)

	// UpdateDocument replaces the payload of doc.ID, creating it when absent.
	// A non-zero doc.Version must match the stored version, otherwise a
	// ConditionFailedError is returned.
	UpdateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error)

	DeleteDocument(ctx context.Context, id string) error

	Search(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)
}
