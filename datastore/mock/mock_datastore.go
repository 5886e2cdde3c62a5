/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the datastore client for testing
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// Operation names recorded in the call log.
const (
	OpIndex      = "Index"
	OpCollection = "Collection"
	OpGet        = "GetDocument"
	OpCreate     = "CreateDocument"
	OpUpdate     = "UpdateDocument"
	OpDelete     = "DeleteDocument"
	OpSearch     = "Search"
)

// DefaultIndex is the index selected by Index("").
const DefaultIndex = "default"

const defaultPageSize = 100

// Call is one recorded client invocation.
type Call struct {
	Op         string
	Index      string
	Collection string
	ID         string
	Params     map[string]any
}

// GetFunc overrides GetDocument.
type GetFunc func(ctx context.Context, index, collection, id string, params map[string]any) (*storagemodels.RawDocument, error)

// SearchFunc overrides Search.
type SearchFunc func(ctx context.Context, index, collection string, params *storagemodels.QueryParams) (*storagemodels.Page, error)

// Client is an in-memory datastore.Client.
type Client struct {
	mu           sync.RWMutex
	defaultIndex string
	data         map[string]map[string]map[string]*storagemodels.RawDocument
	calls        []Call
	closed       bool

	idFunc      func() string
	getFunc     GetFunc
	searchFunc  SearchFunc
	getError    error
	createError error
	updateError error
	deleteError error
	searchError error
}

var _ datastore.Client = (*Client)(nil)

// New creates a new mock Client
func New() *Client {
	return &Client{
		defaultIndex: DefaultIndex,
		data:         make(map[string]map[string]map[string]*storagemodels.RawDocument),
		idFunc:       uuid.NewString,
	}
}

// WithDefaultIndex sets the index returned for Index("")
func (m *Client) WithDefaultIndex(name string) *Client {
	m.defaultIndex = name
	return m
}

// WithIDFunc sets the generator for store-assigned ids
func (m *Client) WithIDFunc(f func() string) *Client {
	m.idFunc = f
	return m
}

// WithGetFunc sets a custom GetDocument implementation
func (m *Client) WithGetFunc(f GetFunc) *Client {
	m.getFunc = f
	return m
}

// WithSearchFunc sets a custom Search implementation
func (m *Client) WithSearchFunc(f SearchFunc) *Client {
	m.searchFunc = f
	return m
}

// WithGetError makes GetDocument operations return an error
func (m *Client) WithGetError(err error) *Client {
	m.getError = err
	return m
}

// WithCreateError makes CreateDocument operations return an error
func (m *Client) WithCreateError(err error) *Client {
	m.createError = err
	return m
}

// WithUpdateError makes UpdateDocument operations return an error
func (m *Client) WithUpdateError(err error) *Client {
	m.updateError = err
	return m
}

// WithDeleteError makes DeleteDocument operations return an error
func (m *Client) WithDeleteError(err error) *Client {
	m.deleteError = err
	return m
}

// WithSearchError makes Search operations return an error
func (m *Client) WithSearchError(err error) *Client {
	m.searchError = err
	return m
}

// Index returns a handle to the named index
func (m *Client) Index(name string) datastore.Index {
	if name == "" {
		name = m.defaultIndex
	}
	m.record(Call{Op: OpIndex, Index: name})
	return &index{client: m, name: name}
}

// Close marks the client closed
func (m *Client) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Helper methods for testing

// Closed reports whether Close was called
func (m *Client) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Calls returns a copy of the call log
func (m *Client) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times an operation was invoked
func (m *Client) CallCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log
func (m *Client) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// SetData stores documents directly, bypassing the call log
func (m *Client) SetData(indexName, collection string, docs ...*storagemodels.RawDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collectionData(indexName, collection)
	for _, d := range docs {
		cp := d.Clone()
		if cp.Version == 0 {
			cp.Version = 1
		}
		coll[cp.ID] = cp
	}
}

// GetData returns a copy of one stored document, or nil
func (m *Client) GetData(indexName, collection, id string) *storagemodels.RawDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[indexName][collection][id].Clone()
}

// Count returns the number of stored documents in a collection
func (m *Client) Count(indexName, collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[indexName][collection])
}

// Clear removes all data
func (m *Client) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]map[string]*storagemodels.RawDocument)
}

func (m *Client) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// collectionData must be called with the lock held.
func (m *Client) collectionData(indexName, collection string) map[string]*storagemodels.RawDocument {
	idx, ok := m.data[indexName]
	if !ok {
		idx = make(map[string]map[string]*storagemodels.RawDocument)
		m.data[indexName] = idx
	}
	coll, ok := idx[collection]
	if !ok {
		coll = make(map[string]*storagemodels.RawDocument)
		idx[collection] = coll
	}
	return coll
}

type index struct {
	client *Client
	name   string
}

func (i *index) Name() string {
	return i.name
}

func (i *index) Collection(name string) datastore.Collection {
	i.client.record(Call{Op: OpCollection, Index: i.name, Collection: name})
	return &collection{client: i.client, index: i.name, name: name}
}

type collection struct {
	client *Client
	index  string
	name   string
}

func (c *collection) Name() string {
	return c.name
}

// GetDocument retrieves a document by id
func (c *collection) GetDocument(ctx context.Context, id string, params map[string]any) (*storagemodels.RawDocument, error) {
	m := c.client
	m.record(Call{Op: OpGet, Index: c.index, Collection: c.name, ID: id, Params: params})

	if m.getFunc != nil {
		return m.getFunc(ctx, c.index, c.name, id, params)
	}
	if m.getError != nil {
		return nil, m.getError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.data[c.index][c.name][id]
	if !exists {
		return nil, errors.NewNotFoundError(c.name, id)
	}
	out := doc.Clone()
	out.Fields = storagemodels.Project(out.Fields, storagemodels.ProjectionParam(params))
	return out, nil
}

// CreateDocument stores a new document
func (c *collection) CreateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	m := c.client
	m.record(Call{Op: OpCreate, Index: c.index, Collection: c.name, ID: doc.ID})

	if m.createError != nil {
		return nil, m.createError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := doc.ID
	if id == "" {
		id = m.idFunc()
	}
	coll := m.collectionData(c.index, c.name)
	if _, exists := coll[id]; exists {
		return nil, errors.NewAlreadyExistsError(c.name, id)
	}

	now := strfmt.DateTime(time.Now().UTC())
	stored := doc.Clone()
	stored.ID = id
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	coll[id] = stored

	return &storagemodels.WriteResult{ID: id, Version: 1, Created: true}, nil
}

// UpdateDocument replaces a document's payload, creating it when absent
func (c *collection) UpdateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	m := c.client
	m.record(Call{Op: OpUpdate, Index: c.index, Collection: c.name, ID: doc.ID})

	if m.updateError != nil {
		return nil, m.updateError
	}
	if doc.ID == "" {
		return nil, errors.NewValidationError("id", "update requires an id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collectionData(c.index, c.name)
	existing, exists := coll[doc.ID]

	var current int64
	if exists {
		current = existing.Version
	}
	if doc.Version > 0 && doc.Version != current {
		return nil, errors.NewConditionFailedError("update", "_version = expected version")
	}

	now := strfmt.DateTime(time.Now().UTC())
	stored := doc.Clone()
	stored.Version = current + 1
	stored.UpdatedAt = now
	if exists {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	coll[doc.ID] = stored

	return &storagemodels.WriteResult{ID: doc.ID, Version: stored.Version, Created: !exists}, nil
}

// DeleteDocument removes a document by id
func (c *collection) DeleteDocument(ctx context.Context, id string) error {
	m := c.client
	m.record(Call{Op: OpDelete, Index: c.index, Collection: c.name, ID: id})

	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.data[c.index][c.name]
	if _, exists := coll[id]; !exists {
		return errors.NewNotFoundError(c.name, id)
	}
	delete(coll, id)
	return nil
}

// Search returns one page of documents ordered by id
func (c *collection) Search(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error) {
	m := c.client
	m.record(Call{Op: OpSearch, Index: c.index, Collection: c.name})

	if m.searchFunc != nil {
		return m.searchFunc(ctx, c.index, c.name, params)
	}
	if m.searchError != nil {
		return nil, m.searchError
	}
	if params == nil {
		params = &storagemodels.QueryParams{}
	}

	pageSize := int(params.PageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.data[c.index][c.name]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		if id > params.Cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	page := &storagemodels.Page{}
	for i, id := range ids {
		doc := coll[id]
		if !storagemodels.Matches(id, doc.Fields, params.Conditions) {
			continue
		}
		out := doc.Clone()
		out.Fields = storagemodels.Project(out.Fields, params.Fields)
		page.Documents = append(page.Documents, out)

		if len(page.Documents) == pageSize {
			if i < len(ids)-1 {
				page.Cursor = id
			}
			break
		}
	}
	return page, nil
}
