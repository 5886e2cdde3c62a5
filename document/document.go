/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package document

import (
	"sort"
)

const (
	// FieldID holds the document identifier.
	FieldID = "id"
	// FieldVersion holds the version token assigned by the store.
	FieldVersion = "_version"
)

// Entity is the in-memory representation of one stored document.
// Custom entity classes embed *Document to satisfy it.
type Entity interface {
	ID() string
	Version() int64
	Source() string

	Get(field string) any
	Has(field string) bool
	Set(field string, value any)
	Unset(field string)
	Patch(fields map[string]any)
	ToMap() map[string]any

	IsNew() bool
	SetNew(isNew bool)
	IsDirty(fields ...string) bool
	DirtyFields() []string
	Clean()

	// MarkPersisted records a successful write: id and version are stored
	// without dirtying, the entity stops being new and the dirty set is cleared.
	MarkPersisted(id string, version int64)
}

// Option configures a Document at construction.
type Option func(*options)

type options struct {
	markNew bool
	source  string
}

// WithMarkNew sets whether the document is considered unsaved. Defaults to true.
func WithMarkNew(markNew bool) Option {
	return func(o *options) {
		o.markNew = markNew
	}
}

// WithSource records the repository name the document belongs to.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// Document is the generic Entity. It is not safe for concurrent mutation.
type Document struct {
	fields map[string]any
	dirty  map[string]struct{}
	isNew  bool
	source string
}

var _ Entity = (*Document)(nil)

// New builds a Document from raw field data. The input map is copied, and the
// result starts clean.
func New(fields map[string]any, opts ...Option) *Document {
	o := options{markNew: true}
	for _, opt := range opts {
		opt(&o)
	}

	return &Document{
		fields: copyMap(fields),
		dirty:  make(map[string]struct{}),
		isNew:  o.markNew,
		source: o.source,
	}
}

// ID returns the identifier, or "" before the first save.
func (d *Document) ID() string {
	switch v := d.fields[FieldID].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return toString(v)
	}
}

// Version returns the store-assigned version, or 0 when none is known.
func (d *Document) Version() int64 {
	switch v := d.fields[FieldVersion].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (d *Document) Source() string {
	return d.source
}

func (d *Document) Get(field string) any {
	return d.fields[field]
}

func (d *Document) Has(field string) bool {
	_, ok := d.fields[field]
	return ok
}

// Set assigns a field and marks it dirty.
func (d *Document) Set(field string, value any) {
	d.fields[field] = value
	d.dirty[field] = struct{}{}
}

// Unset removes a field and marks it dirty.
func (d *Document) Unset(field string) {
	if _, ok := d.fields[field]; !ok {
		return
	}
	delete(d.fields, field)
	d.dirty[field] = struct{}{}
}

// Patch assigns every entry of fields through Set.
func (d *Document) Patch(fields map[string]any) {
	for k, v := range fields {
		d.Set(k, v)
	}
}

// ToMap returns a snapshot of all fields, including id and _version when present.
func (d *Document) ToMap() map[string]any {
	return copyMap(d.fields)
}

func (d *Document) IsNew() bool {
	return d.isNew
}

func (d *Document) SetNew(isNew bool) {
	d.isNew = isNew
}

// IsDirty reports whether any of the given fields changed since the last
// synchronization point. With no arguments it reports on the whole document.
func (d *Document) IsDirty(fields ...string) bool {
	if len(fields) == 0 {
		return len(d.dirty) > 0
	}
	for _, f := range fields {
		if _, ok := d.dirty[f]; ok {
			return true
		}
	}
	return false
}

// DirtyFields returns the modified field names in sorted order.
func (d *Document) DirtyFields() []string {
	names := make([]string, 0, len(d.dirty))
	for f := range d.dirty {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

func (d *Document) Clean() {
	d.dirty = make(map[string]struct{})
}

func (d *Document) MarkPersisted(id string, version int64) {
	if id != "" {
		d.fields[FieldID] = id
	}
	if version > 0 {
		d.fields[FieldVersion] = version
	}
	d.isNew = false
	d.Clean()
}

// Fields returns a snapshot of the stored payload: everything except id and _version.
func Fields(e Entity) map[string]any {
	m := e.ToMap()
	delete(m, FieldID)
	delete(m, FieldVersion)
	return m
}
