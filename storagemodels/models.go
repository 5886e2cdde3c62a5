/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/go-openapi/strfmt"
)

// ParamFields is the get parameter holding a []string field projection.
const ParamFields = "fields"

// RawDocument is a document as a client returns or accepts it.
type RawDocument struct {
	// ID is empty on create when the store should assign one.
	ID string
	// Version is the store's version token; 0 when unknown.
	Version int64
	// Fields is the document payload, without id and version.
	Fields map[string]any
	// CreatedAt and UpdatedAt are filled in by clients that track them.
	CreatedAt strfmt.DateTime
	UpdatedAt strfmt.DateTime
}

// GetID returns the document identifier.
func (d *RawDocument) GetID() string {
	return d.ID
}

// GetData returns the document payload.
func (d *RawDocument) GetData() map[string]any {
	return d.Fields
}

// WriteResult acknowledges a create or update.
type WriteResult struct {
	ID      string
	Version int64
	// Created is true when an update inserted a document that did not exist.
	Created bool
}

// QueryParams defines a search against one collection.
type QueryParams struct {
	// Conditions are ANDed together.
	Conditions []Condition
	// Fields restricts the returned payload; empty means everything.
	Fields []string
	// PageSize bounds one Search call. Zero lets the client decide.
	PageSize int32
	// Cursor resumes after the last document of the previous page.
	Cursor string
}

// Page is one batch of search results. An empty Cursor means there are no
// more pages.
type Page struct {
	Documents []*RawDocument
	Cursor    string
}

// Project returns the subset of fields named in keep. An empty keep returns fields unchanged.
func Project(fields map[string]any, keep []string) map[string]any {
	if len(keep) == 0 {
		return fields
	}
	out := make(map[string]any, len(keep))
	for _, k := range keep {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// ProjectionParam reads the ParamFields entry from get parameters.
func ProjectionParam(params map[string]any) []string {
	switch v := params[ParamFields].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, f := range v {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Clone returns a deep copy of the document.
func (d *RawDocument) Clone() *RawDocument {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Fields = CloneFields(d.Fields)
	return &cp
}

// CloneFields deep-copies nested maps and slices of a payload.
func CloneFields(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return CloneFields(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
