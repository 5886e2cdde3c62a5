/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/document"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// maxPageRetries bounds how often Stream retries one failing page when the
// error handler asks to continue.
const maxPageRetries = 3

// QueryOption configures a query at Find time.
type QueryOption func(*Query)

func WithConditions(conds ...storagemodels.Condition) QueryOption {
	return func(q *Query) {
		q.conditions = append(q.conditions, conds...)
	}
}

// WithLimit caps the number of entities a query yields. Zero means no cap.
func WithLimit(n int) QueryOption {
	return func(q *Query) {
		q.limit = n
	}
}

func WithFields(fields ...string) QueryOption {
	return func(q *Query) {
		q.fields = append(q.fields, fields...)
	}
}

func WithPageSize(n int32) QueryOption {
	return func(q *Query) {
		q.pageSize = n
	}
}

// Query is a deferred search against its repository's collection. Nothing
// runs until All, First, Count or Stream is called, and each of those
// executes the query again from the start.
type Query struct {
	repo       *Repository
	finder     string
	conditions []storagemodels.Condition
	fields     []string
	limit      int
	pageSize   int32
	err        error
}

// Repository returns the repository that created the query.
func (q *Query) Repository() *Repository {
	return q.repo
}

func (q *Query) Finder() string {
	return q.finder
}

// Err reports a problem detected while building the query.
func (q *Query) Err() error {
	return q.err
}

// Where adds an equality condition.
func (q *Query) Where(field string, value any) *Query {
	q.conditions = append(q.conditions, storagemodels.Eq(field, value))
	return q
}

// WhereMatch adds a glob condition ("drafts/**", "*.md").
func (q *Query) WhereMatch(field, pattern string) *Query {
	q.conditions = append(q.conditions, storagemodels.Match(field, pattern))
	return q
}

func (q *Query) WhereExists(field string) *Query {
	q.conditions = append(q.conditions, storagemodels.Exists(field))
	return q
}

// Select restricts the fields loaded into entities.
func (q *Query) Select(fields ...string) *Query {
	q.fields = append(q.fields, fields...)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) PageSize(n int32) *Query {
	q.pageSize = n
	return q
}

// Params returns the search parameters handed to the client for the first page.
func (q *Query) Params() *storagemodels.QueryParams {
	p := &storagemodels.QueryParams{
		Conditions: append([]storagemodels.Condition(nil), q.conditions...),
		Fields:     append([]string(nil), q.fields...),
		PageSize:   q.pageSize,
	}
	if q.limit > 0 && (p.PageSize <= 0 || int32(q.limit) < p.PageSize) {
		p.PageSize = int32(q.limit)
	}
	return p
}

func (q *Query) validate() error {
	if q.err != nil {
		return q.err
	}
	for _, c := range q.conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (q *Query) log() logrus.FieldLogger {
	return q.repo.logger.WithField("finder", q.finder)
}

// each runs the query page by page, calling fn for every entity until the
// results or the limit are exhausted or fn returns false.
func (q *Query) each(ctx context.Context, fn func(e document.Entity) bool) error {
	if err := q.validate(); err != nil {
		return err
	}

	coll := q.repo.Collection()
	params := q.Params()
	q.log().WithField("conditions", len(params.Conditions)).Debug("find")

	seen := 0
	for {
		page, err := coll.Search(ctx, params)
		if err != nil {
			return errors.NewPersistenceError("find", q.repo.name, params.Cursor, err)
		}
		for _, raw := range page.Documents {
			if !fn(q.repo.fromRaw(raw)) {
				return nil
			}
			seen++
			if q.limit > 0 && seen >= q.limit {
				return nil
			}
		}
		if page.Cursor == "" {
			return nil
		}
		params.Cursor = page.Cursor
	}
}

// All materializes every matching entity.
func (q *Query) All(ctx context.Context) ([]document.Entity, error) {
	var out []document.Entity
	err := q.each(ctx, func(e document.Entity) bool {
		out = append(out, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// First returns the first matching entity, or a NotFoundError.
func (q *Query) First(ctx context.Context) (document.Entity, error) {
	var first document.Entity
	err := q.each(ctx, func(e document.Entity) bool {
		first = e
		return false
	})
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, errors.NewNotFoundError(q.repo.name, q.finder)
	}
	return first, nil
}

func (q *Query) Count(ctx context.Context) (int, error) {
	n := 0
	err := q.each(ctx, func(document.Entity) bool {
		n++
		return true
	})
	return n, err
}

// Stream runs the query in a goroutine and delivers entities over a channel
// that is closed when results are exhausted, the limit is reached, the
// context is cancelled or a page fails. A failure is delivered as a final
// result with Error set, unless the error handler asks to retry the page.
func (q *Query) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[document.Entity] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.BufferSize < 0 {
		options.BufferSize = 0
	}

	out := make(chan storagemodels.StreamResult[document.Entity], options.BufferSize)

	go func() {
		defer close(out)

		send := func(r storagemodels.StreamResult[document.Entity]) bool {
			if ctx.Err() != nil {
				return false
			}
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := q.validate(); err != nil {
			send(storagemodels.StreamResult[document.Entity]{Error: err})
			return
		}

		coll := q.repo.Collection()
		params := q.Params()
		if options.PageSize > 0 {
			params.PageSize = options.PageSize
		}

		progress := storagemodels.StreamProgress{StartTime: time.Now()}
		var index int64
		retries := 0

		for {
			if ctx.Err() != nil {
				return
			}

			page, err := coll.Search(ctx, params)
			if err != nil {
				err = errors.NewPersistenceError("find", q.repo.name, params.Cursor, err)
				if options.ErrorHandler != nil && retries < maxPageRetries && options.ErrorHandler(err) {
					retries++
					progress.Errors = append(progress.Errors, err)
					q.log().WithError(err).WithField("attempt", retries).Warn("stream page failed, retrying")
					continue
				}
				send(storagemodels.StreamResult[document.Entity]{Error: err})
				return
			}
			retries = 0
			progress.PagesProcessed++

			for _, raw := range page.Documents {
				r := storagemodels.StreamResult[document.Entity]{
					Item: q.repo.fromRaw(raw),
					Meta: storagemodels.StreamMeta{
						Index:      index,
						PageNumber: progress.PagesProcessed,
						Timestamp:  time.Now(),
					},
				}
				if !send(r) {
					return
				}
				index++
				progress.ItemsProcessed++
				if q.limit > 0 && progress.ItemsProcessed >= int64(q.limit) {
					q.reportProgress(options, &progress, page.Cursor)
					return
				}
			}

			q.reportProgress(options, &progress, page.Cursor)
			if page.Cursor == "" {
				return
			}
			params.Cursor = page.Cursor
		}
	}()

	return out
}

func (q *Query) reportProgress(options storagemodels.StreamOptions, progress *storagemodels.StreamProgress, cursor string) {
	if options.ProgressHandler == nil {
		return
	}
	progress.LastCursor = cursor
	if elapsed := time.Since(progress.StartTime).Seconds(); elapsed > 0 {
		progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
	}
	snapshot := *progress
	snapshot.Errors = append([]error(nil), progress.Errors...)
	options.ProgressHandler(snapshot)
}
