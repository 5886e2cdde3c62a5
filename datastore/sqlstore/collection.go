/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

const defaultPageSize = 100

type collection struct {
	client *Client
	index  string
	name   string
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) log() logrus.FieldLogger {
	return c.client.logger.WithFields(logrus.Fields{
		"index":      c.index,
		"collection": c.name,
	})
}

func (c *collection) scoped(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Where("d.index_name = ?", c.index).Where("d.collection = ?", c.name)
}

func (c *collection) find(ctx context.Context, db bun.IDB, id string) (*document, error) {
	row := new(document)
	err := c.scoped(db.NewSelect().Model(row)).Where("d.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError(c.name, id)
		}
		return nil, fmt.Errorf("select failed: %w", err)
	}
	return row, nil
}

// GetDocument reads one row by id.
func (c *collection) GetDocument(ctx context.Context, id string, params map[string]any) (*storagemodels.RawDocument, error) {
	row, err := c.find(ctx, c.client.db, id)
	if err != nil {
		return nil, err
	}
	doc := toRaw(row)
	doc.Fields = storagemodels.Project(doc.Fields, storagemodels.ProjectionParam(params))
	return doc, nil
}

// CreateDocument inserts a row, failing when the id is taken.
func (c *collection) CreateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	id := doc.ID
	if id == "" {
		id = c.client.idFunc()
	}
	now := time.Now().UTC()
	row := &document{
		IndexName:  c.index,
		Collection: c.name,
		ID:         id,
		Version:    1,
		Data:       payload(doc.Fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := c.client.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isDuplicateKey(err) {
			return nil, errors.NewAlreadyExistsError(c.name, id)
		}
		return nil, fmt.Errorf("insert failed: %w", err)
	}

	c.log().WithField("id", id).Debug("document created")
	return &storagemodels.WriteResult{ID: id, Version: 1, Created: true}, nil
}

// UpdateDocument replaces a row's payload inside a transaction, inserting it
// when absent. A non-zero doc.Version must match the stored version.
func (c *collection) UpdateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error) {
	if doc.ID == "" {
		return nil, errors.NewValidationError("id", "update requires an id")
	}

	var res *storagemodels.WriteResult
	err := c.client.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()

		existing, err := c.find(ctx, tx, doc.ID)
		switch {
		case errors.IsNotFound(err):
			if doc.Version > 0 {
				return errors.NewConditionFailedError("update", fmt.Sprintf("version = %d", doc.Version))
			}
			row := &document{
				IndexName:  c.index,
				Collection: c.name,
				ID:         doc.ID,
				Version:    1,
				Data:       payload(doc.Fields),
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				if isDuplicateKey(err) {
					return errors.NewConditionFailedError("update", "document created concurrently")
				}
				return fmt.Errorf("insert failed: %w", err)
			}
			res = &storagemodels.WriteResult{ID: doc.ID, Version: 1, Created: true}
			return nil
		case err != nil:
			return err
		}

		if doc.Version > 0 && doc.Version != existing.Version {
			return errors.NewConditionFailedError("update", fmt.Sprintf("version = %d", doc.Version))
		}

		existing.Version++
		existing.Data = payload(doc.Fields)
		existing.UpdatedAt = now
		result, err := tx.NewUpdate().
			Model(existing).
			Column("version", "data", "updated_at").
			WherePK().
			Where("version = ?", existing.Version-1).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return errors.NewConditionFailedError("update", "document changed concurrently")
		}
		res = &storagemodels.WriteResult{ID: doc.ID, Version: existing.Version}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log().WithFields(logrus.Fields{"id": doc.ID, "version": res.Version}).Debug("document updated")
	return res, nil
}

// DeleteDocument removes a row, failing when it does not exist.
func (c *collection) DeleteDocument(ctx context.Context, id string) error {
	result, err := c.client.db.NewDelete().
		Model((*document)(nil)).
		Where("index_name = ?", c.index).
		Where("collection = ?", c.name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(c.name, id)
	}

	c.log().WithField("id", id).Debug("document deleted")
	return nil
}

// Search pages through the collection in id order. Conditions are evaluated
// on the decoded payload, so rows are read in batches until the page fills.
func (c *collection) Search(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error) {
	if params == nil {
		params = &storagemodels.QueryParams{}
	}
	for _, cond := range params.Conditions {
		if err := cond.Validate(); err != nil {
			return nil, errors.NewValidationError(cond.Field, err.Error())
		}
	}

	pageSize := int(params.PageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	page := &storagemodels.Page{}
	after := params.Cursor
	for {
		var rows []*document
		q := c.scoped(c.client.db.NewSelect().Model(&rows)).
			OrderExpr("d.id ASC").
			Limit(pageSize)
		if after != "" {
			q = q.Where("d.id > ?", after)
		}
		if err := q.Scan(ctx); err != nil {
			return nil, fmt.Errorf("select failed: %w", err)
		}

		for i, row := range rows {
			if !storagemodels.Matches(row.ID, row.Data, params.Conditions) {
				continue
			}
			doc := toRaw(row)
			doc.Fields = storagemodels.Project(doc.Fields, params.Fields)
			page.Documents = append(page.Documents, doc)

			if len(page.Documents) == pageSize {
				if i < len(rows)-1 || len(rows) == pageSize {
					page.Cursor = row.ID
				}
				return page, nil
			}
		}

		if len(rows) < pageSize {
			return page, nil
		}
		after = rows[len(rows)-1].ID
	}
}

func payload(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}

func toRaw(row *document) *storagemodels.RawDocument {
	fields := row.Data
	if fields == nil {
		fields = map[string]any{}
	}
	return &storagemodels.RawDocument{
		ID:        row.ID,
		Version:   row.Version,
		Fields:    fields,
		CreatedAt: strfmt.DateTime(row.CreatedAt),
		UpdatedAt: strfmt.DateTime(row.UpdatedAt),
	}
}
