/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/connection"
	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/document"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// FinderAll is the built-in finder that applies no extra conditions.
const FinderAll = "all"

// Finder shapes a query before it runs.
type Finder func(q *Query) *Query

// Config describes a repository.
type Config struct {
	// Name is the collection the repository reads and writes.
	Name string

	// Connection is used as is when set. Otherwise ConnectionName is looked
	// up in Connections, or in connection.Default() when that is nil.
	Connection     *connection.Connection
	ConnectionName string
	Connections    *connection.Manager

	// IndexName overrides the connection's index.
	IndexName string

	// EntityClass is a bare name ("Article"), a plugin name
	// ("Blog.Article") or a qualified class. Empty means document.Document.
	EntityClass  string
	AppNamespace string
	Registry     *registry.TypeRegistry

	Finders map[string]Finder
	Logger  logrus.FieldLogger
}

type resolvedClass struct {
	class   string
	factory registry.Factory
}

// Repository maps one collection of a connection to entities.
type Repository struct {
	name         string
	conn         *connection.Connection
	indexName    string
	entityClass  string
	appNamespace string
	types        *registry.TypeRegistry
	finders      map[string]Finder
	logger       logrus.FieldLogger

	mu      sync.RWMutex
	classes map[string]resolvedClass
}

// New builds a repository. The connection is borrowed and never closed by
// the repository.
func New(cfg Config) (*Repository, error) {
	if cfg.Name == "" {
		return nil, errors.NewConfigurationError("name", "repository name is required")
	}

	conn := cfg.Connection
	if conn == nil {
		manager := cfg.Connections
		if manager == nil {
			manager = connection.Default()
		}
		name := cfg.ConnectionName
		if name == "" {
			name = config.DefaultConnection
		}
		var err error
		if conn, err = manager.Get(name); err != nil {
			return nil, err
		}
	}

	types := cfg.Registry
	if types == nil {
		types = registry.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = conn.Logger()
	}

	finders := map[string]Finder{
		FinderAll: func(q *Query) *Query { return q },
	}
	for name, fn := range cfg.Finders {
		if name == "" || fn == nil {
			continue
		}
		finders[name] = fn
	}

	r := &Repository{
		name:         cfg.Name,
		conn:         conn,
		indexName:    cfg.IndexName,
		entityClass:  cfg.EntityClass,
		appNamespace: cfg.AppNamespace,
		types:        types,
		finders:      finders,
		logger:       logger.WithField("repository", cfg.Name),
		classes:      make(map[string]resolvedClass),
	}

	if cfg.EntityClass != "" {
		if _, err := r.EntityClass(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Repository) Name() string {
	return r.name
}

func (r *Repository) Connection() *connection.Connection {
	return r.conn
}

// Collection returns the client handle this repository works against.
func (r *Repository) Collection() datastore.Collection {
	indexName := r.indexName
	if indexName == "" {
		indexName = r.conn.IndexName()
	}
	return r.conn.Client().Index(indexName).Collection(r.name)
}

// EntityClass returns the qualified class entities are built as. With an
// argument it resolves that name instead of the configured one. Results are
// cached per requested name for the life of the repository.
func (r *Repository) EntityClass(override ...string) (string, error) {
	rc, err := r.resolve(r.requested(override...))
	if err != nil {
		return "", err
	}
	return rc.class, nil
}

func (r *Repository) requested(override ...string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	if r.entityClass != "" {
		return r.entityClass
	}
	return registry.DefaultEntityClass
}

func (r *Repository) resolve(name string) (resolvedClass, error) {
	r.mu.RLock()
	rc, ok := r.classes[name]
	r.mu.RUnlock()
	if ok {
		return rc, nil
	}

	class := name
	if name != registry.DefaultEntityClass {
		class = registry.ClassName(r.appNamespace, name)
	}
	factory, ok := r.types.Lookup(class)
	if !ok {
		return resolvedClass{}, errors.NewClassNotFoundError(name, class)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.classes[name]; ok {
		return existing, nil
	}
	rc = resolvedClass{class: class, factory: factory}
	r.classes[name] = rc
	return rc, nil
}

func (r *Repository) build(fields map[string]any, opts ...document.Option) document.Entity {
	opts = append(opts, document.WithSource(r.name))
	rc, err := r.resolve(r.requested())
	if err != nil {
		// New resolved the configured class already, so this only happens
		// when it was never configured and the default was unregistered.
		return document.New(fields, opts...)
	}
	return rc.factory(fields, opts...)
}

func (r *Repository) fromRaw(raw *storagemodels.RawDocument) document.Entity {
	fields := storagemodels.CloneFields(raw.Fields)
	if fields == nil {
		fields = make(map[string]any, 2)
	}
	fields[document.FieldID] = raw.ID
	if raw.Version > 0 {
		fields[document.FieldVersion] = raw.Version
	}
	return r.build(fields, document.WithMarkNew(false))
}

// Find returns an unexecuted query. An empty finder selects FinderAll.
func (r *Repository) Find(finder string, opts ...QueryOption) *Query {
	if finder == "" {
		finder = FinderAll
	}
	q := &Query{repo: r, finder: finder}
	for _, opt := range opts {
		opt(q)
	}

	fn, ok := r.finders[finder]
	if !ok {
		q.err = errors.NewValidationError("finder", fmt.Sprintf("unknown finder %q for %s", finder, r.name))
		return q
	}
	return fn(q)
}

// Get fetches one document by id. Missing documents yield a NotFoundError.
func (r *Repository) Get(ctx context.Context, id string, params map[string]any) (document.Entity, error) {
	r.logger.WithField("id", id).Debug("get")

	raw, err := r.Collection().GetDocument(ctx, id, params)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s/%s: %w", r.name, id, err)
	}
	if raw.ID == "" {
		raw.ID = id
	}
	return r.fromRaw(raw), nil
}

// NewEntity builds an unsaved entity without touching the store.
func (r *Repository) NewEntity(data map[string]any) document.Entity {
	return r.build(data)
}

func (r *Repository) NewEntities(data []map[string]any) []document.Entity {
	out := make([]document.Entity, len(data))
	for i, fields := range data {
		out[i] = r.build(fields)
	}
	return out
}

// PatchEntity assigns data onto e, marking each field dirty.
func (r *Repository) PatchEntity(e document.Entity, data map[string]any) document.Entity {
	e.Patch(data)
	return e
}

// Save creates new entities and updates existing ones. On success e is
// marked persisted and returned; on failure it is left untouched.
func (r *Repository) Save(ctx context.Context, e document.Entity) (document.Entity, error) {
	coll := r.Collection()
	doc := &storagemodels.RawDocument{ID: e.ID(), Fields: document.Fields(e)}
	log := r.logger.WithField("id", doc.ID)

	if e.IsNew() {
		log.Debug("create")
		res, err := coll.CreateDocument(ctx, doc)
		if err != nil {
			return nil, errors.NewPersistenceError("create", r.name, doc.ID, err)
		}
		e.MarkPersisted(res.ID, res.Version)
		return e, nil
	}

	if doc.ID == "" {
		return nil, errors.NewPersistenceError("update", r.name, "",
			errors.NewValidationError(document.FieldID, "persisted entity has no id"))
	}
	doc.Version = e.Version()

	log.WithField("version", doc.Version).Debug("update")
	res, err := coll.UpdateDocument(ctx, doc)
	if err != nil {
		return nil, errors.NewPersistenceError("update", r.name, doc.ID, err)
	}
	e.MarkPersisted(doc.ID, res.Version)
	return e, nil
}

// Delete removes e from the store.
func (r *Repository) Delete(ctx context.Context, e document.Entity) error {
	id := e.ID()
	if id == "" {
		return errors.NewValidationError(document.FieldID, "cannot delete an entity without id")
	}

	r.logger.WithField("id", id).Debug("delete")
	if err := r.Collection().DeleteDocument(ctx, id); err != nil {
		if errors.IsNotFound(err) {
			return err
		}
		return errors.NewPersistenceError("delete", r.name, id, err)
	}
	return nil
}
