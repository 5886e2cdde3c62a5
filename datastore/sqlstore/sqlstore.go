/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/errors"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DefaultIndex is the index selected by Index("") when none is configured.
const DefaultIndex = "default"

// Config describes a SQL document store.
type Config struct {
	Driver       string
	DSN          string
	DefaultIndex string
	// QueryLog installs a bundebug hook printing every query.
	QueryLog bool
	// AutoMigrate creates the documents table when it is missing.
	AutoMigrate bool
}

// document is one stored row. Data holds the payload as JSON text.
type document struct {
	bun.BaseModel `bun:"table:docstore_documents,alias:d"`

	IndexName  string         `bun:"index_name,pk,type:varchar(191)"`
	Collection string         `bun:"collection,pk,type:varchar(191)"`
	ID         string         `bun:"id,pk,type:varchar(191)"`
	Version    int64          `bun:"version,notnull"`
	Data       map[string]any `bun:"data,type:text,notnull"`
	CreatedAt  time.Time      `bun:"created_at,notnull"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull"`
}

// Client implements datastore.Client on a bun database.
type Client struct {
	db     *bun.DB
	cfg    Config
	logger logrus.FieldLogger
	idFunc func() string
	ownsDB bool
}

var _ datastore.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for client diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithIDFunc sets the generator for ids of documents created without one.
func WithIDFunc(f func() string) Option {
	return func(c *Client) {
		c.idFunc = f
	}
}

// Open connects to the database described by cfg. The returned client owns
// the connection and closes it on Close.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	c, err := NewWithDB(ctx, db, cfg, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.ownsDB = true

	c.logger.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"index":  c.cfg.DefaultIndex,
	}).Info("SQL document store connected")
	return c, nil
}

// NewWithDB wraps an existing bun database. The caller keeps ownership of db.
func NewWithDB(ctx context.Context, db *bun.DB, cfg Config, opts ...Option) (*Client, error) {
	if cfg.DefaultIndex == "" {
		cfg.DefaultIndex = DefaultIndex
	}
	c := &Client{
		db:     db,
		cfg:    cfg,
		logger: logrus.StandardLogger(),
		idFunc: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.AutoMigrate {
		if err := c.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func openDB(cfg Config) (*bun.DB, error) {
	var (
		sqlDB *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Driver {
	case DriverMySQL:
		if sqlDB, err = sql.Open("mysql", cfg.DSN); err == nil {
			db = bun.NewDB(sqlDB, mysqldialect.New())
		}
	case DriverPostgres, "postgresql":
		if sqlDB, err = sql.Open("postgres", cfg.DSN); err == nil {
			db = bun.NewDB(sqlDB, pgdialect.New())
		}
	case DriverSQLite, "sqlite3":
		if sqlDB, err = sql.Open(sqliteshim.ShimName, cfg.DSN); err == nil {
			// One connection keeps in-memory databases alive and serializes writers.
			sqlDB.SetMaxOpenConns(1)
			db = bun.NewDB(sqlDB, sqlitedialect.New())
		}
	default:
		return nil, errors.NewConfigurationError("driver", fmt.Sprintf("unsupported database type: %s", cfg.Driver))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if cfg.QueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	return db, nil
}

// Migrate creates the documents table if it does not exist.
func (c *Client) Migrate(ctx context.Context) error {
	_, err := c.db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// DB exposes the underlying database.
func (c *Client) DB() *bun.DB {
	return c.db
}

// Index returns a handle to the named index, or the default index.
func (c *Client) Index(name string) datastore.Index {
	if name == "" {
		name = c.cfg.DefaultIndex
	}
	return &index{client: c, name: name}
}

// Close closes the database when the client opened it.
func (c *Client) Close() error {
	if !c.ownsDB {
		return nil
	}
	return c.db.Close()
}

type index struct {
	client *Client
	name   string
}

func (i *index) Name() string {
	return i.name
}

func (i *index) Collection(name string) datastore.Collection {
	return &collection{client: i.client, index: i.name, name: name}
}
