/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package connection

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/datastore/ddb"
	"github.com/suparena/docstore/datastore/mock"
	"github.com/suparena/docstore/datastore/sqlstore"
	"github.com/suparena/docstore/errors"
)

// Open builds the client cfg describes and wraps it as a connection.
func Open(ctx context.Context, name string, cfg config.ConnectionConfig, logger logrus.FieldLogger) (*Connection, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithFields(logrus.Fields{"connection": name, "driver": cfg.Driver})

	var (
		client datastore.Client
		err    error
	)
	switch cfg.Driver {
	case config.DriverDynamoDB:
		client, err = ddb.New(ctx, ddb.Config{
			Region:         cfg.Region,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			Endpoint:       cfg.Endpoint,
			Table:          cfg.Index,
			ConsistentRead: cfg.ConsistentRead,
			MaxRetries:     cfg.MaxRetries,
			RetryBackoff:   cfg.RetryBackoff,
		}, ddb.WithLogger(log))
	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		client, err = sqlstore.Open(ctx, sqlstore.Config{
			Driver:       cfg.Driver,
			DSN:          cfg.DSN,
			DefaultIndex: cfg.Index,
			QueryLog:     cfg.QueryLog,
			AutoMigrate:  cfg.AutoMigrate,
		}, sqlstore.WithLogger(log))
	case config.DriverMemory:
		client = mock.New().WithDefaultIndex(cfg.Index)
	default:
		return nil, errors.NewConfigurationError("driver", fmt.Sprintf("unknown driver %q for connection %q", cfg.Driver, name))
	}
	if err != nil {
		return nil, fmt.Errorf("open connection %q: %w", name, err)
	}

	return New(name, client, WithIndex(cfg.Index), WithLogger(logger)), nil
}

// LoadAll opens every configured connection and registers it with m. On
// failure the connections opened so far are closed and nothing is kept.
func LoadAll(ctx context.Context, m *Manager, cfg *config.Config, logger logrus.FieldLogger) error {
	opened := make([]*Connection, 0, len(cfg.Connections))
	rollback := func() {
		for _, conn := range opened {
			m.Drop(conn.Name())
			_ = conn.Close()
		}
	}

	for _, name := range cfg.Names() {
		conn, err := Open(ctx, name, cfg.Connections[name], logger)
		if err != nil {
			rollback()
			return err
		}
		if err := m.Register(conn); err != nil {
			_ = conn.Close()
			rollback()
			return err
		}
		opened = append(opened, conn)
	}
	return nil
}
