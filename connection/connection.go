/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package connection

import (
	"github.com/sirupsen/logrus"

	"github.com/suparena/docstore/datastore"
)

// Connection is a named handle on a datastore client and the index
// repositories use by default. Repositories borrow connections; whoever
// registered a connection closes it.
type Connection struct {
	name   string
	client datastore.Client
	index  string
	logger logrus.FieldLogger
}

// Option configures a Connection.
type Option func(*Connection)

// WithIndex sets the default index. Empty selects the client's default.
func WithIndex(name string) Option {
	return func(c *Connection) {
		c.index = name
	}
}

// WithLogger sets the logger repositories on this connection inherit.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

// New wraps client as the connection called name.
func New(name string, client datastore.Client, opts ...Option) *Connection {
	c := &Connection{
		name:   name,
		client: client,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Connection) Name() string {
	return c.name
}

func (c *Connection) Client() datastore.Client {
	return c.client
}

// IndexName is the configured default index, possibly empty.
func (c *Connection) IndexName() string {
	return c.index
}

func (c *Connection) Logger() logrus.FieldLogger {
	return c.logger
}

// Index returns the default index handle.
func (c *Connection) Index() datastore.Index {
	return c.client.Index(c.index)
}

// Close closes the underlying client.
func (c *Connection) Close() error {
	return c.client.Close()
}
