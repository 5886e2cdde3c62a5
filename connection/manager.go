/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package connection

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/docstore/errors"
)

// Manager is a thread-safe registry of named connections.
type Manager struct {
	mu      sync.RWMutex
	conns   map[string]*Connection
	aliases map[string]string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		conns:   make(map[string]*Connection),
		aliases: make(map[string]string),
	}
}

// Register stores conn under its name.
func (m *Manager) Register(conn *Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[conn.Name()]; exists {
		return errors.NewAlreadyExistsError("connection", conn.Name())
	}
	if _, exists := m.aliases[conn.Name()]; exists {
		return errors.NewAlreadyExistsError("connection", conn.Name())
	}
	m.conns[conn.Name()] = conn
	conn.Logger().WithField("connection", conn.Name()).Info("connection registered")
	return nil
}

// Get returns the connection registered under name or one of its aliases.
func (m *Manager) Get(name string) (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if target, ok := m.aliases[name]; ok {
		name = target
	}
	conn, ok := m.conns[name]
	if !ok {
		return nil, errors.NewConfigurationError("connection", fmt.Sprintf("connection %q is not configured", name))
	}
	return conn, nil
}

// Alias makes alias resolve to the registered connection target.
func (m *Manager) Alias(alias, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conns[target]; !ok {
		return errors.NewConfigurationError("connection", fmt.Sprintf("cannot alias %q to unknown connection %q", alias, target))
	}
	if _, exists := m.conns[alias]; exists {
		return errors.NewAlreadyExistsError("connection", alias)
	}
	m.aliases[alias] = target
	return nil
}

// Drop removes a connection and the aliases pointing at it without closing
// it. Dropping an alias removes only the alias.
func (m *Manager) Drop(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.aliases[name]; ok {
		delete(m.aliases, name)
		return true
	}
	if _, ok := m.conns[name]; !ok {
		return false
	}
	delete(m.conns, name)
	for alias, target := range m.aliases {
		if target == name {
			delete(m.aliases, alias)
		}
	}
	return true
}

// Names returns the registered connection names, aliases excluded.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.conns))
	for name := range m.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll closes and removes every connection.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, conn := range m.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	m.conns = make(map[string]*Connection)
	m.aliases = make(map[string]string)
	return stderrors.Join(errs...)
}

var defaultManager = NewManager()

// Default returns the process-wide manager.
func Default() *Manager {
	return defaultManager
}

// Register adds conn to the default manager.
func Register(conn *Connection) error {
	return defaultManager.Register(conn)
}

// Get looks name up in the default manager.
func Get(name string) (*Connection, error) {
	return defaultManager.Get(name)
}
