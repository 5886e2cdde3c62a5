/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/docstore/errors"
)

// Locator is a thread-safe registry of repositories by name. Repositories
// are built on first Get from their configuration, falling back to the
// locator defaults, and cached afterwards.
type Locator struct {
	mu       sync.RWMutex
	defaults Config
	configs  map[string]Config
	repos    map[string]*Repository
}

// NewLocator creates a locator. The defaults fill every setting a
// configured repository leaves empty, except Name.
func NewLocator(defaults Config) *Locator {
	return &Locator{
		defaults: defaults,
		configs:  make(map[string]Config),
		repos:    make(map[string]*Repository),
	}
}

// Configure stores the configuration used when name is first requested.
// Configuring a repository that was already built is an error.
func (l *Locator) Configure(name string, cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.repos[name]; exists {
		return errors.NewAlreadyExistsError("repository", name)
	}
	l.configs[name] = cfg
	return nil
}

// Get returns the repository for name, building it when needed.
func (l *Locator) Get(name string) (*Repository, error) {
	l.mu.RLock()
	repo, ok := l.repos[name]
	l.mu.RUnlock()
	if ok {
		return repo, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if repo, ok := l.repos[name]; ok {
		return repo, nil
	}

	repo, err := New(l.merge(name, l.configs[name]))
	if err != nil {
		return nil, fmt.Errorf("locate repository %q: %w", name, err)
	}
	l.repos[name] = repo
	return repo, nil
}

func (l *Locator) merge(name string, cfg Config) Config {
	d := l.defaults
	cfg.Name = name
	if cfg.Connection == nil && cfg.ConnectionName == "" {
		cfg.Connection = d.Connection
		cfg.ConnectionName = d.ConnectionName
	}
	if cfg.Connections == nil {
		cfg.Connections = d.Connections
	}
	if cfg.IndexName == "" {
		cfg.IndexName = d.IndexName
	}
	if cfg.AppNamespace == "" {
		cfg.AppNamespace = d.AppNamespace
	}
	if cfg.Registry == nil {
		cfg.Registry = d.Registry
	}
	if cfg.Finders == nil {
		cfg.Finders = d.Finders
	}
	if cfg.Logger == nil {
		cfg.Logger = d.Logger
	}
	return cfg
}

// Set registers a ready-made repository under name, replacing any other.
func (l *Locator) Set(name string, repo *Repository) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.repos[name] = repo
}

// Exists reports whether name has been built, set or configured.
func (l *Locator) Exists(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, built := l.repos[name]
	_, configured := l.configs[name]
	return built || configured
}

// Remove forgets name. It reports whether anything was removed.
func (l *Locator) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, built := l.repos[name]
	_, configured := l.configs[name]
	delete(l.repos, name)
	delete(l.configs, name)
	return built || configured
}

// List returns the names of built repositories in sorted order.
func (l *Locator) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.repos))
	for k := range l.repos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Locator) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.repos = make(map[string]*Repository)
	l.configs = make(map[string]Config)
}
