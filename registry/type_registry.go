/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/docstore/document"
)

// Factory builds an entity of one class from raw field data.
type Factory func(fields map[string]any, opts ...document.Option) document.Entity

// DocumentFactory builds the generic *document.Document.
func DocumentFactory(fields map[string]any, opts ...document.Option) document.Entity {
	return document.New(fields, opts...)
}

// TypeRegistry maps qualified entity class names to factories.
type TypeRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewTypeRegistry returns a registry that only knows the default entity class.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		factories: map[string]Factory{
			DefaultEntityClass: DocumentFactory,
		},
	}
}

// Register adds a factory under a qualified class name.
func (r *TypeRegistry) Register(class string, fn Factory) error {
	if class == "" || fn == nil {
		return fmt.Errorf("type registry: class name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[class]; exists {
		return fmt.Errorf("type registry: class %q already registered", class)
	}
	r.factories[class] = fn
	return nil
}

// MustRegister is Register that panics on conflict, for use in init().
func (r *TypeRegistry) MustRegister(class string, fn Factory) {
	if err := r.Register(class, fn); err != nil {
		panic(err)
	}
}

// Unregister removes a class. Unknown names are ignored.
func (r *TypeRegistry) Unregister(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, class)
}

// Lookup returns the factory registered for a qualified class name.
func (r *TypeRegistry) Lookup(class string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.factories[class]
	return fn, ok
}

// Classes lists the registered class names in sorted order.
func (r *TypeRegistry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewTypeRegistry()

// Default returns the process-wide registry used when a repository is not
// given one explicitly.
func Default() *TypeRegistry {
	return defaultRegistry
}

// RegisterType registers a factory on the default registry.
// If the class is already registered, it panics to prevent accidental overrides.
func RegisterType(class string, fn Factory) {
	defaultRegistry.MustRegister(class, fn)
}

// GetFactory returns the factory registered on the default registry.
func GetFactory(class string) (Factory, error) {
	fn, ok := defaultRegistry.Lookup(class)
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for class %q", class)
	}
	return fn, nil
}
