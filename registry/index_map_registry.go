/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sync"
)

// IndexMapRegistry associates collection names with key templates used by
// the DynamoDB client, e.g. {"PK": "ARTICLE", "SK": "ARTICLE#{id}"}.
// Templates may reference {_index}, {_type}, {id} and document fields.

// DefaultIndexMap stores each collection under its own partition, sorted by id.
var DefaultIndexMap = map[string]string{
	"PK": "{_type}",
	"SK": "{id}",
}

var (
	indexMapRegistry = make(map[string]map[string]string)
	mu               sync.RWMutex
)

// RegisterIndexMap associates a collection name with a key template.
func RegisterIndexMap(collection string, idxMap map[string]string) {
	cp := make(map[string]string, len(idxMap))
	for k, v := range idxMap {
		cp[k] = v
	}

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[collection] = cp
}

// GetIndexMap retrieves the key template for a collection, if any.
func GetIndexMap(collection string) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[collection]
	return m, ok
}

// IndexMapFor returns the registered template or DefaultIndexMap.
func IndexMapFor(collection string) map[string]string {
	if m, ok := GetIndexMap(collection); ok {
		return m
	}
	return DefaultIndexMap
}

// UnregisterIndexMap drops a collection's template.
func UnregisterIndexMap(collection string) {
	mu.Lock()
	defer mu.Unlock()
	delete(indexMapRegistry, collection)
}
