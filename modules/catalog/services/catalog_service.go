package services

import (
	"context"
	"sync"

	"github.com/lodestarhq/lodestar/modules/catalog/domain/ports"
	"github.com/lodestarhq/lodestar/modules/catalog/domain/types"
)

// Catalog answers field-type lookups against a cached copy of the module
// metadata. The cache is loaded on first use and replaced wholesale by
// Reload; callers that miss a field may Reload once and retry.
type Catalog interface {
	FieldType(ctx context.Context, moduleName string, fieldName string) (types.FieldType, bool, error)
	Reload(ctx context.Context) error
}

type catalog struct {
	store ports.CatalogStore

	mu     sync.RWMutex
	loaded bool
	byName map[string]map[string]types.FieldType
}

func NewCatalog(store ports.CatalogStore) Catalog {
	return &catalog{store: store}
}

func (c *catalog) FieldType(ctx context.Context, moduleName string, fieldName string) (types.FieldType, bool, error) {
	c.mu.RLock()
	if c.loaded {
		fieldType, ok := c.byName[moduleName][fieldName]
		c.mu.RUnlock()
		return fieldType, ok, nil
	}
	c.mu.RUnlock()

	if err := c.Reload(ctx); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	fieldType, ok := c.byName[moduleName][fieldName]
	return fieldType, ok, nil
}

func (c *catalog) Reload(ctx context.Context) error {
	byName, err := c.store.ListModuleFieldTypes(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.byName = byName
	c.loaded = true
	c.mu.Unlock()
	return nil
}
