package ports

import (
	"context"

	"github.com/lodestarhq/lodestar/modules/catalog/domain/types"
)

// CatalogStore reads module field declarations from the metadata tables.
type CatalogStore interface {
	// ListModuleFieldTypes returns field-name -> field-type per module name.
	ListModuleFieldTypes(ctx context.Context) (map[string]map[string]types.FieldType, error)
}
