package ports

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
)

var (
	ErrTerritoryNotFound = errors.New("territory_not_found")
	ErrNoRootTerritory   = errors.New("no_root_territory")
)

type TerritoryStore interface {
	Insert(ctx context.Context, territory types.Territory) error
	// FindByID excludes the root territory; it is not an ordinary record.
	FindByID(ctx context.Context, id string) (types.Territory, error)
	FindRoot(ctx context.Context) (types.Territory, error)
	CountByName(ctx context.Context, name string) (int64, error)
	CountChildren(ctx context.Context, parentName string) (int64, error)
	ListNonRoot(ctx context.Context) ([]types.Territory, error)
	ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	// ListParentNames lists distinct non-empty parent_territory values.
	ListParentNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	UpdateAccounts(ctx context.Context, id string, accounts []string) (int64, error)
	ListHierarchyRecords(ctx context.Context) ([]hierarchy.Record, error)
}
