package ports

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
)

var ErrRoleNotFound = errors.New("role_not_found")

type RoleStore interface {
	Insert(ctx context.Context, role types.Role) error
	// FindByID excludes the CEO role; it is not an ordinary record.
	FindByID(ctx context.Context, id string) (types.Role, error)
	FindByName(ctx context.Context, name string) (types.Role, error)
	CountByName(ctx context.Context, name string) (int64, error)
	ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	// ListParentNames lists distinct non-empty reports_to values.
	ListParentNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	ListHierarchyRecords(ctx context.Context) ([]hierarchy.Record, error)
}

// UserDirectory resolves role membership from the authoritative user table.
type UserDirectory interface {
	ListUserIDsByRoles(ctx context.Context, roleNames []string) ([]string, error)
}
