package ports

import (
	"context"

	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// RoleCascades plans the multi-table write steps for role mutations: the
// role row itself plus every denormalized role_name reference in users,
// sibling roles, groups, and sharing rules.
type RoleCascades interface {
	UpdateSteps(role types.Role) []cascade.Step
	RenameSteps(oldName string, newName string) []cascade.Step
	DeleteSteps(roleName string, transferName string) []cascade.Step
}

type CascadeRunner interface {
	Run(ctx context.Context, steps []cascade.Step) (cascade.Counts, error)
}
