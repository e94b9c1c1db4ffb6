package ports

import (
	"context"

	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// TerritoryCascades plans the multi-table write steps for territory
// mutations. Planning is pure; execution happens through a CascadeRunner.
type TerritoryCascades interface {
	ReplaceSteps(territory types.Territory) ([]cascade.Step, error)
	// RenameSteps propagates a territory rename into every denormalized
	// reference: child territories, user territory arrays, and group
	// selections sourced from territories.
	RenameSteps(oldName string, newName string) []cascade.Step
	// DeleteSteps reparents children (when requested), pulls the territory
	// from every user's territory list, and deletes the row.
	DeleteSteps(territoryName string, transferName string, reparentChildren bool) []cascade.Step
}

// CascadeRunner executes a planned step list inside one transaction.
type CascadeRunner interface {
	Run(ctx context.Context, steps []cascade.Step) (cascade.Counts, error)
}
