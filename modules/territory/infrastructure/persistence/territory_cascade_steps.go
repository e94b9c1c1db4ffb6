package persistence

import (
	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// TerritoryCascadePlanner builds the step lists executed by a cascade runner
// for territory mutations. Denormalized territory names live in three places
// beyond the territory row: children's parent_territory, users' territory
// arrays, and territory-sourced group selections. The step names are the keys
// of the modified-count report callers see.
type TerritoryCascadePlanner struct{}

// memberRenameSQL rewrites every element of a jsonb selection array whose
// named key equals $1 to carry $2 instead. The WHERE containment check keeps
// untouched rows out of the update.
func memberRenameSQL(table string, column string, key string) string {
	return `
UPDATE ` + table + ` SET ` + column + ` = (
  SELECT jsonb_agg(
    CASE WHEN member->>'` + key + `' = $1
         THEN jsonb_set(member, '{` + key + `}', to_jsonb($2::text))
         ELSE member END)
  FROM jsonb_array_elements(` + column + `) AS member
)
WHERE ` + column + ` @> jsonb_build_array(jsonb_build_object('` + key + `', $1::text))
`
}

func NewTerritoryCascadePlanner() ports.TerritoryCascades {
	return TerritoryCascadePlanner{}
}

func (TerritoryCascadePlanner) ReplaceSteps(territory types.Territory) ([]cascade.Step, error) {
	managerJSON, usersJSON, rulesJSON, err := marshalTerritoryDocs(territory)
	if err != nil {
		return nil, err
	}

	return []cascade.Step{{
		Name: "territory",
		SQL: `
UPDATE territories SET
  territory_name = $2, parent_territory = $3, territory_manager = $4,
  users = $5, permissions = $6, description = $7, account_rules = $8,
  criteria_order = $9, accounts = $10
WHERE id = $1 AND root_territory IS NOT TRUE
`,
		Args: []any{territory.ID, territory.TerritoryName, territory.ParentTerritory,
			managerJSON, usersJSON, territory.Permissions, territory.Description,
			rulesJSON, territory.CriteriaOrder, territory.Accounts},
	}}, nil
}

func (TerritoryCascadePlanner) RenameSteps(oldName string, newName string) []cascade.Step {
	return []cascade.Step{
		{
			Name: "children",
			SQL:  `UPDATE territories SET parent_territory = $2 WHERE parent_territory = $1`,
			Args: []any{oldName, newName},
		},
		{
			Name: "users",
			SQL: `
UPDATE users SET territories = array_replace(territories, $1, $2)
WHERE $1 = ANY(territories)
`,
			Args: []any{oldName, newName},
		},
		{
			Name: "groups",
			SQL:  memberRenameSQL("groups", "selected", "territory_name"),
			Args: []any{oldName, newName},
		},
	}
}

func (TerritoryCascadePlanner) DeleteSteps(territoryName string, transferName string, reparentChildren bool) []cascade.Step {
	var steps []cascade.Step
	if reparentChildren {
		steps = append(steps, cascade.Step{
			Name: "children",
			SQL:  `UPDATE territories SET parent_territory = $2 WHERE parent_territory = $1`,
			Args: []any{territoryName, transferName},
		})
	}

	// A user may hold several territories, so the deleted one is pulled from
	// the array rather than replaced.
	steps = append(steps, cascade.Step{
		Name: "users",
		SQL: `
UPDATE users SET territories = array_remove(territories, $1)
WHERE $1 = ANY(territories)
`,
		Args: []any{territoryName},
	})

	steps = append(steps, cascade.Step{
		Name: "territory",
		SQL:  `DELETE FROM territories WHERE territory_name = $1 AND root_territory IS NOT TRUE`,
		Args: []any{territoryName},
	})
	return steps
}
