package persistence

import (
	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// RoleCascadePlanner builds the step lists for role mutations. Denormalized
// role names live in four places beyond the role row: users.role, sibling
// roles' reports_to, group member selections, and sharing rule selections.
type RoleCascadePlanner struct{}

func NewRoleCascadePlanner() ports.RoleCascades {
	return RoleCascadePlanner{}
}

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

func (RoleCascadePlanner) UpdateSteps(role types.Role) []cascade.Step {
	return []cascade.Step{{
		Name: "role",
		SQL: `
UPDATE roles SET
  role_name = $2, reports_to = $3, share_data_with_peers = $4, description = $5
WHERE id = $1 AND role_name <> '` + types.RootRoleName + `'
`,
		Args: []any{role.ID, role.RoleName, role.ReportsTo, role.ShareDataWithPeers, role.Description},
	}}
}

func (RoleCascadePlanner) RenameSteps(oldName string, newName string) []cascade.Step {
	return []cascade.Step{
		{
			Name: "users",
			SQL:  `UPDATE users SET role = $2 WHERE role = $1`,
			Args: []any{oldName, newName},
		},
		{
			Name: "roles",
			SQL:  `UPDATE roles SET reports_to = $2 WHERE reports_to = $1`,
			Args: []any{oldName, newName},
		},
		{
			Name: "groups",
			SQL:  memberRenameSQL("groups", "selected", "role_name"),
			Args: []any{oldName, newName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberRenameSQL("sharing_rules", "records_shared_from_selected", "role_name"),
			Args: []any{oldName, newName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberRenameSQL("sharing_rules", "records_shared_to_selected", "role_name"),
			Args: []any{oldName, newName},
		},
	}
}

func (p RoleCascadePlanner) DeleteSteps(roleName string, transferName string) []cascade.Step {
	steps := p.RenameSteps(roleName, transferName)
	return append(steps, cascade.Step{
		Name: "role",
		SQL:  `DELETE FROM roles WHERE role_name = $1 AND role_name <> '` + types.RootRoleName + `'`,
		Args: []any{roleName},
	})
}
