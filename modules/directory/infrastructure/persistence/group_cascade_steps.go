package persistence

import (
	"encoding/json"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

// GroupCascadePlanner builds the step lists for group mutations. Group names
// are embedded in sibling groups' selections (group-sourced groups) and in
// sharing rule selections on both sides.
type GroupCascadePlanner struct{}

func NewGroupCascadePlanner() ports.GroupCascades {
	return GroupCascadePlanner{}
}

func memberRenameSQL(table string, column string) string {
	return `
UPDATE ` + table + ` SET ` + column + ` = (
  SELECT jsonb_agg(
    CASE WHEN member->>'group_name' = $1
         THEN jsonb_set(member, '{group_name}', to_jsonb($2::text))
         ELSE member END)
  FROM jsonb_array_elements(` + column + `) AS member
)
WHERE ` + column + ` @> jsonb_build_array(jsonb_build_object('group_name', $1::text))
`
}

func memberPullSQL(table string, column string) string {
	return `
UPDATE ` + table + ` SET ` + column + ` = (
  SELECT coalesce(jsonb_agg(member), '[]'::jsonb)
  FROM jsonb_array_elements(` + column + `) AS member
  WHERE member->>'group_name' IS DISTINCT FROM $1
)
WHERE ` + column + ` @> jsonb_build_array(jsonb_build_object('group_name', $1::text))
`
}

func (GroupCascadePlanner) UpdateSteps(group types.Group) ([]cascade.Step, error) {
	selectedJSON, err := json.Marshal(group.Selected)
	if err != nil {
		return nil, err
	}

	return []cascade.Step{{
		Name: "group",
		SQL: `
UPDATE groups SET
  group_name = $2, group_description = $3, group_source = $4, selected = $5
WHERE id = $1
`,
		Args: []any{group.ID, group.GroupName, group.GroupDescription, group.GroupSource, selectedJSON},
	}}, nil
}

func (GroupCascadePlanner) RenameSteps(oldName string, newName string) []cascade.Step {
	return []cascade.Step{
		{
			Name: "groups",
			SQL:  memberRenameSQL("groups", "selected"),
			Args: []any{oldName, newName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberRenameSQL("sharing_rules", "records_shared_from_selected"),
			Args: []any{oldName, newName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberRenameSQL("sharing_rules", "records_shared_to_selected"),
			Args: []any{oldName, newName},
		},
	}
}

func (GroupCascadePlanner) DeleteSteps(id string, groupName string) []cascade.Step {
	return []cascade.Step{
		{
			Name: "group",
			SQL:  `DELETE FROM groups WHERE id = $1`,
			Args: []any{id},
		},
		{
			Name: "groups",
			SQL:  memberPullSQL("groups", "selected"),
			Args: []any{groupName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberPullSQL("sharing_rules", "records_shared_from_selected"),
			Args: []any{groupName},
		},
		{
			Name: "sharing_rules",
			SQL:  memberPullSQL("sharing_rules", "records_shared_to_selected"),
			Args: []any{groupName},
		},
	}
}
