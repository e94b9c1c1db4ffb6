package services

import (
	"context"
	"errors"
	"sort"

	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
	"github.com/lodestarhq/lodestar/modules/role/domain/types"
)

// RoleVisibilityService computes which user IDs a given user can see based
// on their position in the reporting hierarchy: themselves, their peers when
// the role shares data with peers, and everyone holding a subordinate role.
type RoleVisibilityService struct {
	roles ports.RoleStore
	users ports.UserDirectory
}

func NewRoleVisibilityService(roles ports.RoleStore, users ports.UserDirectory) *RoleVisibilityService {
	return &RoleVisibilityService{roles: roles, users: users}
}

// VisibleUserIDs returns the sorted visible-user set for one user. The root
// role returns an empty set, meaning unrestricted visibility.
func (s *RoleVisibilityService) VisibleUserIDs(ctx context.Context, roleName string, userID string) ([]string, error) {
	if roleName == types.RootRoleName {
		return []string{}, nil
	}

	visible := map[string]struct{}{userID: {}}

	role, err := s.roles.FindByName(ctx, roleName)
	if errors.Is(err, ports.ErrRoleNotFound) {
		return sortedKeys(visible), nil
	}
	if err != nil {
		return nil, err
	}

	memberRoles := []string{}
	if role.ShareDataWithPeers {
		memberRoles = append(memberRoles, roleName)
	}

	subordinates, err := s.subordinateRoleNames(ctx, roleName)
	if err != nil {
		return nil, err
	}
	memberRoles = append(memberRoles, subordinates...)

	ids, err := s.users.ListUserIDsByRoles(ctx, memberRoles)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		visible[id] = struct{}{}
	}

	return sortedKeys(visible), nil
}

// subordinateRoleNames walks the reporting hierarchy breadth-first from the
// given role, collecting every role below it.
func (s *RoleVisibilityService) subordinateRoleNames(ctx context.Context, roleName string) ([]string, error) {
	records, err := s.roles.ListHierarchyRecords(ctx)
	if err != nil {
		return nil, err
	}

	childrenByParent := make(map[string][]string, len(records))
	for _, rec := range records {
		childrenByParent[rec.Parent] = append(childrenByParent[rec.Parent], rec.Name)
	}

	var names []string
	seen := map[string]bool{roleName: true}
	queue := []string{roleName}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range childrenByParent[current] {
			if seen[child] {
				continue
			}
			seen[child] = true
			names = append(names, child)
			queue = append(queue, child)
		}
	}
	return names, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
