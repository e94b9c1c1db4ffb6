package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
)

type userDirectoryStub struct {
	byRole map[string][]string
	asked  [][]string
}

func (s *userDirectoryStub) ListUserIDsByRoles(_ context.Context, roleNames []string) ([]string, error) {
	s.asked = append(s.asked, roleNames)
	var ids []string
	for _, role := range roleNames {
		ids = append(ids, s.byRole[role]...)
	}
	return ids, nil
}

func visibilityFixture(peers bool) (*RoleVisibilityService, *userDirectoryStub) {
	store := &roleStoreStub{
		findByNameFn: func(_ context.Context, name string) (types.Role, error) {
			return types.Role{RoleName: name, ShareDataWithPeers: peers}, nil
		},
		listHierarchyFn: func(context.Context) ([]hierarchy.Record, error) {
			return []hierarchy.Record{
				{Name: "Manager", Parent: "CEO"},
				{Name: "Rep", Parent: "Manager"},
				{Name: "Intern", Parent: "Rep"},
				{Name: "Auditor", Parent: "CEO"},
			}, nil
		},
	}
	users := &userDirectoryStub{byRole: map[string][]string{
		"Manager": {"u-mgr-2"},
		"Rep":     {"u-rep-1", "u-rep-2"},
		"Intern":  {"u-int-1"},
		"Auditor": {"u-aud-1"},
	}}
	return NewRoleVisibilityService(store, users), users
}

func TestVisibleUserIDsRootRoleIsUnrestricted(t *testing.T) {
	svc, _ := visibilityFixture(false)
	ids, err := svc.VisibleUserIDs(context.Background(), types.RootRoleName, "u-ceo")
	if err != nil {
		t.Fatalf("VisibleUserIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("root role must see an unrestricted (empty) set, got %v", ids)
	}
}

func TestVisibleUserIDsSubordinateClosure(t *testing.T) {
	svc, _ := visibilityFixture(false)
	ids, err := svc.VisibleUserIDs(context.Background(), "Manager", "u-mgr-1")
	if err != nil {
		t.Fatalf("VisibleUserIDs: %v", err)
	}
	// Self plus every Rep and Intern, but not the Auditor branch and not
	// Manager peers (peers flag off).
	want := []string{"u-int-1", "u-mgr-1", "u-rep-1", "u-rep-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("visible = %v, want %v", ids, want)
	}
}

func TestVisibleUserIDsIncludesPeersWhenShared(t *testing.T) {
	svc, _ := visibilityFixture(true)
	ids, err := svc.VisibleUserIDs(context.Background(), "Manager", "u-mgr-1")
	if err != nil {
		t.Fatalf("VisibleUserIDs: %v", err)
	}
	want := []string{"u-int-1", "u-mgr-1", "u-mgr-2", "u-rep-1", "u-rep-2"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("visible = %v, want %v", ids, want)
	}
}

func TestVisibleUserIDsUnknownRoleIsSelfOnly(t *testing.T) {
	store := &roleStoreStub{findByNameFn: func(context.Context, string) (types.Role, error) {
		return types.Role{}, ports.ErrRoleNotFound
	}}
	svc := NewRoleVisibilityService(store, &userDirectoryStub{})

	ids, err := svc.VisibleUserIDs(context.Background(), "Ghost", "u-1")
	if err != nil {
		t.Fatalf("VisibleUserIDs: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"u-1"}) {
		t.Fatalf("expected self only, got %v", ids)
	}
}
