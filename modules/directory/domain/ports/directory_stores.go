package ports

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
)

var (
	ErrGroupNotFound       = errors.New("group_not_found")
	ErrSharingRuleNotFound = errors.New("sharing_rule_not_found")
	ErrUserNotFound        = errors.New("user_not_found")
)

type GroupStore interface {
	Insert(ctx context.Context, group types.Group) error
	FindByID(ctx context.Context, id string) (types.Group, error)
	ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
}

type SharingRuleStore interface {
	Insert(ctx context.Context, rule types.SharingRule) error
	FindByID(ctx context.Context, id string) (types.SharingRule, error)
	Update(ctx context.Context, rule types.SharingRule) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	// List returns every sharing rule, newest first.
	List(ctx context.Context) ([]types.SharingRule, error)
}

type UserStore interface {
	Insert(ctx context.Context, user types.User) error
	FindByID(ctx context.Context, id string) (types.User, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	List(ctx context.Context, search string, offset int, limit int) ([]types.User, int64, error)
}

// GroupCascades plans the write steps for group mutations: the group row,
// plus every sibling-group and sharing-rule selection embedding the group's
// name.
type GroupCascades interface {
	UpdateSteps(group types.Group) ([]cascade.Step, error)
	RenameSteps(oldName string, newName string) []cascade.Step
	// DeleteSteps removes the group row and pulls its name out of every
	// embedding selection.
	DeleteSteps(id string, groupName string) []cascade.Step
}

type CascadeRunner interface {
	Run(ctx context.Context, steps []cascade.Step) (cascade.Counts, error)
}
