package services

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
	"github.com/lodestarhq/lodestar/pkg/httperr"
	"github.com/lodestarhq/lodestar/pkg/uuidv7"
)

const (
	errGroupNotFound      = "GROUP_NOT_FOUND"
	errGroupSourceInvalid = "GROUP_SOURCE_INVALID"
)

var newUUID = uuidv7.NewString

type GroupWriteService interface {
	Create(ctx context.Context, req UpsertGroupRequest) (string, error)
	Get(ctx context.Context, id string) (types.Group, error)
	Update(ctx context.Context, id string, req UpsertGroupRequest) (cascade.Counts, error)
	Delete(ctx context.Context, id string) (cascade.Counts, error)
	List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
}

type UpsertGroupRequest struct {
	GroupName        string
	GroupDescription string
	GroupSource      string
	Selected         []types.GroupMember
}

type groupWriteService struct {
	store    ports.GroupStore
	cascades ports.GroupCascades
	runner   ports.CascadeRunner
}

func NewGroupWriteService(store ports.GroupStore, cascades ports.GroupCascades, runner ports.CascadeRunner) GroupWriteService {
	return &groupWriteService{store: store, cascades: cascades, runner: runner}
}

func (s *groupWriteService) Create(ctx context.Context, req UpsertGroupRequest) (string, error) {
	if !types.GroupSources[req.GroupSource] {
		return "", httperr.NewBadRequest(errGroupSourceInvalid)
	}

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	err = s.store.Insert(ctx, types.Group{
		ID:               id,
		GroupName:        req.GroupName,
		GroupDescription: req.GroupDescription,
		GroupSource:      req.GroupSource,
		Selected:         normalizeMembers(req.GroupSource, req.Selected),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *groupWriteService) Get(ctx context.Context, id string) (types.Group, error) {
	group, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrGroupNotFound) {
		return types.Group{}, httperr.NewNotFound(errGroupNotFound)
	}
	return group, err
}

func (s *groupWriteService) Update(ctx context.Context, id string, req UpsertGroupRequest) (cascade.Counts, error) {
	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrGroupNotFound) {
		return nil, httperr.NewNotFound(errGroupNotFound)
	}
	if err != nil {
		return nil, err
	}

	if !types.GroupSources[req.GroupSource] {
		return nil, httperr.NewBadRequest(errGroupSourceInvalid)
	}

	steps, err := s.cascades.UpdateSteps(types.Group{
		ID:               id,
		GroupName:        req.GroupName,
		GroupDescription: req.GroupDescription,
		GroupSource:      req.GroupSource,
		Selected:         normalizeMembers(req.GroupSource, req.Selected),
	})
	if err != nil {
		return nil, err
	}
	if existing.GroupName != req.GroupName {
		steps = append(steps, s.cascades.RenameSteps(existing.GroupName, req.GroupName)...)
	}

	return s.runner.Run(ctx, steps)
}

func (s *groupWriteService) Delete(ctx context.Context, id string) (cascade.Counts, error) {
	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrGroupNotFound) {
		return nil, httperr.NewNotFound(errGroupNotFound)
	}
	if err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, s.cascades.DeleteSteps(id, existing.GroupName))
}

func (s *groupWriteService) List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	return s.store.ListNames(ctx, search, offset, limit)
}

// normalizeMembers keeps only the selection keys relevant to the group
// source, dropping anything else the caller sent along.
func normalizeMembers(source string, members []types.GroupMember) []types.GroupMember {
	out := make([]types.GroupMember, 0, len(members))
	for _, m := range members {
		switch source {
		case types.GroupSourceUsers:
			out = append(out, types.GroupMember{
				ID: m.ID, FirstName: m.FirstName, LastName: m.LastName,
				Email: m.Email, RoleName: m.RoleName,
			})
		case types.GroupSourceRoles, types.GroupSourceRolesSub:
			out = append(out, types.GroupMember{RoleName: m.RoleName})
		case types.GroupSourceGroups:
			out = append(out, types.GroupMember{GroupName: m.GroupName})
		case types.GroupSourceTerritories, types.GroupSourceTerritoriesSub:
			out = append(out, types.GroupMember{TerritoryName: m.TerritoryName})
		}
	}
	return out
}
