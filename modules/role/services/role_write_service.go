package services

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/role/domain/ports"
	"github.com/lodestarhq/lodestar/modules/role/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
	"github.com/lodestarhq/lodestar/pkg/httperr"
	"github.com/lodestarhq/lodestar/pkg/uuidv7"
)

const (
	errRoleNotFound         = "ROLE_NOT_FOUND"
	errReportsToNotFound    = "REPORTS_TO_NOT_FOUND"
	errRootRoleProtected    = "ROOT_ROLE_PROTECTED"
	errRoleTransferSame     = "ROLE_TRANSFER_SAME"
	errTransferRoleNotFound = "TRANSFER_ROLE_NOT_FOUND"
)

var newUUID = uuidv7.NewString

type RoleWriteService interface {
	Create(ctx context.Context, req UpsertRoleRequest) (string, error)
	Get(ctx context.Context, id string) (types.Role, error)
	Update(ctx context.Context, id string, req UpsertRoleRequest) (cascade.Counts, error)
	Delete(ctx context.Context, req DeleteRoleRequest) (cascade.Counts, error)
	Tree(ctx context.Context) (*hierarchy.Node, error)
	List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	ParentList(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	EnsureBootstrapRoles(ctx context.Context) error
}

type UpsertRoleRequest struct {
	RoleName           string
	ReportsTo          string
	ShareDataWithPeers bool
	Description        string
}

type DeleteRoleRequest struct {
	RoleName     string
	TransferName string
}

type roleWriteService struct {
	store    ports.RoleStore
	cascades ports.RoleCascades
	runner   ports.CascadeRunner
}

func NewRoleWriteService(store ports.RoleStore, cascades ports.RoleCascades, runner ports.CascadeRunner) RoleWriteService {
	return &roleWriteService{store: store, cascades: cascades, runner: runner}
}

func (s *roleWriteService) Create(ctx context.Context, req UpsertRoleRequest) (string, error) {
	if err := s.requireRole(ctx, req.ReportsTo, errReportsToNotFound); err != nil {
		return "", err
	}

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	err = s.store.Insert(ctx, types.Role{
		ID:                 id,
		RoleName:           req.RoleName,
		ReportsTo:          req.ReportsTo,
		ShareDataWithPeers: req.ShareDataWithPeers,
		Description:        req.Description,
		AssociatedUsers:    []string{},
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *roleWriteService) Get(ctx context.Context, id string) (types.Role, error) {
	role, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrRoleNotFound) {
		return types.Role{}, httperr.NewNotFound(errRoleNotFound)
	}
	return role, err
}

func (s *roleWriteService) Update(ctx context.Context, id string, req UpsertRoleRequest) (cascade.Counts, error) {
	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrRoleNotFound) {
		return nil, httperr.NewNotFound(errRoleNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.requireRole(ctx, req.ReportsTo, errReportsToNotFound); err != nil {
		return nil, err
	}

	steps := s.cascades.UpdateSteps(types.Role{
		ID:                 id,
		RoleName:           req.RoleName,
		ReportsTo:          req.ReportsTo,
		ShareDataWithPeers: req.ShareDataWithPeers,
		Description:        req.Description,
	})
	if existing.RoleName != req.RoleName {
		steps = append(steps, s.cascades.RenameSteps(existing.RoleName, req.RoleName)...)
	}

	return s.runner.Run(ctx, steps)
}

func (s *roleWriteService) Delete(ctx context.Context, req DeleteRoleRequest) (cascade.Counts, error) {
	if req.RoleName == types.RootRoleName {
		return nil, httperr.NewBadRequest(errRootRoleProtected)
	}
	if req.RoleName == req.TransferName {
		return nil, httperr.NewBadRequest(errRoleTransferSame)
	}

	if err := s.requireRole(ctx, req.RoleName, errRoleNotFound); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, req.TransferName, errTransferRoleNotFound); err != nil {
		return nil, err
	}

	counts, err := s.runner.Run(ctx, s.cascades.DeleteSteps(req.RoleName, req.TransferName))
	if err != nil {
		return nil, err
	}
	if counts["role"] == 0 {
		return nil, httperr.NewNotFound(errRoleNotFound)
	}
	return counts, nil
}

func (s *roleWriteService) Tree(ctx context.Context) (*hierarchy.Node, error) {
	records, err := s.store.ListHierarchyRecords(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(types.RootRoleName, "", records), nil
}

func (s *roleWriteService) List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	return s.store.ListNames(ctx, search, offset, limit)
}

func (s *roleWriteService) ParentList(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	return s.store.ListParentNames(ctx, search, offset, limit)
}

// EnsureBootstrapRoles seeds the CEO root role and a default Manager role
// reporting to it. Both are no-ops when already present.
func (s *roleWriteService) EnsureBootstrapRoles(ctx context.Context) error {
	bootstrap := []types.Role{
		{RoleName: types.RootRoleName, ReportsTo: "", Description: "CEO role"},
		{RoleName: "Manager", ReportsTo: types.RootRoleName, Description: "Manager role"},
	}

	for _, role := range bootstrap {
		count, err := s.store.CountByName(ctx, role.RoleName)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		id, err := newUUID()
		if err != nil {
			return err
		}
		role.ID = id
		role.AssociatedUsers = []string{}
		if err := s.store.Insert(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func (s *roleWriteService) requireRole(ctx context.Context, name string, code string) error {
	count, err := s.store.CountByName(ctx, name)
	if err != nil {
		return err
	}
	if count == 0 {
		return httperr.NewBadRequest(code)
	}
	return nil
}
