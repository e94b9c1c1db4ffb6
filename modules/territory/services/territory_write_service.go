package services

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
	"github.com/lodestarhq/lodestar/pkg/httperr"
	"github.com/lodestarhq/lodestar/pkg/uuidv7"
)

const (
	errTerritoryNotFound         = "TERRITORY_NOT_FOUND"
	errParentTerritoryNotFound   = "PARENT_TERRITORY_NOT_FOUND"
	errRootTerritoryProtected    = "ROOT_TERRITORY_PROTECTED"
	errTerritoryTransferSame     = "TERRITORY_TRANSFER_SAME"
	errTransferTerritoryRequired = "TRANSFER_TERRITORY_REQUIRED"
	errTransferTerritoryNotFound = "TRANSFER_TERRITORY_NOT_FOUND"
)

var newUUID = uuidv7.NewString

type TerritoryWriteService interface {
	Create(ctx context.Context, req UpsertTerritoryRequest) (string, error)
	Get(ctx context.Context, id string) (types.Territory, error)
	Update(ctx context.Context, id string, req UpsertTerritoryRequest) (cascade.Counts, error)
	Delete(ctx context.Context, req DeleteTerritoryRequest) (cascade.Counts, error)
	Tree(ctx context.Context) (*hierarchy.Node, error)
	List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	ParentList(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	EnsureRoot(ctx context.Context, rootName string) error
}

// UpsertTerritoryRequest carries the caller-editable territory fields. The
// accounts set is derived by the assignment runner and never accepted here.
type UpsertTerritoryRequest struct {
	TerritoryName    string
	ParentTerritory  string
	TerritoryManager types.UserSnapshot
	Users            []types.UserSnapshot
	Permissions      string
	Description      string
	AccountRules     []types.AccountRule
	CriteriaOrder    string
}

type DeleteTerritoryRequest struct {
	TerritoryName string
	TransferName  string
}

type territoryWriteService struct {
	store    ports.TerritoryStore
	cascades ports.TerritoryCascades
	runner   ports.CascadeRunner
}

func NewTerritoryWriteService(store ports.TerritoryStore, cascades ports.TerritoryCascades, runner ports.CascadeRunner) TerritoryWriteService {
	return &territoryWriteService{store: store, cascades: cascades, runner: runner}
}

func (s *territoryWriteService) Create(ctx context.Context, req UpsertTerritoryRequest) (string, error) {
	if err := s.requireParent(ctx, req.ParentTerritory); err != nil {
		return "", err
	}
	if !ValidateCriteria(req.CriteriaOrder) {
		return "", httperr.NewBadRequest(errCriteriaOrderInvalid)
	}

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	territory := territoryFromRequest(id, req)
	if err := s.store.Insert(ctx, territory); err != nil {
		return "", err
	}
	return id, nil
}

func (s *territoryWriteService) Get(ctx context.Context, id string) (types.Territory, error) {
	territory, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrTerritoryNotFound) {
		return types.Territory{}, httperr.NewNotFound(errTerritoryNotFound)
	}
	return territory, err
}

func (s *territoryWriteService) Update(ctx context.Context, id string, req UpsertTerritoryRequest) (cascade.Counts, error) {
	existing, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrTerritoryNotFound) {
		return nil, httperr.NewNotFound(errTerritoryNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.requireParent(ctx, req.ParentTerritory); err != nil {
		return nil, err
	}
	if !ValidateCriteria(req.CriteriaOrder) {
		return nil, httperr.NewBadRequest(errCriteriaOrderInvalid)
	}

	territory := territoryFromRequest(id, req)
	// Accounts survive edits; only the assignment runner rebuilds them.
	territory.Accounts = existing.Accounts

	steps, err := s.cascades.ReplaceSteps(territory)
	if err != nil {
		return nil, err
	}
	if existing.TerritoryName != territory.TerritoryName {
		steps = append(steps, s.cascades.RenameSteps(existing.TerritoryName, territory.TerritoryName)...)
	}

	return s.runner.Run(ctx, steps)
}

func (s *territoryWriteService) Delete(ctx context.Context, req DeleteTerritoryRequest) (cascade.Counts, error) {
	root, err := s.store.FindRoot(ctx)
	if err != nil && !errors.Is(err, ports.ErrNoRootTerritory) {
		return nil, err
	}
	if err == nil && root.TerritoryName == req.TerritoryName {
		return nil, httperr.NewBadRequest(errRootTerritoryProtected)
	}

	if req.TerritoryName == req.TransferName {
		return nil, httperr.NewBadRequest(errTerritoryTransferSame)
	}

	count, err := s.store.CountByName(ctx, req.TerritoryName)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, httperr.NewNotFound(errTerritoryNotFound)
	}

	children, err := s.store.CountChildren(ctx, req.TerritoryName)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		if req.TransferName == "" {
			return nil, httperr.NewBadRequest(errTransferTerritoryRequired)
		}
		transferCount, err := s.store.CountByName(ctx, req.TransferName)
		if err != nil {
			return nil, err
		}
		if transferCount == 0 {
			return nil, httperr.NewBadRequest(errTransferTerritoryNotFound)
		}
	}

	steps := s.cascades.DeleteSteps(req.TerritoryName, req.TransferName, children > 0)
	return s.runner.Run(ctx, steps)
}

func (s *territoryWriteService) Tree(ctx context.Context) (*hierarchy.Node, error) {
	root, err := s.store.FindRoot(ctx)
	if errors.Is(err, ports.ErrNoRootTerritory) {
		return nil, httperr.NewNotFound(errTerritoryNotFound)
	}
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListHierarchyRecords(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(root.TerritoryName, "", records), nil
}

func (s *territoryWriteService) List(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	return s.store.ListNames(ctx, search, offset, limit)
}

func (s *territoryWriteService) ParentList(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	return s.store.ListParentNames(ctx, search, offset, limit)
}

// EnsureRoot seeds the single root territory on first startup. It is a no-op
// when a root already exists.
func (s *territoryWriteService) EnsureRoot(ctx context.Context, rootName string) error {
	_, err := s.store.FindRoot(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrNoRootTerritory) {
		return err
	}

	id, err := newUUID()
	if err != nil {
		return err
	}
	return s.store.Insert(ctx, types.Territory{
		ID:            id,
		TerritoryName: rootName,
		RootTerritory: true,
		Users:         []types.UserSnapshot{},
		AccountRules:  []types.AccountRule{},
		Accounts:      []string{},
	})
}

func (s *territoryWriteService) requireParent(ctx context.Context, parentName string) error {
	count, err := s.store.CountByName(ctx, parentName)
	if err != nil {
		return err
	}
	if count == 0 {
		return httperr.NewBadRequest(errParentTerritoryNotFound)
	}
	return nil
}

func territoryFromRequest(id string, req UpsertTerritoryRequest) types.Territory {
	users := req.Users
	if users == nil {
		users = []types.UserSnapshot{}
	}
	rules := req.AccountRules
	if rules == nil {
		rules = []types.AccountRule{}
	}
	return types.Territory{
		ID:               id,
		TerritoryName:    req.TerritoryName,
		ParentTerritory:  req.ParentTerritory,
		TerritoryManager: req.TerritoryManager,
		Users:            users,
		Permissions:      req.Permissions,
		Description:      req.Description,
		AccountRules:     rules,
		CriteriaOrder:    req.CriteriaOrder,
		Accounts:         []string{},
	}
}
