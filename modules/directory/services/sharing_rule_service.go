package services

import (
	"context"
	"errors"

	"github.com/lodestarhq/lodestar/modules/directory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

const (
	errSharingRuleNotFound      = "SHARING_RULE_NOT_FOUND"
	errSharingSelectorInvalid   = "SHARING_SELECTOR_INVALID"
	errSharingAccessTypeInvalid = "SHARING_ACCESS_TYPE_INVALID"
)

type SharingRuleService interface {
	Create(ctx context.Context, req UpsertSharingRuleRequest) (string, error)
	Get(ctx context.Context, id string) (types.SharingRule, error)
	Update(ctx context.Context, id string, req UpsertSharingRuleRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]types.SharingRule, error)
}

type UpsertSharingRuleRequest struct {
	Modules                   []types.ModuleRef
	RecordsSharedFrom         string
	RecordsSharedFromSelected []types.GroupMember
	RecordsSharedTo           string
	RecordsSharedToSelected   []types.GroupMember
	AccessType                string
	SuperiorsAllowed          bool
}

type sharingRuleService struct {
	store ports.SharingRuleStore
}

func NewSharingRuleService(store ports.SharingRuleStore) SharingRuleService {
	return &sharingRuleService{store: store}
}

func (s *sharingRuleService) Create(ctx context.Context, req UpsertSharingRuleRequest) (string, error) {
	if err := validateSharingRule(req); err != nil {
		return "", err
	}

	id, err := newUUID()
	if err != nil {
		return "", err
	}

	if err := s.store.Insert(ctx, sharingRuleFromRequest(id, req)); err != nil {
		return "", err
	}
	return id, nil
}

func (s *sharingRuleService) Get(ctx context.Context, id string) (types.SharingRule, error) {
	rule, err := s.store.FindByID(ctx, id)
	if errors.Is(err, ports.ErrSharingRuleNotFound) {
		return types.SharingRule{}, httperr.NewNotFound(errSharingRuleNotFound)
	}
	return rule, err
}

func (s *sharingRuleService) Update(ctx context.Context, id string, req UpsertSharingRuleRequest) error {
	if err := validateSharingRule(req); err != nil {
		return err
	}

	matched, err := s.store.Update(ctx, sharingRuleFromRequest(id, req))
	if err != nil {
		return err
	}
	if matched == 0 {
		return httperr.NewNotFound(errSharingRuleNotFound)
	}
	return nil
}

func (s *sharingRuleService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return httperr.NewNotFound(errSharingRuleNotFound)
	}
	return nil
}

func (s *sharingRuleService) List(ctx context.Context) ([]types.SharingRule, error) {
	return s.store.List(ctx)
}

func validateSharingRule(req UpsertSharingRuleRequest) error {
	if !types.SharingSelectors[req.RecordsSharedFrom] || !types.SharingSelectors[req.RecordsSharedTo] {
		return httperr.NewBadRequest(errSharingSelectorInvalid)
	}
	if !types.AccessTypes[req.AccessType] {
		return httperr.NewBadRequest(errSharingAccessTypeInvalid)
	}
	return nil
}

func sharingRuleFromRequest(id string, req UpsertSharingRuleRequest) types.SharingRule {
	modules := req.Modules
	if modules == nil {
		modules = []types.ModuleRef{}
	}
	return types.SharingRule{
		ID:                        id,
		Modules:                   modules,
		RecordsSharedFrom:         req.RecordsSharedFrom,
		RecordsSharedFromSelected: normalizeSharingMembers(req.RecordsSharedFrom, req.RecordsSharedFromSelected),
		RecordsSharedTo:           req.RecordsSharedTo,
		RecordsSharedToSelected:   normalizeSharingMembers(req.RecordsSharedTo, req.RecordsSharedToSelected),
		AccessType:                req.AccessType,
		SuperiorsAllowed:          req.SuperiorsAllowed,
	}
}

// normalizeSharingMembers keeps only the key matching the side's selector:
// group_name for group selections, role_name for role selections.
func normalizeSharingMembers(selector string, members []types.GroupMember) []types.GroupMember {
	out := make([]types.GroupMember, 0, len(members))
	for _, m := range members {
		switch selector {
		case types.GroupSourceGroups:
			out = append(out, types.GroupMember{GroupName: m.GroupName})
		case types.GroupSourceRoles, types.GroupSourceRolesSub:
			out = append(out, types.GroupMember{RoleName: m.RoleName})
		}
	}
	return out
}
