package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lodestarhq/lodestar/modules/directory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

type sharingRuleStoreStub struct {
	insertFn   func(ctx context.Context, rule types.SharingRule) error
	findByIDFn func(ctx context.Context, id string) (types.SharingRule, error)
	updateFn   func(ctx context.Context, rule types.SharingRule) (int64, error)
	deleteFn   func(ctx context.Context, id string) (int64, error)
	listFn     func(ctx context.Context) ([]types.SharingRule, error)
}

func (s *sharingRuleStoreStub) Insert(ctx context.Context, rule types.SharingRule) error {
	if s.insertFn == nil {
		return errors.New("Insert not stubbed")
	}
	return s.insertFn(ctx, rule)
}

func (s *sharingRuleStoreStub) FindByID(ctx context.Context, id string) (types.SharingRule, error) {
	if s.findByIDFn == nil {
		return types.SharingRule{}, errors.New("FindByID not stubbed")
	}
	return s.findByIDFn(ctx, id)
}

func (s *sharingRuleStoreStub) Update(ctx context.Context, rule types.SharingRule) (int64, error) {
	if s.updateFn == nil {
		return 0, errors.New("Update not stubbed")
	}
	return s.updateFn(ctx, rule)
}

func (s *sharingRuleStoreStub) Delete(ctx context.Context, id string) (int64, error) {
	if s.deleteFn == nil {
		return 0, errors.New("Delete not stubbed")
	}
	return s.deleteFn(ctx, id)
}

func (s *sharingRuleStoreStub) List(ctx context.Context) ([]types.SharingRule, error) {
	if s.listFn == nil {
		return nil, errors.New("List not stubbed")
	}
	return s.listFn(ctx)
}

func validSharingRuleRequest() UpsertSharingRuleRequest {
	return UpsertSharingRuleRequest{
		Modules:           []types.ModuleRef{{ModuleName: "Account", ModuleLabel: "Accounts"}},
		RecordsSharedFrom: types.GroupSourceRoles,
		RecordsSharedFromSelected: []types.GroupMember{
			{RoleName: "Manager", GroupName: "stray"},
		},
		RecordsSharedTo: types.GroupSourceGroups,
		RecordsSharedToSelected: []types.GroupMember{
			{GroupName: "Sales", RoleName: "stray"},
		},
		AccessType: types.AccessReadOnly,
	}
}

func TestCreateSharingRuleRejectsBadSelector(t *testing.T) {
	svc := NewSharingRuleService(&sharingRuleStoreStub{})

	req := validSharingRuleRequest()
	req.RecordsSharedFrom = types.GroupSourceTerritories
	if _, err := svc.Create(context.Background(), req); !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for territory selector, got %v", err)
	}
}

func TestCreateSharingRuleRejectsBadAccessType(t *testing.T) {
	svc := NewSharingRuleService(&sharingRuleStoreStub{})

	req := validSharingRuleRequest()
	req.AccessType = "Admin"
	if _, err := svc.Create(context.Background(), req); !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for access type, got %v", err)
	}
}

func TestCreateSharingRuleNormalizesBothSides(t *testing.T) {
	var inserted types.SharingRule
	store := &sharingRuleStoreStub{insertFn: func(_ context.Context, rule types.SharingRule) error {
		inserted = rule
		return nil
	}}
	svc := NewSharingRuleService(store)

	id, err := svc.Create(context.Background(), validSharingRuleRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inserted.ID != id {
		t.Fatalf("inserted id %q != returned id %q", inserted.ID, id)
	}
	if !reflect.DeepEqual(inserted.RecordsSharedFromSelected, []types.GroupMember{{RoleName: "Manager"}}) {
		t.Fatalf("from side not normalized: %+v", inserted.RecordsSharedFromSelected)
	}
	if !reflect.DeepEqual(inserted.RecordsSharedToSelected, []types.GroupMember{{GroupName: "Sales"}}) {
		t.Fatalf("to side not normalized: %+v", inserted.RecordsSharedToSelected)
	}
}

func TestUpdateSharingRuleNotFound(t *testing.T) {
	store := &sharingRuleStoreStub{updateFn: func(context.Context, types.SharingRule) (int64, error) {
		return 0, nil
	}}
	svc := NewSharingRuleService(store)

	err := svc.Update(context.Background(), "missing", validSharingRuleRequest())
	if !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteSharingRuleNotFound(t *testing.T) {
	store := &sharingRuleStoreStub{deleteFn: func(context.Context, string) (int64, error) {
		return 0, nil
	}}
	svc := NewSharingRuleService(store)

	if err := svc.Delete(context.Background(), "missing"); !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
