package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lodestarhq/lodestar/modules/territory/domain/ports"
	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
	"github.com/lodestarhq/lodestar/pkg/cascade"
	"github.com/lodestarhq/lodestar/pkg/hierarchy"
	"github.com/lodestarhq/lodestar/pkg/httperr"
)

type territoryStoreStub struct {
	insertFn          func(ctx context.Context, territory types.Territory) error
	findByIDFn        func(ctx context.Context, id string) (types.Territory, error)
	findRootFn        func(ctx context.Context) (types.Territory, error)
	countByNameFn     func(ctx context.Context, name string) (int64, error)
	countChildrenFn   func(ctx context.Context, parentName string) (int64, error)
	listNonRootFn     func(ctx context.Context) ([]types.Territory, error)
	listNamesFn       func(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	listParentNamesFn func(ctx context.Context, search string, offset int, limit int) ([]string, int64, error)
	updateAccountsFn  func(ctx context.Context, id string, accounts []string) (int64, error)
	listHierarchyFn   func(ctx context.Context) ([]hierarchy.Record, error)
}

func (s *territoryStoreStub) Insert(ctx context.Context, territory types.Territory) error {
	if s.insertFn == nil {
		return errors.New("Insert not stubbed")
	}
	return s.insertFn(ctx, territory)
}

func (s *territoryStoreStub) FindByID(ctx context.Context, id string) (types.Territory, error) {
	if s.findByIDFn == nil {
		return types.Territory{}, errors.New("FindByID not stubbed")
	}
	return s.findByIDFn(ctx, id)
}

func (s *territoryStoreStub) FindRoot(ctx context.Context) (types.Territory, error) {
	if s.findRootFn == nil {
		return types.Territory{}, ports.ErrNoRootTerritory
	}
	return s.findRootFn(ctx)
}

func (s *territoryStoreStub) CountByName(ctx context.Context, name string) (int64, error) {
	if s.countByNameFn == nil {
		return 0, errors.New("CountByName not stubbed")
	}
	return s.countByNameFn(ctx, name)
}

func (s *territoryStoreStub) CountChildren(ctx context.Context, parentName string) (int64, error) {
	if s.countChildrenFn == nil {
		return 0, errors.New("CountChildren not stubbed")
	}
	return s.countChildrenFn(ctx, parentName)
}

func (s *territoryStoreStub) ListNonRoot(ctx context.Context) ([]types.Territory, error) {
	if s.listNonRootFn == nil {
		return nil, errors.New("ListNonRoot not stubbed")
	}
	return s.listNonRootFn(ctx)
}

func (s *territoryStoreStub) ListNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	if s.listNamesFn == nil {
		return nil, 0, errors.New("ListNames not stubbed")
	}
	return s.listNamesFn(ctx, search, offset, limit)
}

func (s *territoryStoreStub) ListParentNames(ctx context.Context, search string, offset int, limit int) ([]string, int64, error) {
	if s.listParentNamesFn == nil {
		return nil, 0, errors.New("ListParentNames not stubbed")
	}
	return s.listParentNamesFn(ctx, search, offset, limit)
}

func (s *territoryStoreStub) UpdateAccounts(ctx context.Context, id string, accounts []string) (int64, error) {
	if s.updateAccountsFn == nil {
		return 0, errors.New("UpdateAccounts not stubbed")
	}
	return s.updateAccountsFn(ctx, id, accounts)
}

func (s *territoryStoreStub) ListHierarchyRecords(ctx context.Context) ([]hierarchy.Record, error) {
	if s.listHierarchyFn == nil {
		return nil, errors.New("ListHierarchyRecords not stubbed")
	}
	return s.listHierarchyFn(ctx)
}

type cascadesStub struct{}

func (cascadesStub) ReplaceSteps(territory types.Territory) ([]cascade.Step, error) {
	return []cascade.Step{{Name: "territory", SQL: "replace", Args: []any{territory.ID}}}, nil
}

func (cascadesStub) RenameSteps(oldName string, newName string) []cascade.Step {
	return []cascade.Step{
		{Name: "children", SQL: "reparent", Args: []any{oldName, newName}},
		{Name: "users", SQL: "rename", Args: []any{oldName, newName}},
		{Name: "groups", SQL: "rename-selected", Args: []any{oldName, newName}},
	}
}

func (cascadesStub) DeleteSteps(territoryName string, transferName string, reparentChildren bool) []cascade.Step {
	steps := []cascade.Step{}
	if reparentChildren {
		steps = append(steps, cascade.Step{Name: "children", SQL: "reparent", Args: []any{territoryName, transferName}})
	}
	return append(steps,
		cascade.Step{Name: "users", SQL: "pull", Args: []any{territoryName}},
		cascade.Step{Name: "territory", SQL: "delete", Args: []any{territoryName}})
}

type cascadeRunnerStub struct {
	steps  []cascade.Step
	counts cascade.Counts
	err    error
}

func (r *cascadeRunnerStub) Run(_ context.Context, steps []cascade.Step) (cascade.Counts, error) {
	r.steps = steps
	if r.err != nil {
		return nil, r.err
	}
	if r.counts != nil {
		return r.counts, nil
	}
	counts := cascade.Counts{}
	for _, step := range steps {
		counts[step.Name]++
	}
	return counts, nil
}

func TestCreateTerritoryRejectsMissingParent(t *testing.T) {
	store := &territoryStoreStub{countByNameFn: func(_ context.Context, name string) (int64, error) {
		return 0, nil
	}}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Create(context.Background(), UpsertTerritoryRequest{
		TerritoryName: "West", ParentTerritory: "Nowhere",
	})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for missing parent, got %v", err)
	}
}

func TestCreateTerritoryRejectsInvalidCriteria(t *testing.T) {
	store := &territoryStoreStub{countByNameFn: func(context.Context, string) (int64, error) {
		return 1, nil
	}}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Create(context.Background(), UpsertTerritoryRequest{
		TerritoryName: "West", ParentTerritory: "Global", CriteriaOrder: "(1 AND 2",
	})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for invalid criteria, got %v", err)
	}
}

func TestCreateTerritoryInsertsWithEmptyAccounts(t *testing.T) {
	var inserted types.Territory
	store := &territoryStoreStub{
		countByNameFn: func(context.Context, string) (int64, error) { return 1, nil },
		insertFn: func(_ context.Context, territory types.Territory) error {
			inserted = territory
			return nil
		},
	}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	id, err := svc.Create(context.Background(), UpsertTerritoryRequest{
		TerritoryName: "West", ParentTerritory: "Global", CriteriaOrder: "1 AND 2",
		AccountRules: []types.AccountRule{{RuleNumber: 1}, {RuleNumber: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" || inserted.ID != id {
		t.Fatalf("expected generated id on inserted record, got %q / %q", id, inserted.ID)
	}
	if len(inserted.Accounts) != 0 {
		t.Fatalf("accounts must start empty, got %v", inserted.Accounts)
	}
	if inserted.RootTerritory {
		t.Fatal("created territory must not be root")
	}
}

func TestUpdateTerritoryPreservesAccountsAndCascadesRename(t *testing.T) {
	store := &territoryStoreStub{
		findByIDFn: func(_ context.Context, id string) (types.Territory, error) {
			return types.Territory{
				ID: id, TerritoryName: "West", ParentTerritory: "Global",
				Accounts: []string{"acc-1", "acc-2"},
			}, nil
		},
		countByNameFn: func(context.Context, string) (int64, error) { return 1, nil },
	}
	runner := &cascadeRunnerStub{}
	svc := NewTerritoryWriteService(store, cascadesStub{}, runner)

	counts, err := svc.Update(context.Background(), "t-1", UpsertTerritoryRequest{
		TerritoryName: "WestCoast", ParentTerritory: "Global",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if counts["territory"] != 1 || counts["children"] != 1 || counts["users"] != 1 || counts["groups"] != 1 {
		t.Fatalf("expected the rename to reach children, users and groups, got %v", counts)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected replace + rename steps, got %d", len(runner.steps))
	}
	for _, step := range runner.steps[1:] {
		if step.Args[0] != "West" || step.Args[1] != "WestCoast" {
			t.Fatalf("rename step %s args wrong: %v", step.Name, step.Args)
		}
	}
}

func TestUpdateTerritoryWithoutRenameSkipsUserCascade(t *testing.T) {
	store := &territoryStoreStub{
		findByIDFn: func(_ context.Context, id string) (types.Territory, error) {
			return types.Territory{ID: id, TerritoryName: "West", ParentTerritory: "Global"}, nil
		},
		countByNameFn: func(context.Context, string) (int64, error) { return 1, nil },
	}
	runner := &cascadeRunnerStub{}
	svc := NewTerritoryWriteService(store, cascadesStub{}, runner)

	if _, err := svc.Update(context.Background(), "t-1", UpsertTerritoryRequest{
		TerritoryName: "West", ParentTerritory: "Global",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(runner.steps) != 1 {
		t.Fatalf("expected a single replace step, got %d", len(runner.steps))
	}
}

func TestUpdateTerritoryNotFound(t *testing.T) {
	store := &territoryStoreStub{findByIDFn: func(context.Context, string) (types.Territory, error) {
		return types.Territory{}, ports.ErrTerritoryNotFound
	}}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Update(context.Background(), "missing", UpsertTerritoryRequest{})
	if !httperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteTerritoryRejectsRoot(t *testing.T) {
	store := &territoryStoreStub{findRootFn: func(context.Context) (types.Territory, error) {
		return types.Territory{TerritoryName: "Global", RootTerritory: true}, nil
	}}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Delete(context.Background(), DeleteTerritoryRequest{TerritoryName: "Global"})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request deleting root, got %v", err)
	}
}

func TestDeleteTerritoryRejectsSelfTransfer(t *testing.T) {
	svc := NewTerritoryWriteService(&territoryStoreStub{}, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Delete(context.Background(), DeleteTerritoryRequest{
		TerritoryName: "West", TransferName: "West",
	})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for self transfer, got %v", err)
	}
}

func TestDeleteTerritoryRequiresTransferForChildren(t *testing.T) {
	store := &territoryStoreStub{
		countByNameFn:   func(context.Context, string) (int64, error) { return 1, nil },
		countChildrenFn: func(context.Context, string) (int64, error) { return 2, nil },
	}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Delete(context.Background(), DeleteTerritoryRequest{TerritoryName: "West"})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request without transfer target, got %v", err)
	}
}

func TestDeleteTerritoryRejectsUnknownTransfer(t *testing.T) {
	store := &territoryStoreStub{
		countByNameFn: func(_ context.Context, name string) (int64, error) {
			if name == "West" {
				return 1, nil
			}
			return 0, nil
		},
		countChildrenFn: func(context.Context, string) (int64, error) { return 1, nil },
	}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	_, err := svc.Delete(context.Background(), DeleteTerritoryRequest{
		TerritoryName: "West", TransferName: "Ghost",
	})
	if !httperr.IsBadRequest(err) {
		t.Fatalf("expected bad request for unknown transfer, got %v", err)
	}
}

func TestDeleteTerritoryReparentsChildrenAndPullsUsers(t *testing.T) {
	store := &territoryStoreStub{
		countByNameFn:   func(context.Context, string) (int64, error) { return 1, nil },
		countChildrenFn: func(context.Context, string) (int64, error) { return 3, nil },
	}
	runner := &cascadeRunnerStub{}
	svc := NewTerritoryWriteService(store, cascadesStub{}, runner)

	counts, err := svc.Delete(context.Background(), DeleteTerritoryRequest{
		TerritoryName: "West", TransferName: "East",
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(runner.steps) != 3 {
		t.Fatalf("expected reparent + pull + delete steps, got %d", len(runner.steps))
	}
	if counts["children"] != 1 || counts["users"] != 1 || counts["territory"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestDeleteTerritoryWithoutChildrenSkipsReparent(t *testing.T) {
	store := &territoryStoreStub{
		countByNameFn:   func(context.Context, string) (int64, error) { return 1, nil },
		countChildrenFn: func(context.Context, string) (int64, error) { return 0, nil },
	}
	runner := &cascadeRunnerStub{}
	svc := NewTerritoryWriteService(store, cascadesStub{}, runner)

	if _, err := svc.Delete(context.Background(), DeleteTerritoryRequest{TerritoryName: "Leaf"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, step := range runner.steps {
		if step.Name == "children" {
			t.Fatal("leaf delete must not plan a reparent step")
		}
	}
}

func TestEnsureRootIsIdempotent(t *testing.T) {
	inserts := 0
	store := &territoryStoreStub{
		findRootFn: func(context.Context) (types.Territory, error) {
			if inserts > 0 {
				return types.Territory{TerritoryName: "Global", RootTerritory: true}, nil
			}
			return types.Territory{}, ports.ErrNoRootTerritory
		},
		insertFn: func(_ context.Context, territory types.Territory) error {
			if !territory.RootTerritory {
				t.Fatalf("root insert missing root flag: %+v", territory)
			}
			inserts++
			return nil
		},
	}
	svc := NewTerritoryWriteService(store, cascadesStub{}, &cascadeRunnerStub{})

	if err := svc.EnsureRoot(context.Background(), "Global"); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	if err := svc.EnsureRoot(context.Background(), "Global"); err != nil {
		t.Fatalf("EnsureRoot second call: %v", err)
	}
	if inserts != 1 {
		t.Fatalf("expected exactly one root insert, got %d", inserts)
	}
}
