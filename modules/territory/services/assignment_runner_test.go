package services

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lodestarhq/lodestar/modules/territory/domain/types"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestAssignmentRunBucketsOutcomes(t *testing.T) {
	territories := []types.Territory{
		{ID: "t1", TerritoryName: "BadSyntax", CriteriaOrder: "(1 AND 2"},
		{ID: "t2", TerritoryName: "DanglingRule", CriteriaOrder: "9"},
		{ID: "t3", TerritoryName: "Vanished", CriteriaOrder: ""},
		{ID: "t4", TerritoryName: "Healthy", CriteriaOrder: "1",
			AccountRules: []types.AccountRule{equalsRule(1, "f1")}},
	}

	store := &territoryStoreStub{
		listNonRootFn: func(context.Context) ([]types.Territory, error) {
			return territories, nil
		},
		updateAccountsFn: func(_ context.Context, id string, accounts []string) (int64, error) {
			if id == "t3" {
				return 0, nil
			}
			if id == "t4" && !reflect.DeepEqual(accounts, []string{"a"}) {
				t.Errorf("t4 accounts = %v, want [a]", accounts)
			}
			return 1, nil
		},
	}

	runner := NewAssignmentRunner(store, newTestEvaluator(map[string][]string{"f1": {"a"}}), discardLogger(), nil)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(report.Invalid, []string{"BadSyntax", "DanglingRule"}) {
		t.Fatalf("invalid bucket = %v", report.Invalid)
	}
	if !reflect.DeepEqual(report.Failed, []string{"Vanished"}) {
		t.Fatalf("failed bucket = %v", report.Failed)
	}
	if !reflect.DeepEqual(report.Updated, []string{"Healthy"}) {
		t.Fatalf("updated bucket = %v", report.Updated)
	}

	message := report.Message()
	for _, want := range []string{
		"Criteria order not valid for territories: [BadSyntax, DanglingRule]",
		"Territories with update problem: [Vanished]",
		"Territories successfully updated: [Healthy]",
	} {
		if !strings.Contains(message, want) {
			t.Fatalf("message %q missing %q", message, want)
		}
	}
}

func TestAssignmentRunIsIdempotent(t *testing.T) {
	territory := types.Territory{
		ID: "t1", TerritoryName: "West", CriteriaOrder: "1 OR 2",
		AccountRules: []types.AccountRule{equalsRule(1, "f1"), equalsRule(2, "f2")},
	}

	var persisted [][]string
	store := &territoryStoreStub{
		listNonRootFn: func(context.Context) ([]types.Territory, error) {
			return []types.Territory{territory}, nil
		},
		updateAccountsFn: func(_ context.Context, _ string, accounts []string) (int64, error) {
			persisted = append(persisted, accounts)
			return 1, nil
		},
	}

	evaluator := newTestEvaluator(map[string][]string{"f1": {"a", "b"}, "f2": {"b", "c"}})
	runner := NewAssignmentRunner(store, evaluator, discardLogger(), nil)

	first, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ: %+v vs %+v", first, second)
	}
	if len(persisted) != 2 || !reflect.DeepEqual(persisted[0], persisted[1]) {
		t.Fatalf("persisted account sets differ: %v", persisted)
	}
	if !reflect.DeepEqual(persisted[0], []string{"a", "b", "c"}) {
		t.Fatalf("persisted = %v, want [a b c]", persisted[0])
	}
}

func TestAssignmentRunAbortsOnStoreError(t *testing.T) {
	wantErr := errors.New("connection reset")
	store := &territoryStoreStub{
		listNonRootFn: func(context.Context) ([]types.Territory, error) {
			return []types.Territory{{ID: "t1", TerritoryName: "West", CriteriaOrder: ""}}, nil
		},
		updateAccountsFn: func(context.Context, string, []string) (int64, error) {
			return 0, wantErr
		},
	}

	runner := NewAssignmentRunner(store, newTestEvaluator(nil), discardLogger(), nil)
	if _, err := runner.Run(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected store error to abort the run, got %v", err)
	}
}

func TestAssignmentRunEmptyCriteriaClearsAccounts(t *testing.T) {
	var cleared []string
	store := &territoryStoreStub{
		listNonRootFn: func(context.Context) ([]types.Territory, error) {
			return []types.Territory{{ID: "t1", TerritoryName: "Bare", CriteriaOrder: "",
				Accounts: []string{"stale-1"}}}, nil
		},
		updateAccountsFn: func(_ context.Context, _ string, accounts []string) (int64, error) {
			cleared = accounts
			return 1, nil
		},
	}

	runner := NewAssignmentRunner(store, newTestEvaluator(nil), discardLogger(), nil)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(cleared) != 0 {
		t.Fatalf("rule-less territory must persist an empty set, got %v", cleared)
	}
	if !reflect.DeepEqual(report.Updated, []string{"Bare"}) {
		t.Fatalf("expected Bare in updated bucket, got %+v", report)
	}
}
