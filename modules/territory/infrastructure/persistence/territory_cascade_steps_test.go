package persistence

import (
	"strings"
	"testing"
)

func TestTerritoryRenameStepsCoverEveryReference(t *testing.T) {
	steps := NewTerritoryCascadePlanner().RenameSteps("West", "Far West")
	if len(steps) != 3 {
		t.Fatalf("expected 3 rename steps, got %d", len(steps))
	}

	bySQL := map[string]string{}
	for _, step := range steps {
		if len(step.Args) != 2 || step.Args[0] != "West" || step.Args[1] != "Far West" {
			t.Fatalf("step %s args = %v", step.Name, step.Args)
		}
		bySQL[step.Name] = step.SQL
	}

	if !strings.Contains(bySQL["children"], "SET parent_territory = $2 WHERE parent_territory = $1") {
		t.Fatalf("children step does not reparent: %s", bySQL["children"])
	}
	if !strings.Contains(bySQL["users"], "array_replace(territories, $1, $2)") {
		t.Fatalf("users step does not rewrite territory arrays: %s", bySQL["users"])
	}
	if !strings.Contains(bySQL["groups"], "member->>'territory_name' = $1") {
		t.Fatalf("groups step does not rewrite selections: %s", bySQL["groups"])
	}
	if !strings.Contains(bySQL["groups"], "UPDATE groups SET selected") {
		t.Fatalf("groups step targets the wrong table: %s", bySQL["groups"])
	}
}

func TestTerritoryDeleteStepsReparentOnlyWithChildren(t *testing.T) {
	planner := NewTerritoryCascadePlanner()

	steps := planner.DeleteSteps("West", "East", true)
	if len(steps) != 3 || steps[0].Name != "children" {
		t.Fatalf("expected children reparent first, got %+v", steps)
	}

	steps = planner.DeleteSteps("West", "", false)
	if len(steps) != 2 {
		t.Fatalf("expected no reparent step, got %+v", steps)
	}
	for _, step := range steps {
		if step.Name == "children" {
			t.Fatalf("unexpected children step: %+v", step)
		}
	}
}
