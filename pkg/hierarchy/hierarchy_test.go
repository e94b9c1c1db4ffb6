package hierarchy

import "testing"

func TestBuildOrdersChildrenByName(t *testing.T) {
	tree := Build("CEO", "", []Record{
		{Name: "Sales Head", ID: "2", Parent: "CEO"},
		{Name: "CTO", ID: "1", Parent: "CEO"},
		{Name: "Engineer", ID: "3", Parent: "CTO"},
	})

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(tree.Children))
	}
	if tree.Children[0].Name != "CTO" || tree.Children[1].Name != "Sales Head" {
		t.Fatalf("children not ordered by name: %s, %s", tree.Children[0].Name, tree.Children[1].Name)
	}
	if len(tree.Children[0].Children) != 1 || tree.Children[0].Children[0].Name != "Engineer" {
		t.Fatalf("grandchild missing under CTO")
	}
}

func TestBuildDeepChainDoesNotRecurse(t *testing.T) {
	records := make([]Record, 0, 100000)
	parent := "root"
	for i := 0; i < 100000; i++ {
		name := "n" + string(rune('a'+i%26)) + "-" + itoa(i)
		records = append(records, Record{Name: name, Parent: parent})
		parent = name
	}

	tree := Build("root", "", records)

	depth := 0
	for node := tree; len(node.Children) > 0; node = node.Children[0] {
		depth++
	}
	if depth != 100000 {
		t.Fatalf("expected depth 100000, got %d", depth)
	}
}

func TestBuildIgnoresCycles(t *testing.T) {
	tree := Build("root", "", []Record{
		{Name: "a", Parent: "root"},
		{Name: "b", Parent: "a"},
		{Name: "a", Parent: "b"},
	})

	if len(tree.Children) != 1 || tree.Children[0].Name != "a" {
		t.Fatalf("unexpected first level: %+v", tree.Children)
	}
	if len(tree.Children[0].Children) != 1 || tree.Children[0].Children[0].Name != "b" {
		t.Fatalf("unexpected second level")
	}
	if len(tree.Children[0].Children[0].Children) != 0 {
		t.Fatalf("cycle node must not be placed twice")
	}
}

func TestBuildDropsOrphans(t *testing.T) {
	tree := Build("root", "", []Record{
		{Name: "kept", Parent: "root"},
		{Name: "orphan", Parent: "missing"},
	})
	if len(tree.Children) != 1 || tree.Children[0].Name != "kept" {
		t.Fatalf("orphan must not attach anywhere: %+v", tree.Children)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
