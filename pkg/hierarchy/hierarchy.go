// Package hierarchy builds response trees for single-rooted name hierarchies
// (roles reporting to roles, territories parented to territories).
package hierarchy

import "sort"

// Record is one row of a hierarchy: a named node and the name of its parent.
// The root has an empty or self-describing parent that never matches a name.
type Record struct {
	Name   string
	ID     string
	Parent string
}

// Node is one element of the assembled tree.
type Node struct {
	Name     string  `json:"name"`
	ID       string  `json:"id"`
	Children []*Node `json:"children"`
}

// Build assembles the tree below rootName from a flat record list using a
// queue over a name-indexed arena, so depth is bounded by the queue and not
// the call stack. Children are ordered by name. Records whose parent chain
// never reaches the root are left out, as is any node already placed (a
// malformed cycle therefore cannot loop the build).
func Build(rootName string, rootID string, records []Record) *Node {
	childrenByParent := make(map[string][]Record, len(records))
	for _, rec := range records {
		childrenByParent[rec.Parent] = append(childrenByParent[rec.Parent], rec)
	}
	for parent := range childrenByParent {
		children := childrenByParent[parent]
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	}

	root := &Node{Name: rootName, ID: rootID, Children: []*Node{}}
	placed := map[string]bool{rootName: true}

	queue := []*Node{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, childRec := range childrenByParent[current.Name] {
			if placed[childRec.Name] {
				continue
			}
			placed[childRec.Name] = true
			child := &Node{Name: childRec.Name, ID: childRec.ID, Children: []*Node{}}
			current.Children = append(current.Children, child)
			queue = append(queue, child)
		}
	}

	return root
}
