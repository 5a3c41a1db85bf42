package kinship

import (
	"cmp"
	"fmt"
	"slices"
)

// AncestorMap maps an ancestor id to its minimal generation distance (1 = parent).
type AncestorMap map[string]int

// Side tags which parent's lineage a relative belongs to.
type Side string

// Lineage sides. SideNone is used when the branch cannot be identified uniquely.
const (
	SideNone     Side = ""
	SideMaternal Side = "maternal"
	SidePaternal Side = "paternal"
)

// BuildAncestors returns every ancestor of id with its minimal distance.
//
// The parent relation is a DAG, not a tree: intermarriage creates several paths of
// different length to the same ancestor. The traversal records the minimum and only
// re-expands a node when a strictly shorter path reaches it. The parent relation must
// be acyclic; a cycle is detected on the current DFS path and reported as
// ErrCyclicAncestry instead of looping.
func BuildAncestors(g *Graph, id string) (AncestorMap, error) {
	if err := g.require(id); err != nil {
		return nil, err
	}

	return g.ancestors(id)
}

func (g *Graph) ancestors(id string) (AncestorMap, error) {
	m := AncestorMap{}
	onPath := map[string]bool{id: true}

	var walk func(n string, d int) error
	walk = func(n string, d int) error {
		for _, parent := range g.people[n].Parents {
			if !g.Has(parent) {
				continue
			}
			if onPath[parent] {
				return fmt.Errorf("%w: %q is its own ancestor", ErrCyclicAncestry, parent)
			}
			if cur, seen := m[parent]; seen && cur <= d {
				continue
			}

			m[parent] = d
			onPath[parent] = true
			err := walk(parent, d+1)
			delete(onPath, parent)

			if err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(id, 1); err != nil {
		return nil, err
	}

	return m, nil
}

// Distance returns the generation distance to ancestor and whether it is one.
func (m AncestorMap) Distance(ancestor string) (int, bool) {
	d, ok := m[ancestor]
	return d, ok
}

// IDs returns the ancestor ids ordered by distance, then id.
func (m AncestorMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(m[a], m[b]), cmp.Compare(a, b))
	})

	return ids
}

// side reports which of person's first two parents satisfies leads. It is SideNone
// when person has fewer than two parents or when zero or both parents lead.
func (g *Graph) side(person string, leads func(parent string) (bool, error)) (Side, error) {
	parents := g.Parents(person)
	if len(parents) < 2 {
		return SideNone, nil
	}

	found := SideNone
	matches := 0

	for i, parent := range parents[:2] {
		ok, err := leads(parent)
		if err != nil {
			return SideNone, err
		}
		if ok {
			matches++
			found = g.parentSide(parent, i)
		}
	}

	if matches != 1 {
		return SideNone, nil
	}

	return found, nil
}

// parentSide maps a parent to a lineage side: by gender when it is binary, otherwise
// by position (first listed parent is the mother's side, as the editor records them).
func (g *Graph) parentSide(parent string, position int) Side {
	switch g.GenderOf(parent) {
	case Female:
		return SideMaternal
	case Male:
		return SidePaternal
	}

	if position == 0 {
		return SideMaternal
	}

	return SidePaternal
}

// lineageSide reports on which side of descendant's family ancestor sits.
func (g *Graph) lineageSide(descendant, ancestor string) (Side, error) {
	return g.side(descendant, func(parent string) (bool, error) {
		if parent == ancestor {
			return true, nil
		}

		anc, err := g.ancestors(parent)
		if err != nil {
			return false, err
		}

		_, ok := anc[ancestor]

		return ok, nil
	})
}
