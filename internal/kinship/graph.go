// Package kinship derives natural-language kinship terms ("maternal grandmother",
// "second cousin once removed", "sister-in-law") from a graph of people linked by
// parent and partner relations.
//
// A Graph is an immutable snapshot. Every query reads it without mutation, so one
// snapshot may be shared by any number of goroutines. Derived structures (sibling
// sets, ancestor maps, visited sets) live only for the duration of a single query.
package kinship

import (
	"errors"
	"fmt"
	"slices"
)

// Person is a node of the family graph.
type Person struct {
	ID       string
	Gender   Gender
	Parents  []string // ordered; the first two are treated as the biological pair
	Partners []string
}

// Graph is an immutable family graph snapshot.
type Graph struct {
	people   map[string]*Person
	ids      []string            // sorted
	children map[string][]string // parent -> children, sorted, deduplicated
	listedBy map[string][]string // person -> people listing it as partner, sorted
}

// NewGraph builds a snapshot from people. Slices are copied, so later changes to
// the input do not leak into the graph. Links to unknown ids are kept and skipped
// by traversal; use Validate to report them.
func NewGraph(people []Person) (*Graph, error) {
	g := &Graph{
		people:   make(map[string]*Person, len(people)),
		ids:      make([]string, 0, len(people)),
		children: make(map[string][]string),
		listedBy: make(map[string][]string),
	}

	for i := range people {
		p := people[i]
		if _, dup := g.people[p.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePerson, p.ID)
		}

		p.Parents = slices.Clone(p.Parents)
		p.Partners = slices.Clone(p.Partners)
		if p.Gender == "" {
			p.Gender = Other
		}

		g.people[p.ID] = &p
		g.ids = append(g.ids, p.ID)
	}

	slices.Sort(g.ids)

	for _, id := range g.ids {
		p := g.people[id]
		for _, parent := range p.Parents {
			if !slices.Contains(g.children[parent], id) {
				g.children[parent] = append(g.children[parent], id)
			}
		}
		for _, partner := range p.Partners {
			if !slices.Contains(g.listedBy[partner], id) {
				g.listedBy[partner] = append(g.listedBy[partner], id)
			}
		}
	}

	return g, nil
}

// MustGraph is NewGraph for fixtures; it panics on a duplicate id.
func MustGraph(people ...Person) *Graph {
	g, err := NewGraph(people)
	if err != nil {
		panic(err)
	}

	return g
}

// Len returns the number of people.
func (g *Graph) Len() int { return len(g.ids) }

// IDs returns all person ids in ascending order.
func (g *Graph) IDs() []string { return slices.Clone(g.ids) }

// Has reports whether id is a person of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.people[id]
	return ok
}

// Person returns a copy of the person with the given id.
func (g *Graph) Person(id string) (Person, bool) {
	p, ok := g.people[id]
	if !ok {
		return Person{}, false
	}

	cp := *p
	cp.Parents = slices.Clone(p.Parents)
	cp.Partners = slices.Clone(p.Partners)

	return cp, true
}

// GenderOf returns the gender of id, or Other for unknown ids.
func (g *Graph) GenderOf(id string) Gender {
	if p, ok := g.people[id]; ok {
		return p.Gender
	}

	return Other
}

// Parents returns the recorded parents of id that exist in the graph, in listed order.
func (g *Graph) Parents(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(p.Parents))
	for _, parent := range p.Parents {
		if g.Has(parent) && !slices.Contains(out, parent) {
			out = append(out, parent)
		}
	}

	return out
}

// Children returns the people listing id as a parent, in id order.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// Partners returns the partners of id: its own listing first, then anyone listing
// id as a partner that id does not list back. Unknown ids are skipped.
func (g *Graph) Partners(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}

	out := make([]string, 0, len(p.Partners))
	for _, q := range p.Partners {
		if q != id && g.Has(q) && !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	for _, q := range g.listedBy[id] {
		if q != id && !slices.Contains(out, q) {
			out = append(out, q)
		}
	}

	return out
}

// IsPartner reports whether a and b are partners, in either listing direction.
func (g *Graph) IsPartner(a, b string) bool {
	if a == b {
		return false
	}
	if p, ok := g.people[a]; ok && slices.Contains(p.Partners, b) {
		return true
	}
	if p, ok := g.people[b]; ok && slices.Contains(p.Partners, a) {
		return true
	}

	return false
}

// IsSibling reports whether a and b are distinct and share at least one parent.
func (g *Graph) IsSibling(a, b string) bool {
	if a == b {
		return false
	}

	pa, ok := g.people[a]
	if !ok {
		return false
	}
	pb, ok := g.people[b]
	if !ok {
		return false
	}

	for _, parent := range pa.Parents {
		if g.Has(parent) && slices.Contains(pb.Parents, parent) {
			return true
		}
	}

	return false
}

// Siblings returns everyone sharing at least one parent with id, in id order.
func (g *Graph) Siblings(id string) []string {
	p, ok := g.people[id]
	if !ok {
		return nil
	}

	var out []string
	for _, parent := range p.Parents {
		if !g.Has(parent) {
			continue
		}
		for _, child := range g.children[parent] {
			if child != id && !slices.Contains(out, child) {
				out = append(out, child)
			}
		}
	}

	slices.Sort(out)

	return out
}

// Validate reports structural defects: links to unknown people, self links,
// asymmetric partner listings and parent cycles. The engine itself never calls it;
// queries tolerate dangling links and detect cycles lazily.
func (g *Graph) Validate() error {
	var errs []error

	for _, id := range g.ids {
		p := g.people[id]
		for _, parent := range p.Parents {
			switch {
			case parent == id:
				errs = append(errs, fmt.Errorf("%w: %q is its own parent", ErrSelfLink, id))
			case !g.Has(parent):
				errs = append(errs, fmt.Errorf("%w: %q lists parent %q", ErrDanglingLink, id, parent))
			}
		}
		for _, partner := range p.Partners {
			switch {
			case partner == id:
				errs = append(errs, fmt.Errorf("%w: %q is its own partner", ErrSelfLink, id))
			case !g.Has(partner):
				errs = append(errs, fmt.Errorf("%w: %q lists partner %q", ErrDanglingLink, id, partner))
			case !slices.Contains(g.people[partner].Partners, id):
				errs = append(errs, fmt.Errorf("%w: %q lists %q", ErrAsymmetricPartner, id, partner))
			}
		}
	}

	if id, ok := g.findCycle(); ok {
		errs = append(errs, fmt.Errorf("%w: through %q", ErrCyclicAncestry, id))
	}

	return errors.Join(errs...)
}

// findCycle runs a three-colour DFS over parent edges and returns a node on a cycle.
func (g *Graph) findCycle() (string, bool) {
	const (
		white = iota
		grey
		black
	)

	colour := make(map[string]int, len(g.ids))

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		colour[id] = grey
		for _, parent := range g.people[id].Parents {
			if parent == id || !g.Has(parent) {
				continue
			}
			switch colour[parent] {
			case grey:
				return parent, true
			case white:
				if at, found := visit(parent); found {
					return at, true
				}
			}
		}
		colour[id] = black

		return "", false
	}

	for _, id := range g.ids {
		if colour[id] == white {
			if at, found := visit(id); found {
				return at, true
			}
		}
	}

	return "", false
}

func (g *Graph) require(ids ...string) error {
	for _, id := range ids {
		if !g.Has(id) {
			return fmt.Errorf("%w: %q", ErrUnknownPerson, id)
		}
	}

	return nil
}
