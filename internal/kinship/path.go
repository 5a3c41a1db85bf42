package kinship

// HopKind tags one traversed edge of a connecting path.
type HopKind string

// Hop kinds. A sibling hop stands for a shared-parent link collapsed into one edge.
const (
	HopToParent HopKind = "to_parent"
	HopToChild  HopKind = "to_child"
	HopPartner  HopKind = "partner"
	HopSibling  HopKind = "sibling"
)

// Inverse returns the kind of the same edge walked the other way.
func (k HopKind) Inverse() HopKind {
	switch k {
	case HopToParent:
		return HopToChild
	case HopToChild:
		return HopToParent
	default:
		return k
	}
}

// Hop is one edge of a path. Gender is the gender of To.
type Hop struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Kind   HopKind `json:"kind"`
	Gender Gender  `json:"gender"`
}

// Path is an ordered list of hops; hop i ends where hop i+1 starts.
type Path []Hop

// Reverse returns the path walked from its last node back to its first.
func (p Path) Reverse(g *Graph) Path {
	out := make(Path, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		h := p[i]
		out = append(out, Hop{
			From:   h.To,
			To:     h.From,
			Kind:   h.Kind.Inverse(),
			Gender: g.GenderOf(h.From),
		})
	}

	return out
}

// Kinds returns the hop kinds in order.
func (p Path) Kinds() []HopKind {
	kinds := make([]HopKind, len(p))
	for i, h := range p {
		kinds[i] = h.Kind
	}

	return kinds
}

// FindPath returns the shortest connecting path from a to b by breadth-first search
// over parent, derived child, partner and derived sibling edges. Each person is
// visited once, so among equal-length paths the first discovered wins; that order
// depends on edge enumeration and callers must not rely on it.
//
// The boolean is false when b is unreachable, which is a normal result rather than
// an error. For a == b the path is empty and the boolean is true.
func FindPath(g *Graph, a, b string) (Path, bool, error) {
	if err := g.require(a, b); err != nil {
		return nil, false, err
	}

	if a == b {
		return Path{}, true, nil
	}

	visited := map[string]bool{a: true}
	via := map[string]Hop{}
	queue := []string{a}

	for head := 0; head < len(queue); head++ {
		for _, h := range g.edges(queue[head]) {
			if visited[h.To] {
				continue
			}

			visited[h.To] = true
			via[h.To] = h

			if h.To == b {
				return trace(via, a, b), true, nil
			}

			queue = append(queue, h.To)
		}
	}

	return nil, false, nil
}

// edges enumerates the neighbours of id: parents, children, partners, siblings.
func (g *Graph) edges(id string) []Hop {
	var out []Hop

	add := func(kind HopKind, ids []string) {
		for _, to := range ids {
			out = append(out, Hop{From: id, To: to, Kind: kind, Gender: g.GenderOf(to)})
		}
	}

	add(HopToParent, g.Parents(id))
	add(HopToChild, g.children[id])
	add(HopPartner, g.Partners(id))
	add(HopSibling, g.Siblings(id))

	return out
}

func trace(via map[string]Hop, a, b string) Path {
	var rev Path
	for at := b; at != a; {
		h := via[at]
		rev = append(rev, h)
		at = h.From
	}

	out := make(Path, len(rev))
	for i, h := range rev {
		out[len(rev)-1-i] = h
	}

	return out
}
