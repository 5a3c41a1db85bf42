package kinship

// ChainLink is one atomic hop of a relationship chain. Label is the role of To
// relative to From: parent, child, sibling or spouse.
type ChainLink struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Resolver answers relationship queries against a graph snapshot. It holds no state
// besides its formatter and is safe for concurrent use.
type Resolver struct {
	Formatter Formatter
}

// NewResolver returns a Resolver using the given label style.
func NewResolver(style Style) Resolver {
	return Resolver{Formatter: Formatter{Style: style}}
}

// Relation classifies what a is to b.
func (r Resolver) Relation(g *Graph, a, b string) (Relation, error) {
	return Classify(g, a, b)
}

// GetRelationship returns the best-match label for what a is to b, such as
// "maternal grandmother", "self" or "unrelated".
func (r Resolver) GetRelationship(g *Graph, a, b string) (string, error) {
	rel, err := Classify(g, a, b)
	if err != nil {
		return "", err
	}

	return r.Formatter.Format(rel), nil
}

// GetRelationshipChain decomposes the shortest path from a to b into atomic hops.
// The result is empty, not nil, when a == b or when b is unreachable.
func (r Resolver) GetRelationshipChain(g *Graph, a, b string) ([]ChainLink, error) {
	path, found, err := FindPath(g, a, b)
	if err != nil {
		return nil, err
	}

	links := make([]ChainLink, 0, len(path))
	if !found {
		return links, nil
	}

	for _, h := range path {
		links = append(links, ChainLink{From: h.From, To: h.To, Label: chainLabel(h.Kind)})
	}

	return links, nil
}

func chainLabel(k HopKind) string {
	switch k {
	case HopToParent:
		return "parent"
	case HopToChild:
		return "child"
	case HopPartner:
		return "spouse"
	default:
		return "sibling"
	}
}

// GetRelationship is Resolver.GetRelationship with word-style labels.
func GetRelationship(g *Graph, a, b string) (string, error) {
	return Resolver{}.GetRelationship(g, a, b)
}

// GetRelationshipChain is Resolver.GetRelationshipChain with the default resolver.
func GetRelationshipChain(g *Graph, a, b string) ([]ChainLink, error) {
	return Resolver{}.GetRelationshipChain(g, a, b)
}
