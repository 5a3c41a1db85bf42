package kinship

import "cmp"

// Classify returns what a is to b ("a is b's X"), rendered later with a's gender.
//
// Rules are tried in a fixed priority order and the first match wins: self, spouse,
// descendant, ancestor, parent-in-law, child-in-law, sibling, sibling-in-law,
// uncle/aunt, nephew/niece, cousin, then the shortest-path fallback. Both ids are
// checked before any traversal starts.
func Classify(g *Graph, a, b string) (Relation, error) { //nolint:gocyclo,cyclop // one branch per relation rule.
	if err := g.require(a, b); err != nil {
		return nil, err
	}

	if a == b {
		return Self{}, nil
	}

	gender := g.GenderOf(a)

	if g.IsPartner(a, b) {
		return Spouse{Gender: gender}, nil
	}

	ancA, err := g.ancestors(a)
	if err != nil {
		return nil, err
	}

	ancB, err := g.ancestors(b)
	if err != nil {
		return nil, err
	}

	if d, ok := ancA[b]; ok {
		return Descendant{Distance: d, Gender: gender}, nil
	}

	if d, ok := ancB[a]; ok {
		side := SideNone
		if d >= 2 {
			if side, err = g.lineageSide(b, a); err != nil {
				return nil, err
			}
		}

		return Ancestor{Distance: d, Gender: gender, Side: side}, nil
	}

	for _, child := range g.children[a] {
		if g.IsPartner(child, b) {
			return ParentInLaw{Gender: gender}, nil
		}
	}

	for _, child := range g.children[b] {
		if g.IsPartner(child, a) {
			return ChildInLaw{Gender: gender}, nil
		}
	}

	if g.IsSibling(a, b) {
		return Sibling{Gender: gender}, nil
	}

	if g.isSiblingInLaw(a, b) {
		return SiblingInLaw{Gender: gender}, nil
	}

	for _, parent := range g.Parents(b) {
		if g.IsSibling(parent, a) {
			side, err := g.side(b, func(p string) (bool, error) { return g.IsSibling(p, a), nil })
			if err != nil {
				return nil, err
			}

			return AvuncularUp{Side: side, Gender: gender}, nil
		}
	}

	for _, parent := range g.Parents(a) {
		if g.IsSibling(parent, b) {
			return AvuncularDown{Gender: gender}, nil
		}
	}

	if rel, ok, err := g.collateral(a, b, ancA, ancB); err != nil || ok {
		return rel, err
	}

	path, found, err := FindPath(g, a, b)
	if err != nil {
		return nil, err
	}
	if !found {
		return Unrelated{}, nil
	}

	return PathChain{Hops: path.Reverse(g)}, nil
}

// isSiblingInLaw: a is the partner of one of b's siblings, or a's sibling is b's partner.
func (g *Graph) isSiblingInLaw(a, b string) bool {
	for _, s := range g.Siblings(a) {
		if g.IsPartner(s, b) {
			return true
		}
	}

	for _, s := range g.Siblings(b) {
		if g.IsPartner(s, a) {
			return true
		}
	}

	return false
}

// collateral resolves relatives sharing an ancestor. The nearest common ancestor
// minimizes max(dA, dB); ties go to the smaller dA+dB, then the smaller id.
//
// Degree 0 happens when a's parent (or b's) is the common ancestor but the sibling
// and avuncular rules did not fire, which means a great-uncle/aunt or grand-nephew/niece.
func (g *Graph) collateral(a, b string, ancA, ancB AncestorMap) (Relation, bool, error) {
	best := ""
	bestMax, bestSum := 0, 0

	for _, id := range ancA.IDs() {
		db, ok := ancB[id]
		if !ok {
			continue
		}

		da := ancA[id]
		hi, sum := max(da, db), da+db

		better := cmp.Or(cmp.Compare(hi, bestMax), cmp.Compare(sum, bestSum), cmp.Compare(id, best)) < 0
		if best == "" || better {
			best, bestMax, bestSum = id, hi, sum
		}
	}

	if best == "" {
		return nil, false, nil
	}

	da, db := ancA[best], ancB[best]
	degree := min(da, db) - 1
	removal := da - db
	if removal < 0 {
		removal = -removal
	}

	if degree > 0 {
		return Cousin{Degree: degree, Removal: removal}, true, nil
	}

	gender := g.GenderOf(a)

	if da < db {
		side, err := g.lineageSide(b, best)
		if err != nil {
			return nil, false, err
		}

		return AvuncularUp{Side: side, Gender: gender, Greats: removal - 1}, true, nil
	}

	return AvuncularDown{Gender: gender, Greats: removal - 1}, true, nil
}
