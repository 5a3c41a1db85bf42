package kinship

// Kind names a relation variant. It is also the machine-readable kind exposed by the API.
type Kind string

// Relation kinds.
const (
	KindSelf          Kind = "self"
	KindSpouse        Kind = "spouse"
	KindAncestor      Kind = "ancestor"
	KindDescendant    Kind = "descendant"
	KindParentInLaw   Kind = "parent_in_law"
	KindChildInLaw    Kind = "child_in_law"
	KindSiblingInLaw  Kind = "sibling_in_law"
	KindSibling       Kind = "sibling"
	KindAvuncularUp   Kind = "avuncular_up"
	KindAvuncularDown Kind = "avuncular_down"
	KindCousin        Kind = "cousin"
	KindPathChain     Kind = "path_chain"
	KindUnrelated     Kind = "unrelated"
)

// Relation is what person A is to person B. The set of implementations is closed:
// the unexported marker keeps other packages from adding variants, and the
// formatter switches over exactly these types.
//
// Gender fields always carry A's gender.
type Relation interface {
	Kind() Kind
	relation()
}

// Self: A and B are the same person.
type Self struct{}

// Spouse: A is B's partner.
type Spouse struct{ Gender Gender }

// Ancestor: A is B's parent (Distance 1), grandparent (2), great-grandparent (3) ...
// Side is the branch of B's family A belongs to.
type Ancestor struct {
	Distance int
	Gender   Gender
	Side     Side
}

// Descendant: A is B's child (Distance 1), grandchild (2) ...
type Descendant struct {
	Distance int
	Gender   Gender
}

// ParentInLaw: A is the parent of B's partner.
type ParentInLaw struct{ Gender Gender }

// ChildInLaw: A is the partner of B's child.
type ChildInLaw struct{ Gender Gender }

// SiblingInLaw: A is B's sibling's partner or B's partner's sibling.
type SiblingInLaw struct{ Gender Gender }

// Sibling: A and B share at least one parent.
type Sibling struct{ Gender Gender }

// AvuncularUp: A is B's uncle or aunt. Side is the branch of B's family.
// Greats counts extra generations: 1 is a great-uncle, 2 a great-great-uncle.
type AvuncularUp struct {
	Side   Side
	Gender Gender
	Greats int
}

// AvuncularDown: A is B's nephew or niece, or grand-nephew when Greats > 0.
type AvuncularDown struct {
	Gender Gender
	Greats int
}

// Cousin: A and B descend from a common ancestor. Degree 1 is first cousin;
// Removal is the generation difference.
type Cousin struct {
	Degree  int
	Removal int
}

// PathChain is the fallback when no closed-form rule matches. Hops walk from B to A,
// so the last hop reaches A.
type PathChain struct{ Hops []Hop }

// Unrelated: no path connects A and B.
type Unrelated struct{}

func (Self) Kind() Kind          { return KindSelf }
func (Spouse) Kind() Kind        { return KindSpouse }
func (Ancestor) Kind() Kind      { return KindAncestor }
func (Descendant) Kind() Kind    { return KindDescendant }
func (ParentInLaw) Kind() Kind   { return KindParentInLaw }
func (ChildInLaw) Kind() Kind    { return KindChildInLaw }
func (SiblingInLaw) Kind() Kind  { return KindSiblingInLaw }
func (Sibling) Kind() Kind       { return KindSibling }
func (AvuncularUp) Kind() Kind   { return KindAvuncularUp }
func (AvuncularDown) Kind() Kind { return KindAvuncularDown }
func (Cousin) Kind() Kind        { return KindCousin }
func (PathChain) Kind() Kind     { return KindPathChain }
func (Unrelated) Kind() Kind     { return KindUnrelated }

func (Self) relation()          {}
func (Spouse) relation()        {}
func (Ancestor) relation()      {}
func (Descendant) relation()    {}
func (ParentInLaw) relation()   {}
func (ChildInLaw) relation()    {}
func (SiblingInLaw) relation()  {}
func (Sibling) relation()       {}
func (AvuncularUp) relation()   {}
func (AvuncularDown) relation() {}
func (Cousin) relation()        {}
func (PathChain) relation()     {}
func (Unrelated) relation()     {}
