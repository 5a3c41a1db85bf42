package kinship

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Style selects how cousin degrees and removals are spelled.
type Style string

// Ordinal styles.
const (
	// StyleWords spells "second cousin once removed".
	StyleWords Style = "words"
	// StyleNumeric spells "2nd cousin 1st removed".
	StyleNumeric Style = "numeric"
)

// ParseStyle maps a configuration value to a Style. Empty means StyleWords.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleWords:
		return StyleWords, nil
	case StyleNumeric:
		return StyleNumeric, nil
	default:
		return "", fmt.Errorf("unknown label style %q (want words or numeric)", s)
	}
}

// Formatter turns a Relation into an English kinship term. The zero value uses
// StyleWords.
type Formatter struct {
	Style Style
}

// Format returns the label for r, e.g. "maternal grandmother" or "self".
func (f Formatter) Format(r Relation) string { //nolint:gocyclo,cyclop // one case per variant.
	switch r := r.(type) {
	case Self:
		return "self"
	case Unrelated:
		return "unrelated"
	case Spouse:
		return spouseTerm(r.Gender)
	case Ancestor:
		return withSide(r.Side, r.Distance >= 2, generational(r.Distance, r.Gender, parentTerm, grandparentTerm))
	case Descendant:
		return generational(r.Distance, r.Gender, childTerm, grandchildTerm)
	case ParentInLaw:
		return parentTerm(r.Gender) + "-in-law"
	case ChildInLaw:
		return childTerm(r.Gender) + "-in-law"
	case SiblingInLaw:
		return siblingTerm(r.Gender) + "-in-law"
	case Sibling:
		return siblingTerm(r.Gender)
	case AvuncularUp:
		return withSide(r.Side, true, greats(r.Greats)+r.Gender.term("uncle", "aunt", "uncle/aunt"))
	case AvuncularDown:
		return greats(r.Greats) + r.Gender.term("nephew", "niece", "nibling")
	case Cousin:
		return f.cousin(r)
	case PathChain:
		return f.chain(r.Hops)
	default:
		return "unrelated"
	}
}

// Sentence renders r as a full sentence about a and b.
func (f Formatter) Sentence(aName, bName string, r Relation) string {
	switch r.(type) {
	case Self:
		return aName + " is the same person as " + bName
	case Unrelated:
		return aName + " and " + bName + " are unrelated"
	default:
		return aName + " is " + bName + "'s " + f.Format(r)
	}
}

func parentTerm(g Gender) string      { return g.term("father", "mother", "parent") }
func childTerm(g Gender) string       { return g.term("son", "daughter", "child") }
func siblingTerm(g Gender) string     { return g.term("brother", "sister", "sibling") }
func spouseTerm(g Gender) string      { return g.term("husband", "wife", "spouse") }
func grandparentTerm(g Gender) string { return g.term("grandfather", "grandmother", "grandparent") }
func grandchildTerm(g Gender) string  { return g.term("grandson", "granddaughter", "grandchild") }

// generational builds parent, grandparent, great-grandparent, great-great-... terms.
func generational(d int, g Gender, first, grand func(Gender) string) string {
	if d <= 1 {
		return first(g)
	}

	return greats(d-2) + grand(g)
}

func greats(n int) string {
	if n <= 0 {
		return ""
	}

	return strings.Repeat("great-", n)
}

func withSide(s Side, applies bool, term string) string {
	if !applies || s == SideNone {
		return term
	}

	return string(s) + " " + term
}

func (f Formatter) cousin(c Cousin) string {
	label := f.ordinal(c.Degree) + " cousin"
	if c.Removal > 0 {
		label += " " + f.removal(c.Removal) + " removed"
	}

	return label
}

var ordinalWords = [...]string{
	"zeroth", "first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth",
}

func (f Formatter) ordinal(n int) string {
	if f.Style != StyleNumeric && n >= 0 && n < len(ordinalWords) {
		return ordinalWords[n]
	}

	return NumericOrdinal(n)
}

func (f Formatter) removal(n int) string {
	if f.Style == StyleNumeric {
		return NumericOrdinal(n)
	}

	switch n {
	case 1:
		return "once"
	case 2:
		return "twice"
	case 3:
		return "thrice"
	default:
		return strconv.Itoa(n) + " times"
	}
}

// NumericOrdinal renders 1st, 2nd, 3rd, 4th, 11th, 12th, 13th, 21st, 102nd ...
func NumericOrdinal(n int) string {
	suffix := "th"

	switch v := n % 100; {
	case v >= 11 && v <= 13:
	case v%10 == 1:
		suffix = "st"
	case v%10 == 2:
		suffix = "nd"
	case v%10 == 3:
		suffix = "rd"
	}

	return strconv.Itoa(n) + suffix
}

// chain labels a fallback path. Hops walk from B to A, so the last hop names A.
// Known shapes get a conventional name; anything else reads outward from A,
// "son of husband" meaning A is the son of B's husband.
func (f Formatter) chain(hops []Hop) string {
	if len(hops) == 0 {
		return "unrelated"
	}

	a := hops[len(hops)-1].Gender

	if name, ok := namedShape(Path(hops).Kinds(), a); ok {
		return name
	}

	terms := make([]string, 0, len(hops))
	for i := len(hops) - 1; i >= 0; i-- {
		terms = append(terms, hopTerm(hops[i]))
	}

	return strings.Join(terms, " of ")
}

func hopTerm(h Hop) string {
	switch h.Kind {
	case HopToParent:
		return parentTerm(h.Gender)
	case HopToChild:
		return childTerm(h.Gender)
	case HopPartner:
		return spouseTerm(h.Gender)
	case HopSibling:
		return siblingTerm(h.Gender)
	default:
		return "relative"
	}
}

type shape struct {
	kinds []HopKind
	term  func(Gender) string
}

var shapes = []shape{
	{[]HopKind{HopToParent, HopPartner}, func(g Gender) string {
		return g.term("stepfather", "stepmother", "step-parent")
	}},
	{[]HopKind{HopPartner, HopToChild}, func(g Gender) string {
		return g.term("stepson", "stepdaughter", "stepchild")
	}},
	{[]HopKind{HopToParent, HopPartner, HopToChild}, func(g Gender) string {
		return g.term("stepbrother", "stepsister", "step-sibling")
	}},
	{[]HopKind{HopToParent, HopSibling, HopPartner}, func(g Gender) string {
		return g.term("uncle", "aunt", "uncle/aunt") + " by marriage"
	}},
	{[]HopKind{HopPartner, HopSibling, HopToChild}, func(g Gender) string {
		return g.term("nephew", "niece", "nibling") + " by marriage"
	}},
	{[]HopKind{HopToChild, HopPartner, HopToParent}, func(g Gender) string {
		return "co-" + parentTerm(g) + "-in-law"
	}},
}

func namedShape(kinds []HopKind, a Gender) (string, bool) {
	for _, s := range shapes {
		if slices.Equal(kinds, s.kinds) {
			return s.term(a), true
		}
	}

	return "", false
}
