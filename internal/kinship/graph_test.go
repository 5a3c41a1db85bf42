package kinship

import (
	"errors"
	"slices"
	"testing"
)

func TestNewGraph_DuplicateID(t *testing.T) {
	_, err := NewGraph([]Person{{ID: "a"}, {ID: "a"}})
	if !errors.Is(err, ErrDuplicatePerson) {
		t.Fatalf("err = %v, want ErrDuplicatePerson", err)
	}
}

func TestNewGraph_CopiesInput(t *testing.T) {
	people := []Person{{ID: "a"}, {ID: "b", Parents: []string{"a"}}}
	g, err := NewGraph(people)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	people[1].Parents[0] = "zzz"

	if got := g.Parents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(b) = %v, want [a]", got)
	}
	if got := g.GenderOf("a"); got != Other {
		t.Errorf("GenderOf(a) = %q, want other", got)
	}
}

func TestGraph_DerivedRelations(t *testing.T) {
	g := family()

	if got := g.Children("mom"); !slices.Equal(got, []string{"kid", "sis"}) {
		t.Errorf("Children(mom) = %v", got)
	}
	if got := g.Siblings("mom"); !slices.Equal(got, []string{"aunt"}) {
		t.Errorf("Siblings(mom) = %v", got)
	}
	if !g.IsSibling("kid", "sis") || !g.IsSibling("sis", "kid") {
		t.Error("kid and sis should be siblings both ways")
	}
	if g.IsSibling("kid", "kid") {
		t.Error("a person is never its own sibling")
	}
	if g.IsSibling("kid", "cousin") {
		t.Error("cousins are not siblings")
	}
}

func TestGraph_PartnerListedOneWay(t *testing.T) {
	g := MustGraph(p("a", Male, nil, "b"), p("b", Female, nil))

	if !g.IsPartner("a", "b") || !g.IsPartner("b", "a") {
		t.Error("partner should be recognised in either listing direction")
	}
	if got := g.Partners("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Partners(b) = %v, want [a]", got)
	}
}

func TestGraph_DanglingLinksSkipped(t *testing.T) {
	g := MustGraph(p("a", Male, []string{"ghost"}), p("b", Female, []string{"ghost"}))

	if got := g.Parents("a"); len(got) != 0 {
		t.Errorf("Parents(a) = %v, want empty", got)
	}
	if g.IsSibling("a", "b") {
		t.Error("a shared missing parent must not make siblings")
	}
}

func TestGraph_Validate(t *testing.T) {
	if err := family().Validate(); err != nil {
		t.Fatalf("family fixture should be valid: %v", err)
	}

	g := MustGraph(
		p("a", Male, []string{"b"}, "c"),
		p("b", Female, []string{"a"}),
		p("c", Female, nil),
		p("d", Male, []string{"d", "ghost"}),
	)

	err := g.Validate()
	for _, want := range []error{ErrCyclicAncestry, ErrAsymmetricPartner, ErrSelfLink, ErrDanglingLink} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() = %v, missing %v", err, want)
		}
	}
}
