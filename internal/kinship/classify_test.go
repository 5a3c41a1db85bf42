package kinship

import (
	"errors"
	"testing"
)

func TestGetRelationship_Family(t *testing.T) {
	g := family()

	tests := []struct {
		a, b string
		want string
	}{
		{"kid", "kid", "self"},
		{"mom", "kid", "mother"},
		{"kid", "mom", "son"},
		{"dad", "sis", "father"},
		{"sis", "dad", "daughter"},
		{"mom", "dad", "wife"},
		{"dad", "mom", "husband"},
		{"kid", "sis", "brother"},
		{"sis", "kid", "sister"},
		{"gpF1", "kid", "maternal grandmother"},
		{"gpM2", "kid", "paternal grandfather"},
		{"kid", "gpF1", "grandson"},
		{"gpF1", "cousinKid", "great-grandmother"},
		{"cousinKid", "gpM1", "great-grandson"},
		{"mom", "kidSon", "paternal grandmother"},
		{"kwMom", "kidSon", "maternal grandmother"},
		{"kidSon", "mom", "grandson"},
		{"aunt", "kid", "maternal aunt"},
		{"uncle", "sis", "paternal uncle"},
		{"kid", "aunt", "nephew"},
		{"sis", "uncle", "niece"},
		{"kid", "cousin", "first cousin"},
		{"cousin", "kid", "first cousin"},
		{"kid", "cousinKid", "first cousin once removed"},
		{"cousinKid", "sis", "first cousin once removed"},
		{"mom", "kidWife", "mother-in-law"},
		{"kidWife", "dad", "daughter-in-law"},
		{"sis", "kidWife", "sister-in-law"},
		{"kidWife", "sis", "sister-in-law"},
		{"uncleM", "mom", "brother-in-law"},
		{"mom", "uncleM", "sister-in-law"},
		{"uncleM", "kid", "uncle by marriage"},
		{"kid", "uncleM", "nephew by marriage"},
		{"kwMom", "mom", "co-mother-in-law"},
		{"mom", "kwMom", "co-mother-in-law"},
		{"kid", "loner", "unrelated"},
		{"loner", "kid", "unrelated"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got, err := GetRelationship(g, tt.a, tt.b)
			if err != nil {
				t.Fatalf("GetRelationship: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetRelationship(%s, %s) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestGetRelationship_WorkedExample(t *testing.T) {
	tests := []struct {
		genderA, genderB Gender
		wantAB, wantBA   string
	}{
		{Male, Male, "father", "son"},
		{Female, Female, "mother", "daughter"},
		{Other, Other, "parent", "child"},
	}

	for _, tt := range tests {
		g := MustGraph(p("A", tt.genderA, nil), p("B", tt.genderB, []string{"A"}))

		ab, err := GetRelationship(g, "A", "B")
		if err != nil {
			t.Fatalf("GetRelationship(A, B): %v", err)
		}
		ba, err := GetRelationship(g, "B", "A")
		if err != nil {
			t.Fatalf("GetRelationship(B, A): %v", err)
		}

		if ab != tt.wantAB || ba != tt.wantBA {
			t.Errorf("genders %s/%s: got %q/%q, want %q/%q", tt.genderA, tt.genderB, ab, ba, tt.wantAB, tt.wantBA)
		}
	}
}

func TestClassify_SelfForEveryPerson(t *testing.T) {
	g := family()
	for _, id := range g.IDs() {
		rel, err := Classify(g, id, id)
		if err != nil {
			t.Fatalf("Classify(%s, %s): %v", id, id, err)
		}
		if _, ok := rel.(Self); !ok {
			t.Errorf("Classify(%s, %s) = %#v, want Self", id, id, rel)
		}
	}
}

func TestClassify_SpouseSymmetric(t *testing.T) {
	// Listed on one side only.
	g := MustGraph(p("x", Female, nil, "y"), p("y", Male, nil))

	xy, err := Classify(g, "x", "y")
	if err != nil {
		t.Fatal(err)
	}
	yx, err := Classify(g, "y", "x")
	if err != nil {
		t.Fatal(err)
	}

	if xy != (Spouse{Gender: Female}) {
		t.Errorf("Classify(x, y) = %#v", xy)
	}
	if yx != (Spouse{Gender: Male}) {
		t.Errorf("Classify(y, x) = %#v", yx)
	}
}

func TestClassify_HalfSiblings(t *testing.T) {
	g := MustGraph(
		p("m", Female, nil),
		p("f1", Male, nil),
		p("f2", Male, nil),
		p("a", Male, []string{"m", "f1"}),
		p("b", Female, []string{"m", "f2"}),
	)

	rel, err := Classify(g, "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if rel != (Sibling{Gender: Male}) {
		t.Errorf("Classify(a, b) = %#v, want brother", rel)
	}
}

func TestClassify_CousinDegrees(t *testing.T) {
	// Two lines of descent from root, four generations deep.
	g := MustGraph(
		p("root", Male, nil),
		p("a1", Male, []string{"root"}),
		p("b1", Female, []string{"root"}),
		p("a2", Male, []string{"a1"}),
		p("b2", Female, []string{"b1"}),
		p("a3", Male, []string{"a2"}),
		p("b3", Female, []string{"b2"}),
		p("a4", Male, []string{"a3"}),
	)

	tests := []struct {
		a, b string
		want Cousin
	}{
		{"a2", "b2", Cousin{Degree: 1}},
		{"a3", "b3", Cousin{Degree: 2}},
		{"a2", "b3", Cousin{Degree: 1, Removal: 1}},
		{"a4", "b2", Cousin{Degree: 1, Removal: 2}},
		{"a4", "b3", Cousin{Degree: 2, Removal: 1}},
	}

	for _, tt := range tests {
		rel, err := Classify(g, tt.a, tt.b)
		if err != nil {
			t.Fatalf("Classify(%s, %s): %v", tt.a, tt.b, err)
		}
		if rel != tt.want {
			t.Errorf("Classify(%s, %s) = %#v, want %#v", tt.a, tt.b, rel, tt.want)
		}
	}
}

func TestClassify_GreatUncle(t *testing.T) {
	g := MustGraph(
		p("gg", Male, nil),
		p("g1", Male, []string{"gg"}),
		p("gu", Female, []string{"gg"}),
		p("p1", Female, []string{"g1"}),
		p("k", Male, []string{"p1"}),
	)

	got, err := GetRelationship(g, "gu", "k")
	if err != nil {
		t.Fatal(err)
	}
	if got != "great-aunt" {
		t.Errorf("GetRelationship(gu, k) = %q, want great-aunt", got)
	}

	got, err = GetRelationship(g, "k", "gu")
	if err != nil {
		t.Fatal(err)
	}
	if got != "great-nephew" {
		t.Errorf("GetRelationship(k, gu) = %q, want great-nephew", got)
	}
}

// Two common ancestors tie on max and sum distance: zz is a's parent and b's
// great-grandparent, aa is b's parent and a's great-grandparent. The smaller id
// must win in both directions so the answers mirror each other.
func TestClassify_CommonAncestorTieBreaksByID(t *testing.T) {
	g := MustGraph(
		p("zz", Male, nil),
		p("aa", Male, nil),
		p("q", Female, []string{"aa"}),
		p("pm", Female, []string{"q"}),
		p("s", Male, []string{"zz"}),
		p("r", Female, []string{"s"}),
		p("a", Male, []string{"zz", "pm"}),
		p("b", Male, []string{"aa", "r"}),
	)

	tests := []struct {
		a, b string
		want string
	}{
		{"a", "b", "great-nephew"},
		{"b", "a", "maternal great-uncle"},
	}

	for _, tt := range tests {
		got, err := GetRelationship(g, tt.a, tt.b)
		if err != nil {
			t.Fatalf("GetRelationship(%s, %s): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("GetRelationship(%s, %s) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClassify_GreatGreatGrandparent(t *testing.T) {
	g := MustGraph(
		p("g4", Female, nil),
		p("g3", Male, []string{"g4"}),
		p("g2", Male, []string{"g3"}),
		p("g1", Female, []string{"g2"}),
		p("k", Other, []string{"g1"}),
	)

	rel, err := Classify(g, "g4", "k")
	if err != nil {
		t.Fatal(err)
	}
	if rel != (Ancestor{Distance: 4, Gender: Female}) {
		t.Fatalf("Classify(g4, k) = %#v", rel)
	}
	if got := (Formatter{}).Format(rel); got != "great-great-grandmother" {
		t.Errorf("label = %q", got)
	}
}

func TestClassify_StepRelations(t *testing.T) {
	g := MustGraph(
		p("mum", Female, nil, "stepdad"),
		p("stepdad", Male, nil),
		p("bio", Male, nil),
		p("child", Female, []string{"mum", "bio"}),
		p("stepkid", Male, []string{"stepdad"}),
	)

	tests := []struct {
		a, b string
		want string
	}{
		{"stepdad", "child", "stepfather"},
		{"child", "stepdad", "stepdaughter"},
		{"stepkid", "child", "stepbrother"},
		{"child", "stepkid", "stepsister"},
	}

	for _, tt := range tests {
		got, err := GetRelationship(g, tt.a, tt.b)
		if err != nil {
			t.Fatalf("GetRelationship(%s, %s): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("GetRelationship(%s, %s) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClassify_GenericPathChain(t *testing.T) {
	// x married y, y later married z: x is the husband of z's wife.
	g := MustGraph(
		p("x", Male, nil, "y"),
		p("y", Female, nil, "x", "z"),
		p("z", Male, nil, "y"),
	)

	rel, err := Classify(g, "x", "z")
	if err != nil {
		t.Fatal(err)
	}

	chain, ok := rel.(PathChain)
	if !ok {
		t.Fatalf("Classify(x, z) = %#v, want PathChain", rel)
	}
	if len(chain.Hops) != 2 || chain.Hops[0].From != "z" || chain.Hops[1].To != "x" {
		t.Errorf("hops should walk from z to x: %+v", chain.Hops)
	}
	if got := (Formatter{}).Format(rel); got != "husband of wife" {
		t.Errorf("label = %q, want %q", got, "husband of wife")
	}
}

func TestClassify_UnknownPerson(t *testing.T) {
	g := family()

	for _, pair := range [][2]string{{"nobody", "kid"}, {"kid", "nobody"}, {"nobody", "nobody"}} {
		if _, err := Classify(g, pair[0], pair[1]); !errors.Is(err, ErrUnknownPerson) {
			t.Errorf("Classify(%s, %s) err = %v, want ErrUnknownPerson", pair[0], pair[1], err)
		}
	}
}

func TestClassify_CycleIsReported(t *testing.T) {
	g := MustGraph(
		p("a", Male, []string{"b"}),
		p("b", Female, []string{"a"}),
		p("c", Other, nil),
	)

	if _, err := GetRelationship(g, "a", "c"); !errors.Is(err, ErrCyclicAncestry) {
		t.Fatalf("err = %v, want ErrCyclicAncestry", err)
	}
}
