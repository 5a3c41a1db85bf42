package bench

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/persistorai/kinship/internal/kinship"
)

func TestGenerate_Shape(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	tree, err := Generate(200, rng)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if tree.Graph.Len() != 200 {
		t.Errorf("Len = %d, want 200", tree.Graph.Len())
	}

	if err := tree.Graph.Validate(); err != nil {
		t.Errorf("generated graph invalid: %v", err)
	}

	children := 0
	for _, p := range tree.People {
		if len(p.Parents) == 2 {
			children++
			if !tree.Graph.IsPartner(p.Parents[0], p.Parents[1]) {
				t.Errorf("%s: parents %v are not partners", p.ID, p.Parents)
			}
		}
	}

	if len(tree.Checks) != 2*children {
		t.Errorf("checks = %d, want %d", len(tree.Checks), 2*children)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(50, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(50, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.People {
		if a.People[i].Gender != b.People[i].Gender || len(a.People[i].Parents) != len(b.People[i].Parents) {
			t.Fatalf("person %d differs between runs", i)
		}
	}
}

func TestGenerate_Small(t *testing.T) {
	if _, err := Generate(0, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("size 0 should fail")
	}

	tree, err := Generate(2, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Graph.IsPartner("P0", "P1") {
		t.Error("the first two founders should marry")
	}
}

func TestRunner_FullAccuracy(t *testing.T) {
	r := &Runner{Resolver: kinship.NewResolver(kinship.StyleWords), Seed: 42}

	results, err := r.Run(context.Background(), []Experiment{
		{Size: 3, Queries: 50, CheckAccuracy: true},
		{Size: 150, Queries: 300, CheckAccuracy: true},
		{Size: 300, Queries: 100},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	for _, res := range results[:2] {
		if !res.Checked && res.Size > 3 {
			t.Errorf("size %d: accuracy not checked", res.Size)
		}
		if res.Checked && res.Accuracy != 100 {
			t.Errorf("size %d: accuracy %.1f%%, failures %v", res.Size, res.Accuracy, res.Failures)
		}
	}

	last := results[2]
	if last.Checked {
		t.Error("accuracy should be skipped when not requested")
	}
	if last.Queries != 100 || last.Mean <= 0 || last.P95 < last.Mean/100 {
		t.Errorf("timing = %+v", last)
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Seed: 1}
	results, err := r.Run(ctx, DefaultPlan)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want none", len(results))
	}
}

func BenchmarkGetRelationship(b *testing.B) {
	tree, err := Generate(1000, rand.New(rand.NewPCG(3, 3)))
	if err != nil {
		b.Fatal(err)
	}

	ids := tree.Graph.IDs()
	rng := rand.New(rand.NewPCG(4, 4))
	resolver := kinship.NewResolver(kinship.StyleWords)

	for b.Loop() {
		a, c := ids[rng.IntN(len(ids))], ids[rng.IntN(len(ids))]
		if _, err := resolver.GetRelationship(tree.Graph, a, c); err != nil {
			b.Fatal(err)
		}
	}
}
