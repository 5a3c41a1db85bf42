package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/kinship"
)

// Experiment is one row of a benchmark plan.
type Experiment struct {
	Size          int  `yaml:"size" json:"size"`
	Queries       int  `yaml:"queries" json:"queries"`
	CheckAccuracy bool `yaml:"check_accuracy" json:"check_accuracy"`
}

// DefaultPlan grows the tree from a handful of people to a few thousand.
// Accuracy is only checked on the smaller trees.
var DefaultPlan = []Experiment{
	{Size: 3, Queries: 1000, CheckAccuracy: true},
	{Size: 20, Queries: 1500, CheckAccuracy: true},
	{Size: 50, Queries: 2000, CheckAccuracy: true},
	{Size: 100, Queries: 2500, CheckAccuracy: true},
	{Size: 200, Queries: 2500, CheckAccuracy: true},
	{Size: 300, Queries: 2500, CheckAccuracy: true},
	{Size: 400, Queries: 2500, CheckAccuracy: true},
	{Size: 500, Queries: 3000},
	{Size: 1000, Queries: 4000},
	{Size: 2000, Queries: 5000},
}

// Result is the outcome of one experiment.
type Result struct {
	Size     int           `json:"size"`
	Queries  int           `json:"queries"`
	Mean     time.Duration `json:"mean_ns"`
	P95      time.Duration `json:"p95_ns"`
	Checked  bool          `json:"checked"`
	Accuracy float64       `json:"accuracy_pct"`
	Failures []Check       `json:"-"`
}

// Runner executes benchmark plans. A fixed Seed makes trees and query pairs
// reproducible.
type Runner struct {
	Resolver kinship.Resolver
	Seed     uint64
	Log      *logrus.Logger
}

// Run executes every experiment in order and stops early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, plan []Experiment) ([]Result, error) {
	results := make([]Result, 0, len(plan))

	for i, exp := range plan {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rng := rand.New(rand.NewPCG(r.Seed, uint64(i)))

		res, err := r.RunOne(ctx, exp, rng)
		if err != nil {
			return results, fmt.Errorf("experiment size %d: %w", exp.Size, err)
		}

		if r.Log != nil {
			r.Log.WithFields(logrus.Fields{
				"size":     res.Size,
				"queries":  res.Queries,
				"mean":     res.Mean.String(),
				"p95":      res.P95.String(),
				"accuracy": res.Accuracy,
			}).Debug("bench.experiment")
		}

		results = append(results, res)
	}

	return results, nil
}

// RunOne generates a tree of exp.Size people and times exp.Queries random
// relationship lookups between distinct people.
func (r *Runner) RunOne(ctx context.Context, exp Experiment, rng *rand.Rand) (Result, error) {
	tree, err := Generate(exp.Size, rng)
	if err != nil {
		return Result{}, err
	}

	res := Result{Size: exp.Size}

	ids := tree.Graph.IDs()
	if len(ids) > 1 && exp.Queries > 0 {
		samples := make([]time.Duration, 0, exp.Queries)
		var total time.Duration

		for q := range exp.Queries {
			if q%256 == 0 && ctx.Err() != nil {
				return Result{}, ctx.Err()
			}

			a := ids[rng.IntN(len(ids))]
			b := ids[rng.IntN(len(ids))]
			for b == a {
				b = ids[rng.IntN(len(ids))]
			}

			start := time.Now()
			if _, err := r.Resolver.GetRelationship(tree.Graph, a, b); err != nil {
				return Result{}, err
			}
			d := time.Since(start)

			total += d
			samples = append(samples, d)
		}

		slices.Sort(samples)
		res.Queries = len(samples)
		res.Mean = total / time.Duration(len(samples))
		res.P95 = samples[len(samples)*95/100]
	}

	if exp.CheckAccuracy && len(tree.Checks) > 0 {
		res.Checked = true
		res.Accuracy, res.Failures, err = r.accuracy(tree)
		if err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

func (r *Runner) accuracy(tree *Tree) (float64, []Check, error) {
	var failures []Check

	for _, c := range tree.Checks {
		label, err := r.Resolver.GetRelationship(tree.Graph, c.From, c.To)
		if err != nil {
			return 0, nil, err
		}

		if !strings.Contains(strings.ToLower(label), c.Want) {
			failures = append(failures, c)
		}
	}

	correct := len(tree.Checks) - len(failures)

	return 100 * float64(correct) / float64(len(tree.Checks)), failures, nil
}
