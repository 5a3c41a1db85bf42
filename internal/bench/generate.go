// Package bench generates synthetic family trees and measures relationship
// query latency and labelling accuracy over them.
package bench

import (
	"fmt"
	"math/rand/v2"

	"github.com/persistorai/kinship/internal/kinship"
)

// founderRate is the share of new people who join as parentless founders and
// marry into the tree.
const founderRate = 0.3

var genders = [...]kinship.Gender{kinship.Male, kinship.Female, kinship.Other}

// Check is a ground-truth pair: From's label relative to To must contain Want.
type Check struct {
	From string
	To   string
	Want string
}

// Tree is a generated family with its ground-truth checks.
type Tree struct {
	Graph  *kinship.Graph
	People []kinship.Person
	Checks []Check
}

// Generate builds an acyclic family of n people named P0..Pn-1. Founders
// marry an unmarried person already in the tree; everyone else is the child
// of a random couple. Every child yields two checks, one per parent.
func Generate(n int, rng *rand.Rand) (*Tree, error) {
	if n < 1 {
		return nil, fmt.Errorf("tree size must be positive, got %d", n)
	}

	people := make([]kinship.Person, 0, n)
	index := make(map[string]int, n)
	var couples [][2]string
	var unmarried []string
	var checks []Check

	add := func(p kinship.Person) {
		index[p.ID] = len(people)
		people = append(people, p)
	}

	marry := func(a, b string) {
		people[index[a]].Partners = append(people[index[a]].Partners, b)
		people[index[b]].Partners = append(people[index[b]].Partners, a)
		couples = append(couples, [2]string{a, b})
	}

	for i := range n {
		id := fmt.Sprintf("P%d", i)
		gender := genders[rng.IntN(len(genders))]

		if len(couples) == 0 || rng.Float64() < founderRate {
			add(kinship.Person{ID: id, Gender: gender})

			if len(unmarried) > 0 {
				j := rng.IntN(len(unmarried))
				spouse := unmarried[j]
				unmarried = append(unmarried[:j], unmarried[j+1:]...)
				marry(spouse, id)
			} else {
				unmarried = append(unmarried, id)
			}

			continue
		}

		c := couples[rng.IntN(len(couples))]
		add(kinship.Person{ID: id, Gender: gender, Parents: []string{c[0], c[1]}})
		unmarried = append(unmarried, id)

		want := childWord(gender)
		checks = append(checks, Check{From: id, To: c[0], Want: want}, Check{From: id, To: c[1], Want: want})
	}

	g, err := kinship.NewGraph(people)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	return &Tree{Graph: g, People: people, Checks: checks}, nil
}

func childWord(g kinship.Gender) string {
	switch g {
	case kinship.Male:
		return "son"
	case kinship.Female:
		return "daughter"
	default:
		return "child"
	}
}
