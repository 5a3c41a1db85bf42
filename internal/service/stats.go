package service

import (
	"context"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/models"
)

// Compile-time check: *StatsService must satisfy domain.StatsService.
var _ domain.StatsService = (*StatsService)(nil)

// StatsService aggregates a tenant's family from its cached snapshot.
type StatsService struct {
	snapshots *SnapshotCache
}

// NewStatsService creates a StatsService.
func NewStatsService(snapshots *SnapshotCache) *StatsService {
	return &StatsService{snapshots: snapshots}
}

// FamilyStats counts people, links, root ancestors, generations and connected
// components.
func (s *StatsService) FamilyStats(ctx context.Context, tenantID string) (*models.FamilyStats, error) {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return computeStats(snap.Graph)
}

func computeStats(g *kinship.Graph) (*models.FamilyStats, error) {
	stats := &models.FamilyStats{ByGender: map[string]int{}}

	partnerSides := 0

	for _, id := range g.IDs() {
		stats.People++
		stats.ByGender[string(g.GenderOf(id))]++

		parents := g.Parents(id)
		stats.ParentLinks += len(parents)
		partnerSides += len(g.Partners(id))

		if len(parents) == 0 {
			stats.Roots++
		}

		anc, err := kinship.BuildAncestors(g, id)
		if err != nil {
			return nil, engineError(err)
		}

		depth := 1
		for _, d := range anc {
			depth = max(depth, d+1)
		}
		stats.Generations = max(stats.Generations, depth)
	}

	stats.Partnerships = partnerSides / 2
	stats.Components = components(g)

	return stats, nil
}

// components counts groups of people connected by any parent, child or partner link.
func components(g *kinship.Graph) int {
	seen := make(map[string]bool, g.Len())
	count := 0

	for _, start := range g.IDs() {
		if seen[start] {
			continue
		}

		count++
		seen[start] = true
		queue := []string{start}

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]

			for _, list := range [][]string{g.Parents(id), g.Children(id), g.Partners(id)} {
				for _, next := range list {
					if !seen[next] && g.Has(next) {
						seen[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}

	return count
}
