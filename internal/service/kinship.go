package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/metrics"
	"github.com/persistorai/kinship/internal/models"
)

// Compile-time check: *KinshipService must satisfy domain.KinshipService.
var _ domain.KinshipService = (*KinshipService)(nil)

// KinshipService answers relationship queries against cached family snapshots.
type KinshipService struct {
	snapshots *SnapshotCache
	resolver  kinship.Resolver
	workers   int
	log       *logrus.Logger
}

// NewKinshipService creates a KinshipService. workers bounds batch concurrency.
func NewKinshipService(snapshots *SnapshotCache, style kinship.Style, workers int, log *logrus.Logger) *KinshipService {
	if workers <= 0 {
		workers = 1
	}

	return &KinshipService{
		snapshots: snapshots,
		resolver:  kinship.NewResolver(style),
		workers:   workers,
		log:       log,
	}
}

// Relationship describes what fromID is to toID.
func (s *KinshipService) Relationship(ctx context.Context, tenantID, fromID, toID string) (*models.RelationshipResult, error) {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	res, err := s.resolve(snap, fromID, toID)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"from":      fromID,
		"to":        toID,
		"kind":      res.Kind,
	}).Debug("kinship.relationship")

	return res, nil
}

// Chain returns the shortest chain of atomic hops from fromID to toID.
func (s *KinshipService) Chain(ctx context.Context, tenantID, fromID, toID string) ([]models.ChainLink, error) {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hops, err := s.resolver.GetRelationshipChain(snap.Graph, fromID, toID)
	metrics.QueryDuration.WithLabelValues("chain").Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, engineError(err)
	}

	links := make([]models.ChainLink, len(hops))
	for i, h := range hops {
		links[i] = models.ChainLink{From: h.From, To: h.To, Label: h.Label}
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"from":      fromID,
		"to":        toID,
		"hops":      len(links),
	}).Debug("kinship.chain")

	return links, nil
}

// Ancestors lists every ancestor of personID, nearest first.
func (s *KinshipService) Ancestors(ctx context.Context, tenantID, personID string) ([]models.AncestorEntry, error) {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("ancestors").Observe(time.Since(start).Seconds())
	}()

	ancestors, err := kinship.BuildAncestors(snap.Graph, personID)
	if err != nil {
		return nil, engineError(err)
	}

	entries := make([]models.AncestorEntry, 0, len(ancestors))
	for _, id := range ancestors.IDs() {
		d, _ := ancestors.Distance(id)

		rel, err := kinship.Classify(snap.Graph, id, personID)
		if err != nil {
			return nil, engineError(err)
		}

		anc, ok := rel.(kinship.Ancestor)
		if !ok {
			// A closer relation (such as spouse) took precedence; describe the line of descent.
			anc = kinship.Ancestor{Distance: d, Gender: snap.Graph.GenderOf(id)}
		}

		entries = append(entries, models.AncestorEntry{
			ID:       id,
			Name:     snap.Name(id),
			Distance: d,
			Side:     string(anc.Side),
			Label:    s.resolver.Formatter.Format(anc),
		})
	}

	return entries, nil
}

// BatchRelationships resolves every pair against one snapshot. Per-pair failures
// are reported in the item's Error field; the call itself fails only when the
// snapshot cannot be loaded or ctx is cancelled.
func (s *KinshipService) BatchRelationships(
	ctx context.Context, tenantID string, pairs []models.PersonPair,
) ([]models.RelationshipResult, error) {
	snap, err := s.snapshots.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	results := make([]models.RelationshipResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := s.resolve(snap, p.From, p.To)
			if err != nil {
				results[i] = models.RelationshipResult{From: p.From, To: p.To, Error: err.Error()}
				return nil
			}

			results[i] = *res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"pairs":     len(pairs),
	}).Debug("kinship.batch")

	return results, nil
}

func (s *KinshipService) resolve(snap *Snapshot, fromID, toID string) (*models.RelationshipResult, error) {
	start := time.Now()
	rel, err := s.resolver.Relation(snap.Graph, fromID, toID)
	metrics.QueryDuration.WithLabelValues("relationship").Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, engineError(err)
	}

	kind := rel.Kind()
	metrics.RelationshipQueries.WithLabelValues(string(kind)).Inc()
	if kind == kinship.KindPathChain {
		metrics.PathFallbacks.Inc()
	}

	return &models.RelationshipResult{
		From:     fromID,
		To:       toID,
		Kind:     string(kind),
		Label:    s.resolver.Formatter.Format(rel),
		Sentence: s.resolver.Formatter.Sentence(snap.Name(fromID), snap.Name(toID), rel),
	}, nil
}

// engineError maps engine sentinels onto model errors while keeping the detail.
func engineError(err error) error {
	switch {
	case errors.Is(err, kinship.ErrUnknownPerson):
		return fmt.Errorf("%w: %w", models.ErrPersonNotFound, err)
	case errors.Is(err, kinship.ErrCyclicAncestry):
		return fmt.Errorf("%w: %w", models.ErrCyclicAncestry, err)
	default:
		return err
	}
}
