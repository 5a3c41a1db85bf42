package client

import (
	"context"
	"net/url"
)

// RelationshipService runs kinship queries.
type RelationshipService struct {
	c *Client
}

func relationshipPath(from, to string) string {
	return "/api/v1/relationship/" + url.PathEscape(from) + "/" + url.PathEscape(to)
}

// Get returns how from relates to to, e.g. "maternal grandmother".
func (s *RelationshipService) Get(ctx context.Context, from, to string) (*Relationship, error) {
	var r Relationship
	if err := s.c.get(ctx, relationshipPath(from, to), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Chain returns the hop-by-hop path from from to to. It is empty when the
// two are not connected.
func (s *RelationshipService) Chain(ctx context.Context, from, to string) ([]ChainLink, error) {
	var resp struct {
		Chain []ChainLink `json:"chain"`
	}
	if err := s.c.get(ctx, relationshipPath(from, to)+"/chain", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chain, nil
}

// Batch resolves many pairs at once. Pairs that fail carry Error instead of a label.
func (s *RelationshipService) Batch(ctx context.Context, pairs []Pair) ([]Relationship, error) {
	var resp struct {
		Results []Relationship `json:"results"`
	}
	if err := s.c.post(ctx, "/api/v1/relationship/batch", map[string]any{"pairs": pairs}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
