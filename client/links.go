package client

import (
	"context"
	"net/url"
)

// LinkService manages parent and partner links. Each call returns the
// updated person.
type LinkService struct {
	c *Client
}

// AddParent records parentID as a parent of childID.
func (s *LinkService) AddParent(ctx context.Context, childID, parentID string) (*Person, error) {
	var p Person
	body := map[string]string{"parent_id": parentID}
	if err := s.c.post(ctx, personPath(childID)+"/parents", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemoveParent deletes the parent link between childID and parentID.
func (s *LinkService) RemoveParent(ctx context.Context, childID, parentID string) (*Person, error) {
	var p Person
	if err := s.c.del(ctx, personPath(childID)+"/parents/"+url.PathEscape(parentID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddPartner links two people as partners.
func (s *LinkService) AddPartner(ctx context.Context, personID, partnerID string) (*Person, error) {
	var p Person
	body := map[string]string{"partner_id": partnerID}
	if err := s.c.post(ctx, personPath(personID)+"/partners", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemovePartner deletes the partnership between two people.
func (s *LinkService) RemovePartner(ctx context.Context, personID, partnerID string) (*Person, error) {
	var p Person
	if err := s.c.del(ctx, personPath(personID)+"/partners/"+url.PathEscape(partnerID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
