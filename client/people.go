package client

import (
	"context"
	"net/url"
	"strconv"
)

// PersonService handles person CRUD operations.
type PersonService struct {
	c *Client
}

type personListResponse struct {
	People  []Person `json:"people"`
	HasMore bool     `json:"has_more"`
}

// List returns people, optionally filtered by a name substring.
func (s *PersonService) List(ctx context.Context, opts *PersonListOptions) ([]Person, bool, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Query != "" {
			params.Set("q", opts.Query)
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
	}
	var resp personListResponse
	if err := s.c.get(ctx, "/api/v1/people", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.People, resp.HasMore, nil
}

// Get returns a single person by ID.
func (s *PersonService) Get(ctx context.Context, id string) (*Person, error) {
	var p Person
	if err := s.c.get(ctx, personPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a person.
func (s *PersonService) Create(ctx context.Context, req *CreatePersonRequest) (*Person, error) {
	var p Person
	if err := s.c.post(ctx, "/api/v1/people", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update changes a person's attributes.
func (s *PersonService) Update(ctx context.Context, id string, req *UpdatePersonRequest) (*Person, error) {
	var p Person
	if err := s.c.put(ctx, personPath(id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a person. The server refuses while the person has children.
func (s *PersonService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, personPath(id), nil, nil)
}

// Ancestors lists a person's ancestors, nearest first.
func (s *PersonService) Ancestors(ctx context.Context, id string) ([]Ancestor, error) {
	var resp struct {
		Ancestors []Ancestor `json:"ancestors"`
	}
	if err := s.c.get(ctx, personPath(id)+"/ancestors", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Ancestors, nil
}
