package models

import "time"

// FamilyExport is the top-level structure of a family export file. It is
// full-fidelity: importing it into an empty tenant reproduces the graph exactly.
type FamilyExport struct {
	SchemaVersion  int            `json:"schema_version"`  // Current schema migration version
	KinshipVersion string         `json:"kinship_version"` // Kinship binary version
	ExportedAt     time.Time      `json:"exported_at"`
	TenantID       string         `json:"tenant_id"`
	Stats          ExportStats    `json:"stats"`
	People         []ExportPerson `json:"people"`
}

// ExportStats summarises the contents of an export.
type ExportStats struct {
	PersonCount      int `json:"person_count"`
	ParentLinkCount  int `json:"parent_link_count"`
	PartnerLinkCount int `json:"partner_link_count"`
}

// ExportPerson is the portable representation of a person. Parents keep their order.
type ExportPerson struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date,omitempty"`
	Parents   []string  `json:"parents"`
	Partners  []string  `json:"partners"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportResult summarises the outcome of an import operation.
type ImportResult struct {
	PeopleCreated       int      `json:"people_created"`
	PeopleUpdated       int      `json:"people_updated"`
	PeopleSkipped       int      `json:"people_skipped"`
	ParentLinksCreated  int      `json:"parent_links_created"`
	PartnerLinksCreated int      `json:"partner_links_created"`
	Errors              []string `json:"errors,omitempty"`
}

// ImportOptions controls the behaviour of an import operation.
type ImportOptions struct {
	// OverwriteExisting updates people that already exist and replaces their links;
	// otherwise existing people and their links are left untouched.
	OverwriteExisting bool `json:"overwrite_existing"`
	// DryRun validates the import data without writing anything.
	DryRun bool `json:"dry_run"`
}

// PersonFromExport converts an export record into a Person.
func PersonFromExport(e ExportPerson) Person {
	return Person{
		ID:        e.ID,
		Name:      e.Name,
		Gender:    NormalizeGender(e.Gender),
		BirthDate: e.BirthDate,
		Parents:   e.Parents,
		Partners:  e.Partners,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ExportFromPerson converts a Person into its export record.
func ExportFromPerson(p Person) ExportPerson {
	parents := p.Parents
	if parents == nil {
		parents = []string{}
	}

	partners := p.Partners
	if partners == nil {
		partners = []string{}
	}

	return ExportPerson{
		ID:        p.ID,
		Name:      p.Name,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
		Parents:   parents,
		Partners:  partners,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
