package models

// FamilyStats aggregates a tenant's family graph.
type FamilyStats struct {
	People       int            `json:"people"`
	ByGender     map[string]int `json:"by_gender"`
	ParentLinks  int            `json:"parent_links"`
	Partnerships int            `json:"partnerships"`
	Roots        int            `json:"roots"`
	Generations  int            `json:"generations"`
	Components   int            `json:"components"`
}
