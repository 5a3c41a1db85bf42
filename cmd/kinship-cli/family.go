package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/persistorai/kinship/internal/kinship"
)

// familyMember is one person in a family file. The keys match the server's
// export format, so an export can be queried offline.
type familyMember struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Gender   string   `yaml:"gender"`
	Parents  []string `yaml:"parents"`
	Partners []string `yaml:"partners"`
}

type familyFile struct {
	People []familyMember `yaml:"people"`
}

// family is a loaded family file ready for queries.
type family struct {
	graph *kinship.Graph
	names map[string]string
}

func (f *family) name(id string) string {
	if n := f.names[id]; n != "" {
		return n
	}
	return id
}

// loadFamily reads a YAML or JSON family file and builds a validated graph.
func loadFamily(path string) (*family, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is intentional
	if err != nil {
		return nil, fmt.Errorf("read family: %w", err)
	}

	return parseFamily(data)
}

func parseFamily(data []byte) (*family, error) {
	var file familyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse family: %w", err)
	}

	if len(file.People) == 0 {
		return nil, fmt.Errorf("parse family: no people")
	}

	people := make([]kinship.Person, 0, len(file.People))
	names := make(map[string]string, len(file.People))
	for _, m := range file.People {
		people = append(people, kinship.Person{
			ID:       m.ID,
			Gender:   kinship.ParseGender(m.Gender),
			Parents:  m.Parents,
			Partners: m.Partners,
		})
		names[m.ID] = m.Name
	}

	g, err := kinship.NewGraph(people)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid family: %w", err)
	}

	return &family{graph: g, names: names}, nil
}
