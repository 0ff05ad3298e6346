package service

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"leadchat_backend/internal/experts/ranking"
)

type rosterFile struct {
	Experts []rosterEntry `yaml:"experts"`
}

type rosterEntry struct {
	Name        string   `yaml:"name"`
	Email       string   `yaml:"email"`
	Specialties []string `yaml:"specialties"`
	Services    []string `yaml:"services"`
	Active      *bool    `yaml:"active"`
}

// ParseRoster decodes a YAML roster. Experts are active unless stated
// otherwise; missing specialties default to those of their services.
func ParseRoster(r io.Reader) ([]ranking.Candidate, error) {
	var file rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	out := make([]ranking.Candidate, 0, len(file.Experts))
	for i, e := range file.Experts {
		c := ranking.Candidate{
			Name:        strings.TrimSpace(e.Name),
			Email:       strings.ToLower(strings.TrimSpace(e.Email)),
			Specialties: e.Specialties,
			Services:    e.Services,
			Active:      e.Active == nil || *e.Active,
		}
		if c.Name == "" || c.Email == "" {
			return nil, fmt.Errorf("roster entry %d: name and email are required", i+1)
		}
		if len(c.Specialties) == 0 {
			c.Specialties = defaultSpecialties(c.Services)
		}
		out = append(out, c)
	}
	return out, nil
}

func defaultSpecialties(services []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, svc := range services {
		for _, s := range ranking.SpecialtiesFor(svc) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
