// Package roster resolves team membership from a static YAML roster file.
// Team-level report aggregation buckets individuals through this mapping;
// memberships are assumed disjoint across teams.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roster maps team name to member names.
type Roster struct {
	teams map[string][]string
	// member (normalized) -> team
	index map[string]string
}

type rosterFile struct {
	Teams map[string][]string `yaml:"teams"`
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Load reads a roster YAML file of the form:
//
//	teams:
//	  North: [Alice, Bob]
//	  South: [Carol]
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return Parse(data)
}

// Parse builds a Roster from YAML bytes. A member listed under two teams is
// a configuration error because it would double-count in team totals.
func Parse(data []byte) (*Roster, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	r := &Roster{teams: map[string][]string{}, index: map[string]string{}}
	for team, members := range rf.Teams {
		for _, m := range members {
			key := normalize(m)
			if key == "" {
				continue
			}
			if prev, ok := r.index[key]; ok && prev != team {
				return nil, fmt.Errorf("roster member %q listed under both %q and %q", m, prev, team)
			}
			r.index[key] = team
			r.teams[team] = append(r.teams[team], m)
		}
	}
	return r, nil
}

// Empty returns a roster with no teams. Team filters and team aggregation
// degrade to no-ops against it.
func Empty() *Roster {
	return &Roster{teams: map[string][]string{}, index: map[string]string{}}
}

// TeamOf returns the team a person belongs to, if any.
func (r *Roster) TeamOf(person string) (string, bool) {
	team, ok := r.index[normalize(person)]
	return team, ok
}

// Members returns the member list for a team.
func (r *Roster) Members(team string) []string {
	return r.teams[team]
}

// Teams returns all team names.
func (r *Roster) Teams() []string {
	out := make([]string, 0, len(r.teams))
	for t := range r.teams {
		out = append(out, t)
	}
	return out
}
