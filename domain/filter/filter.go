// Package filter implements the dashboard's multi-field startup filter
// and free-text search.
package filter

import (
	"sort"
	"strings"

	"impactdash/domain/startup"
)

// Range is an inclusive numeric bound. A nil range imposes no restriction.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// Criteria is the filter state of the dashboard table.
// Every empty set is the identity; non-empty sets intersect.
type Criteria struct {
	Batches       []string `json:"batches"`
	Sectors       []string `json:"sectors"`
	SDGs          []int    `json:"sdgs"`
	Phases        []string `json:"phases"`
	Cities        []string `json:"cities"`
	States        []string `json:"states"`
	Organizations []string `json:"organizations"`
	Query         string   `json:"query"`

	Discrepancy *Range `json:"discrepancy,omitempty"`
	Freshness   *Range `json:"freshness,omitempty"`
}

// ActiveCount is the number of selected values across all set filters
func (c Criteria) ActiveCount() int {
	return len(c.Batches) + len(c.Sectors) + len(c.SDGs) + len(c.Phases) +
		len(c.Cities) + len(c.States) + len(c.Organizations)
}

// IsEmpty reports whether the criteria impose no restriction at all
func (c Criteria) IsEmpty() bool {
	return c.ActiveCount() == 0 && strings.TrimSpace(c.Query) == "" &&
		c.Discrepancy == nil && c.Freshness == nil
}

// Matches evaluates every predicate against one startup
func (c Criteria) Matches(s startup.Startup) bool {
	if !inSet(c.Batches, s.Batch) {
		return false
	}
	if !inSet(c.Sectors, s.Sector) {
		return false
	}
	if len(c.SDGs) > 0 && !hasAnySDG(s, c.SDGs) {
		return false
	}
	if !inSet(c.Phases, s.ProgramPhase) {
		return false
	}
	if !inSet(c.Cities, s.City) {
		return false
	}
	if !inSet(c.States, s.State) {
		return false
	}
	if len(c.Organizations) > 0 && !matchesOrganization(s, c.Organizations) {
		return false
	}
	if !c.Discrepancy.Contains(s.Quality.DiscrepancyScore) {
		return false
	}
	if !c.Freshness.Contains(s.Quality.FreshnessDays) {
		return false
	}
	return MatchesQuery(s, c.Query)
}

// Apply returns the startups matching all predicates, in original order
func Apply(startups []startup.Startup, c Criteria) []startup.Startup {
	out := make([]startup.Startup, 0, len(startups))
	for _, s := range startups {
		if c.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// MatchesQuery is a case-insensitive substring match over the searchable
// fields. An empty query matches everything.
func MatchesQuery(s startup.Startup, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{s.Name, s.Sector, s.City, s.State, s.Batch, s.ContactName(), s.Website}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, x := range set {
		if x == v {
			return true
		}
	}
	return false
}

func hasAnySDG(s startup.Startup, ids []int) bool {
	for _, id := range ids {
		if s.HasSDG(id) {
			return true
		}
	}
	return false
}

// matchesOrganization compares against the website host and the
// organization title recorded on the primary contact.
func matchesOrganization(s startup.Startup, orgs []string) bool {
	host := strings.ToLower(s.WebsiteHost())
	title := ""
	if s.PrimaryContact != nil {
		title = strings.ToLower(s.PrimaryContact.Title)
	}
	for _, org := range orgs {
		o := strings.ToLower(strings.TrimSpace(org))
		if o == "" {
			continue
		}
		if o == host || o == title || o == strings.ToLower(s.Name) {
			return true
		}
	}
	return false
}

// Facets are the selectable values offered by the filter bar
type Facets struct {
	Batches []string `json:"batches"`
	Sectors []string `json:"sectors"`
	Phases  []string `json:"phases"`
	Cities  []string `json:"cities"`
	States  []string `json:"states"`
	SDGs    []int    `json:"sdgs"`
}

// BuildFacets collects the distinct values present in the data.
// Batches sort by their number, cities and states alphabetically, SDGs
// ascending; sectors and phases keep first-seen order.
func BuildFacets(startups []startup.Startup) Facets {
	f := Facets{
		Batches: uniqueStrings(startups, func(s startup.Startup) string { return s.Batch }),
		Sectors: uniqueStrings(startups, func(s startup.Startup) string { return s.Sector }),
		Phases:  uniqueStrings(startups, func(s startup.Startup) string { return s.ProgramPhase }),
		Cities:  uniqueStrings(startups, func(s startup.Startup) string { return s.City }),
		States:  uniqueStrings(startups, func(s startup.Startup) string { return s.State }),
	}
	SortBatches(f.Batches)
	sort.Strings(f.Cities)
	sort.Strings(f.States)

	seen := make(map[int]bool)
	f.SDGs = []int{}
	for _, s := range startups {
		for _, id := range s.SDGs {
			if id > 0 && !seen[id] {
				seen[id] = true
				f.SDGs = append(f.SDGs, id)
			}
		}
	}
	sort.Ints(f.SDGs)
	return f
}

// SortBatches orders batch labels by their embedded number
func SortBatches(batches []string) {
	sort.SliceStable(batches, func(i, j int) bool {
		return startup.BatchNumber(batches[i]) < startup.BatchNumber(batches[j])
	})
}

func uniqueStrings(startups []startup.Startup, field func(startup.Startup) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, s := range startups {
		v := field(s)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
