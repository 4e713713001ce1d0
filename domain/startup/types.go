package startup

import (
	"strconv"
	"strings"
	"unicode"
)

// SDG is a UN Sustainable Development Goal
type SDG struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SourceHit is a piece of evidence collected for a startup
type SourceHit struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	PublishedAt string  `json:"publishedAt,omitempty"`
	Snippet     string  `json:"snippet,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// PrimaryContact is the program's main contact person at a startup
type PrimaryContact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Title string `json:"title,omitempty"`
}

// FundingRound describes the most recent financing
type FundingRound struct {
	Stage     *string  `json:"stage"`
	Date      string   `json:"date,omitempty"`
	AmountEUR *float64 `json:"amountEUR,omitempty"`
}

// Official holds the profile published on the program website
type Official struct {
	OneLiner    string `json:"oneLiner,omitempty"`
	Description string `json:"description,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Socials holds social profile links
type Socials struct {
	LinkedIn string `json:"linkedin,omitempty"`
	X        string `json:"x,omitempty"`
}

// Latest holds the profile aggregated by the crawler
type Latest struct {
	OneLiner       string   `json:"oneLiner,omitempty"`
	Description    string   `json:"description,omitempty"`
	Headquarters   string   `json:"headquarters,omitempty"`
	ProductUpdates []string `json:"productUpdates,omitempty"`
	TechStack      []string `json:"techStack,omitempty"`
	Hiring         *bool    `json:"hiring,omitempty"`
	Socials        *Socials `json:"socials,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// Quality holds the data-quality metrics of a profile
type Quality struct {
	FreshnessDays    float64 `json:"freshnessDays"`
	CompletenessPct  float64 `json:"completenessPct"`
	DiscrepancyScore float64 `json:"discrepancyScore"`
	LastCheckedAt    string  `json:"lastCheckedAt"`
}

// Note is a free-text annotation on a startup
type Note struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// Startup is one record of startups.json
type Startup struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	LogoURL          string          `json:"logoUrl,omitempty"`
	Website          string          `json:"website,omitempty"`
	Batch            string          `json:"batch,omitempty"`
	City             string          `json:"city,omitempty"`
	State            string          `json:"state,omitempty"`
	Country          string          `json:"country,omitempty"`
	SDGs             []int           `json:"sdgs"`
	Sector           string          `json:"sector"`
	Status           string          `json:"status"`
	ProgramPhase     string          `json:"programPhase,omitempty"`
	PrimaryContact   *PrimaryContact `json:"primaryContact,omitempty"`
	Headcount        *int            `json:"headcount,omitempty"`
	LastFundingRound *FundingRound   `json:"lastFundingRound,omitempty"`
	RawDescription   string          `json:"description,omitempty"`
	Official         Official        `json:"official"`
	Latest           Latest          `json:"latest"`
	Quality          Quality         `json:"quality"`
	Sources          []SourceHit     `json:"sources"`
	Notes            []Note          `json:"notes"`
}

// Description returns the best available description:
// official website text, then crawler text, then the raw field.
func (s Startup) Description() string {
	switch {
	case s.Official.Description != "":
		return s.Official.Description
	case s.Latest.Description != "":
		return s.Latest.Description
	default:
		return s.RawDescription
	}
}

// ContactName returns the primary contact's name or ""
func (s Startup) ContactName() string {
	if s.PrimaryContact == nil {
		return ""
	}
	return s.PrimaryContact.Name
}

// WebsiteHost returns the website without scheme and path
func (s Startup) WebsiteHost() string {
	host := strings.TrimSpace(s.Website)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// HasSDG reports whether the startup is tagged with the given SDG
func (s Startup) HasSDG(id int) bool {
	for _, sdg := range s.SDGs {
		if sdg == id {
			return true
		}
	}
	return false
}

// CrawlRun is one record of crawl-runs.json
type CrawlRun struct {
	ID           string   `json:"id"`
	StartedAt    string   `json:"startedAt"`
	FinishedAt   string   `json:"finishedAt,omitempty"`
	Status       string   `json:"status"`
	TotalTargets int      `json:"totalTargets"`
	Scanned      int      `json:"scanned"`
	Updated      int      `json:"updated"`
	Errors       int      `json:"errors"`
	DurationSec  *float64 `json:"durationSec,omitempty"`
	Sources      []string `json:"sources"`
	Message      string   `json:"message,omitempty"`
}

// BatchNumber extracts the digits of a batch label ("Batch 13" -> 13).
// Labels without digits yield 0.
func BatchNumber(label string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, label)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// SDGName resolves an SDG id against the lookup table
func SDGName(sdgs []SDG, id int) string {
	for _, sdg := range sdgs {
		if sdg.ID == id {
			return sdg.Name
		}
	}
	return "SDG " + strconv.Itoa(id)
}
