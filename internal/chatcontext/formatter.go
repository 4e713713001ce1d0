// Package chatcontext flattens startup, insight and news records into
// compact text blocks for LLM prompts.
package chatcontext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"impactdash/domain/insight"
	"impactdash/domain/news"
	"impactdash/domain/startup"
)

const (
	// Placeholder stands in for any missing field
	Placeholder = "–"

	// NoDataContext is sent instead of a context block when nothing could be loaded
	NoDataContext = "Keine Daten verfügbar."

	// NoNews is the news block when the feed is empty
	NoNews = "Keine News vorhanden."

	DefaultDescriptionBudget = 150
	DefaultNewsLimit         = 30

	startupFormatLine = "Format: Name | Sektor | Stadt | SDGs | Batch | Phase | Status | Gründer | Beschreibung"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Formatter renders records into prompt text
type Formatter struct {
	// DescriptionBudget is the maximum description length in characters
	DescriptionBudget int
	// NewsLimit caps the number of news lines
	NewsLimit int
}

// NewFormatter returns a formatter, replacing non-positive limits with defaults
func NewFormatter(descriptionBudget, newsLimit int) Formatter {
	if descriptionBudget <= 0 {
		descriptionBudget = DefaultDescriptionBudget
	}
	if newsLimit <= 0 {
		newsLimit = DefaultNewsLimit
	}
	return Formatter{DescriptionBudget: descriptionBudget, NewsLimit: newsLimit}
}

// CleanDescription strips markup, collapses whitespace and truncates to
// budget characters.
func CleanDescription(raw string, budget int) string {
	text := tagPattern.ReplaceAllString(raw, "")
	text = strings.Join(strings.Fields(text), " ")
	if budget > 0 {
		runes := []rune(text)
		if len(runes) > budget {
			text = string(runes[:budget])
		}
	}
	return text
}

// StartupLine renders one startup
func (f Formatter) StartupLine(s startup.Startup, insights insight.Index) string {
	founders := insights.Founders(s.ID)
	if founders == "" {
		founders = s.ContactName()
	}

	sdgs := make([]string, 0, len(s.SDGs))
	for _, id := range s.SDGs {
		sdgs = append(sdgs, strconv.Itoa(id))
	}

	parts := []string{
		orPlaceholder(s.Name),
		orPlaceholder(s.Sector),
		orPlaceholder(s.City),
		"SDG " + orPlaceholder(strings.Join(sdgs, ",")),
		orPlaceholder(s.Batch),
		orPlaceholder(s.ProgramPhase),
		orPlaceholder(s.Status),
		"Gründer: " + orPlaceholder(founders),
	}
	if desc := CleanDescription(s.Description(), f.budget()); desc != "" {
		parts = append(parts, "Beschreibung: "+desc)
	}
	return strings.Join(parts, " | ")
}

// FormatStartups renders the startup block with a count header
func (f Formatter) FormatStartups(startups []startup.Startup, insights insight.Index) string {
	lines := make([]string, 0, len(startups)+3)
	lines = append(lines,
		fmt.Sprintf("Anzahl Startups: %d", len(startups)),
		startupFormatLine,
		"",
	)
	for _, s := range startups {
		lines = append(lines, f.StartupLine(s, insights))
	}
	return strings.Join(lines, "\n")
}

// FormatNews renders at most NewsLimit items, one line each, under a
// header carrying the full count.
func (f Formatter) FormatNews(items []news.Item) string {
	if len(items) == 0 {
		return NoNews
	}
	limit := f.NewsLimit
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	shown := items
	if len(shown) > limit {
		shown = shown[:limit]
	}

	lines := make([]string, 0, len(shown)+2)
	lines = append(lines, fmt.Sprintf("Anzahl News: %d", len(items)), "")
	for _, n := range shown {
		lines = append(lines, fmt.Sprintf("%s – %s: %s",
			orPlaceholder(n.Date), orPlaceholder(n.StartupName), orPlaceholder(n.Headline)))
	}
	return strings.Join(lines, "\n")
}

// Build combines the startup and news blocks
func (f Formatter) Build(startups []startup.Startup, insights insight.Index, items []news.Item) string {
	return strings.Join([]string{
		"--- STARTUP DATA ---",
		f.FormatStartups(startups, insights),
		"",
		"--- NEWS DATA ---",
		f.FormatNews(items),
	}, "\n")
}

func (f Formatter) budget() int {
	if f.DescriptionBudget <= 0 {
		return DefaultDescriptionBudget
	}
	return f.DescriptionBudget
}

// orPlaceholder replaces only the empty string; blank values pass through
func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
