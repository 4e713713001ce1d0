package news

import (
	"sort"
	"time"

	"impactdash/domain/core"
)

// Category classifies a news item
type Category string

const (
	CategoryFunding     Category = "funding"
	CategoryProduct     Category = "product"
	CategoryAward       Category = "award"
	CategoryPartnership Category = "partnership"
	CategoryTeam        Category = "team"
	CategoryCustomer    Category = "customer"
)

// Categories lists all categories in display order
var Categories = []Category{
	CategoryFunding,
	CategoryProduct,
	CategoryAward,
	CategoryPartnership,
	CategoryTeam,
	CategoryCustomer,
}

// Label returns the German display label
func (c Category) Label() string {
	switch c {
	case CategoryFunding:
		return "Finanzierung"
	case CategoryProduct:
		return "Produkt"
	case CategoryAward:
		return "Auszeichnung"
	case CategoryPartnership:
		return "Partnerschaft"
	case CategoryTeam:
		return "Team"
	case CategoryCustomer:
		return "Kunde"
	default:
		return string(c)
	}
}

// Impact rates how significant a news item is
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Item is one entry of news-feed.json
type Item struct {
	ID          string   `json:"id"`
	StartupID   string   `json:"startup_id"`
	StartupName string   `json:"startup_name"`
	Date        string   `json:"date"`
	Headline    string   `json:"headline"`
	Summary     string   `json:"summary"`
	Category    Category `json:"category"`
	SourceURL   string   `json:"source_url"`
	Impact      Impact   `json:"impact"`
	Verified    bool     `json:"verified"`
	AddedAt     string   `json:"added_at"`
}

// Feed is the top-level shape of news-feed.json
type Feed struct {
	LastUpdated string `json:"last_updated"`
	TotalNews   int    `json:"total_news"`
	News        []Item `json:"news"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

// EmptyFeedMessage is returned when no feed has been generated yet
const EmptyFeedMessage = "News feed is empty. Run scripts/generate-news-feed.mjs to generate news."

// EmptyFeed returns the placeholder feed
func EmptyFeed(now time.Time, message string) Feed {
	return Feed{
		LastUpdated: now.UTC().Format(time.RFC3339),
		TotalNews:   0,
		News:        []Item{},
		Message:     message,
	}
}

// SortByDateDesc orders items newest first. The sort is stable and
// items with unparsable dates go last.
func SortByDateDesc(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, okI := core.ParseDate(items[i].Date)
		tj, okJ := core.ParseDate(items[j].Date)
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// ForStartup returns the items about one startup, preserving order
func ForStartup(items []Item, startupID string) []Item {
	out := make([]Item, 0)
	for _, item := range items {
		if item.StartupID == startupID {
			out = append(out, item)
		}
	}
	return out
}

// Filter narrows a feed the way the news page does
type Filter struct {
	Categories     []Category
	HighImpactOnly bool
	VerifiedOnly   bool
}

// IsEmpty reports whether the filter imposes no restriction
func (f Filter) IsEmpty() bool {
	return len(f.Categories) == 0 && !f.HighImpactOnly && !f.VerifiedOnly
}

// Apply returns the matching items in original order
func (f Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if len(f.Categories) > 0 && !containsCategory(f.Categories, item.Category) {
			continue
		}
		if f.HighImpactOnly && item.Impact != ImpactHigh {
			continue
		}
		if f.VerifiedOnly && !item.Verified {
			continue
		}
		out = append(out, item)
	}
	return out
}

func containsCategory(list []Category, c Category) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}

// CategoryCount is one entry of the category breakdown
type CategoryCount struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

// Stats summarizes a feed
type Stats struct {
	Total      int              `json:"total"`
	HighImpact int              `json:"highImpact"`
	Verified   int              `json:"verified"`
	Categories map[Category]int `json:"categories"`
	ByCategory []CategoryCount  `json:"byCategory"`
}

// Summarize counts items by impact, verification and category. ByCategory
// lists the known categories in display order, then any others by name.
func Summarize(items []Item) Stats {
	st := Stats{Total: len(items), Categories: make(map[Category]int)}
	for _, item := range items {
		st.Categories[item.Category]++
		if item.Impact == ImpactHigh {
			st.HighImpact++
		}
		if item.Verified {
			st.Verified++
		}
	}

	st.ByCategory = make([]CategoryCount, 0, len(Categories))
	for _, c := range Categories {
		st.ByCategory = append(st.ByCategory, CategoryCount{Category: c, Label: c.Label(), Count: st.Categories[c]})
	}
	var others []Category
	for c := range st.Categories {
		if !containsCategory(Categories, c) {
			others = append(others, c)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	for _, c := range others {
		st.ByCategory = append(st.ByCategory, CategoryCount{Category: c, Label: c.Label(), Count: st.Categories[c]})
	}
	return st
}
