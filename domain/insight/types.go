package insight

import (
	"encoding/json"
	"strings"
)

// Update is a dated event the insight crawler found for a startup
type Update struct {
	Date        string  `json:"date"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	ImpactScore float64 `json:"impact_score"`
	Verified    bool    `json:"verified,omitempty"`
}

// BusinessMetrics are estimated business indicators
type BusinessMetrics struct {
	EstimatedRevenueTrend string          `json:"estimated_revenue_trend,omitempty"`
	TeamSizeTrend         string          `json:"team_size_trend,omitempty"`
	TeamSize              *int            `json:"team_size,omitempty"`
	TeamSizeSource        string          `json:"team_size_source,omitempty"`
	MarketPresence        string          `json:"market_presence,omitempty"`
	FundingStatus         string          `json:"funding_status,omitempty"`
	LastActiveDate        string          `json:"last_active_date,omitempty"`
	TeamMembers           json.RawMessage `json:"team_members,omitempty"`
}

// Analysis is the LLM assessment attached to an insight
type Analysis struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
	Recommendation  string   `json:"recommendation"`
	ConfidenceScore float64  `json:"confidence_score"`
	DataQuality     string   `json:"data_quality,omitempty"`
}

// SectorClassification is the LLM sector suggestion
type SectorClassification struct {
	Sector       string  `json:"sector"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	ClassifiedAt string  `json:"classified_at"`
}

// Raw mirrors an ai-insights.json entry as written by the enrichment scripts.
// Founder data appears under several keys and in several shapes.
type Raw struct {
	StartupID            string                `json:"startup_id"`
	StartupName          string                `json:"startup_name"`
	AnalyzedAt           string                `json:"analyzed_at"`
	Status               string                `json:"status"`
	Updates              []Update              `json:"updates"`
	BusinessMetrics      *BusinessMetrics      `json:"business_metrics,omitempty"`
	Founders             json.RawMessage       `json:"founders,omitempty"`
	TeamInfo             json.RawMessage       `json:"team_info,omitempty"`
	AIAnalysis           *Analysis             `json:"ai_analysis,omitempty"`
	SectorClassification *SectorClassification `json:"sector_classification,omitempty"`
	SourcesChecked       []string              `json:"sources_checked,omitempty"`
	DataFreshness        string                `json:"data_freshness"`
	SearchNotes          string                `json:"search_notes,omitempty"`
}

// File is the top-level shape of ai-insights.json
type File struct {
	Insights    []Raw  `json:"insights"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Founder is a resolved founder entry
type Founder struct {
	Name              string `json:"name"`
	Role              string `json:"role,omitempty"`
	LinkedInURL       string `json:"linkedin_url,omitempty"`
	LinkedInFollowers *int   `json:"linkedin_followers,omitempty"`
	LastChecked       string `json:"last_checked,omitempty"`
}

// Insight is the normalized enrichment record
type Insight struct {
	StartupID            string                `json:"startup_id"`
	StartupName          string                `json:"startup_name"`
	AnalyzedAt           string                `json:"analyzed_at"`
	Status               string                `json:"status"`
	Founders             []Founder             `json:"founders"`
	Updates              []Update              `json:"updates"`
	BusinessMetrics      *BusinessMetrics      `json:"business_metrics,omitempty"`
	Analysis             *Analysis             `json:"ai_analysis,omitempty"`
	SectorClassification *SectorClassification `json:"sector_classification,omitempty"`
	SourcesChecked       []string              `json:"sources_checked,omitempty"`
	DataFreshness        string                `json:"data_freshness"`
	SearchNotes          string                `json:"search_notes,omitempty"`
}

// FounderNames returns the non-empty founder names in order
func (i Insight) FounderNames() []string {
	names := make([]string, 0, len(i.Founders))
	for _, f := range i.Founders {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// Strengths returns the analysis strengths, or nil
func (i Insight) Strengths() []string {
	if i.Analysis == nil {
		return nil
	}
	return i.Analysis.Strengths
}

// Concerns returns the analysis concerns, or nil
func (i Insight) Concerns() []string {
	if i.Analysis == nil {
		return nil
	}
	return i.Analysis.Concerns
}

// Recommendation returns the analysis recommendation, or ""
func (i Insight) Recommendation() string {
	if i.Analysis == nil {
		return ""
	}
	return i.Analysis.Recommendation
}

// RecommendationLabel returns the German label for a recommendation code
func RecommendationLabel(code string) string {
	switch code {
	case "continue_support":
		return "Weiter unterstützen"
	case "monitor":
		return "Beobachten"
	case "alumni_inactive":
		return "Alumni / inaktiv"
	case "insufficient_data":
		return "Unzureichende Daten"
	default:
		return "Keine Empfehlung"
	}
}

// Normalize resolves the founder fallbacks once:
// founders, then team_info, then business_metrics.team_members.
func Normalize(raw Raw) Insight {
	founders := decodeFounders(raw.Founders)
	if len(founders) == 0 {
		founders = decodeFounders(raw.TeamInfo)
	}
	if len(founders) == 0 && raw.BusinessMetrics != nil {
		founders = decodeFounders(raw.BusinessMetrics.TeamMembers)
	}

	updates := raw.Updates
	if updates == nil {
		updates = []Update{}
	}

	return Insight{
		StartupID:            raw.StartupID,
		StartupName:          raw.StartupName,
		AnalyzedAt:           raw.AnalyzedAt,
		Status:               raw.Status,
		Founders:             founders,
		Updates:              updates,
		BusinessMetrics:      raw.BusinessMetrics,
		Analysis:             raw.AIAnalysis,
		SectorClassification: raw.SectorClassification,
		SourcesChecked:       raw.SourcesChecked,
		DataFreshness:        raw.DataFreshness,
		SearchNotes:          raw.SearchNotes,
	}
}

// decodeFounders accepts a list of strings, a list of objects with a
// name, a mix of both, or an object wrapping such a list under
// "founders"/"members". Anything else yields no founders.
func decodeFounders(raw json.RawMessage) []Founder {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var wrapper struct {
			Founders json.RawMessage `json:"founders"`
			Members  json.RawMessage `json:"members"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil
		}
		if founders := decodeFounders(wrapper.Founders); len(founders) > 0 {
			return founders
		}
		return decodeFounders(wrapper.Members)
	}

	founders := make([]Founder, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				founders = append(founders, Founder{Name: name})
			}
			continue
		}
		var f Founder
		if err := json.Unmarshal(item, &f); err != nil {
			continue
		}
		f.Name = strings.TrimSpace(f.Name)
		if f.Name != "" {
			founders = append(founders, f)
		}
	}
	return founders
}

// Index maps startup ids to their insight
type Index map[string]Insight

// NewIndex normalizes raw entries and indexes them by startup id.
// Entries without a startup id are skipped. A later duplicate replaces the
// earlier entry but keeps its founders when it names none itself.
func NewIndex(raws []Raw) Index {
	idx := make(Index, len(raws))
	for _, raw := range raws {
		if raw.StartupID == "" {
			continue
		}
		in := Normalize(raw)
		if prev, ok := idx[raw.StartupID]; ok && len(in.Founders) == 0 {
			in.Founders = prev.Founders
		}
		idx[raw.StartupID] = in
	}
	return idx
}

// Get returns the insight for a startup id
func (idx Index) Get(startupID string) (Insight, bool) {
	in, ok := idx[startupID]
	return in, ok
}

// Founders returns the joined founder names for a startup, or ""
func (idx Index) Founders(startupID string) string {
	in, ok := idx[startupID]
	if !ok {
		return ""
	}
	return strings.Join(in.FounderNames(), ", ")
}
