package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"impactdash/domain/startup"
)

// PhaseCount is the number of startups in one program phase
type PhaseCount struct {
	Phase string `json:"phase"`
	Count int    `json:"count"`
}

// KPIs backs the headline cards
type KPIs struct {
	TotalStartups int          `json:"totalStartups"`
	WithPhase     int          `json:"withPhase"`
	PhaseCounts   []PhaseCount `json:"phaseCounts"`
	TopPhases     []PhaseCount `json:"topPhases"`
	PhaseSummary  string       `json:"phaseSummary"`
	PhaseSubtitle string       `json:"phaseSubtitle"`
}

// ComputeKPIs counts startups per program phase
func ComputeKPIs(startups []startup.Startup) KPIs {
	counts := make(map[string]int)
	order := []string{}
	for _, s := range startups {
		if s.ProgramPhase == "" {
			continue
		}
		if _, ok := counts[s.ProgramPhase]; !ok {
			order = append(order, s.ProgramPhase)
		}
		counts[s.ProgramPhase]++
	}

	phases := make([]PhaseCount, 0, len(order))
	withPhase := 0
	for _, p := range order {
		phases = append(phases, PhaseCount{Phase: p, Count: counts[p]})
		withPhase += counts[p]
	}
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].Count > phases[j].Count })

	top := phases
	if len(top) > 3 {
		top = top[:3]
	}
	parts := make([]string, 0, len(top))
	for _, p := range top {
		parts = append(parts, fmt.Sprintf("%d× %s", p.Count, p.Phase))
	}

	summary := strings.Join(parts, " | ")
	if summary == "" {
		summary = "—"
	}
	subtitle := "Keine Phasen-Daten"
	if len(phases) > 0 {
		subtitle = fmt.Sprintf("%d verschiedene Phasen", len(phases))
	}

	return KPIs{
		TotalStartups: len(startups),
		WithPhase:     withPhase,
		PhaseCounts:   phases,
		TopPhases:     top,
		PhaseSummary:  summary,
		PhaseSubtitle: subtitle,
	}
}
