package dashboard

import (
	"math"
	"sort"

	"impactdash/domain/startup"
)

// SDGCount is the number of startups tagged with one SDG
type SDGCount struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PhaseShare is one slice of the program-phase pie chart
type PhaseShare struct {
	Phase      string  `json:"phase"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SectorCount is the number of startups in one sector
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// Charts backs the chart section
type Charts struct {
	SDGs           []SDGCount    `json:"sdgs"`
	Phases         []PhaseShare  `json:"phases"`
	Sectors        []SectorCount `json:"sectors"`
	MaxSDGCount    int           `json:"maxSdgCount"`
	MaxSectorCount int           `json:"maxSectorCount"`
}

// ComputeCharts aggregates per-SDG, per-phase and per-sector counts.
// SDGs without startups are omitted.
func ComputeCharts(startups []startup.Startup, sdgs []startup.SDG) Charts {
	var c Charts

	c.SDGs = []SDGCount{}
	for _, sdg := range sdgs {
		n := 0
		for _, s := range startups {
			if s.HasSDG(sdg.ID) {
				n++
			}
		}
		if n > 0 {
			c.SDGs = append(c.SDGs, SDGCount{ID: sdg.ID, Name: sdg.Name, Count: n})
		}
	}
	sort.SliceStable(c.SDGs, func(i, j int) bool { return c.SDGs[i].ID < c.SDGs[j].ID })

	phaseCounts := ComputeKPIs(startups).PhaseCounts
	total := 0
	for _, p := range phaseCounts {
		total += p.Count
	}
	c.Phases = make([]PhaseShare, 0, len(phaseCounts))
	for _, p := range phaseCounts {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(p.Count)/float64(total)*1000) / 10
		}
		c.Phases = append(c.Phases, PhaseShare{Phase: p.Phase, Count: p.Count, Percentage: pct})
	}

	sectorCounts := make(map[string]int)
	order := []string{}
	for _, s := range startups {
		if _, ok := sectorCounts[s.Sector]; !ok {
			order = append(order, s.Sector)
		}
		sectorCounts[s.Sector]++
	}
	c.Sectors = make([]SectorCount, 0, len(order))
	for _, sector := range order {
		c.Sectors = append(c.Sectors, SectorCount{Sector: sector, Count: sectorCounts[sector]})
	}
	sort.SliceStable(c.Sectors, func(i, j int) bool { return c.Sectors[i].Count > c.Sectors[j].Count })

	for _, s := range c.SDGs {
		if s.Count > c.MaxSDGCount {
			c.MaxSDGCount = s.Count
		}
	}
	for _, s := range c.Sectors {
		if s.Count > c.MaxSectorCount {
			c.MaxSectorCount = s.Count
		}
	}
	return c
}
