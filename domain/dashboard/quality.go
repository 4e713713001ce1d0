package dashboard

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"impactdash/domain/startup"
)

// Thresholds used by the data-quality section
const (
	LowCompletenessPct  = 80
	LowQualityFreshDays = 60
	HighDriftScore      = 50
	StaleFreshnessDays  = 90
)

// QualityEntry is a startup listed in the data-quality section
type QualityEntry struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	FreshnessDays    float64 `json:"freshnessDays"`
	CompletenessPct  float64 `json:"completenessPct"`
	DiscrepancyScore float64 `json:"discrepancyScore"`
	LastCheckedAt    string  `json:"lastCheckedAt"`
}

// Summary holds central tendencies of one metric
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Bucket is one bin of the freshness histogram
type Bucket struct {
	Label string  `json:"label"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// QualityReport backs the data-quality section
type QualityReport struct {
	LowQuality       []QualityEntry `json:"lowQuality"`
	HighDrift        []QualityEntry `json:"highDrift"`
	Stale            []QualityEntry `json:"stale"`
	Freshness        Summary        `json:"freshness"`
	Completeness     Summary        `json:"completeness"`
	Discrepancy      Summary        `json:"discrepancy"`
	FreshnessBuckets []Bucket       `json:"freshnessBuckets"`
}

// ComputeQuality classifies startups by data-quality thresholds and
// summarizes the metric distributions.
func ComputeQuality(startups []startup.Startup) QualityReport {
	r := QualityReport{
		LowQuality: []QualityEntry{},
		HighDrift:  []QualityEntry{},
		Stale:      []QualityEntry{},
	}

	freshness := make([]float64, 0, len(startups))
	completeness := make([]float64, 0, len(startups))
	discrepancy := make([]float64, 0, len(startups))

	for _, s := range startups {
		q := s.Quality
		entry := QualityEntry{
			ID:               s.ID,
			Name:             s.Name,
			FreshnessDays:    q.FreshnessDays,
			CompletenessPct:  q.CompletenessPct,
			DiscrepancyScore: q.DiscrepancyScore,
			LastCheckedAt:    q.LastCheckedAt,
		}
		if q.CompletenessPct < LowCompletenessPct || q.FreshnessDays > LowQualityFreshDays {
			r.LowQuality = append(r.LowQuality, entry)
		}
		if q.DiscrepancyScore >= HighDriftScore {
			r.HighDrift = append(r.HighDrift, entry)
		}
		if q.FreshnessDays > StaleFreshnessDays {
			r.Stale = append(r.Stale, entry)
		}
		freshness = append(freshness, q.FreshnessDays)
		completeness = append(completeness, q.CompletenessPct)
		discrepancy = append(discrepancy, q.DiscrepancyScore)
	}

	r.Freshness = summarize(freshness)
	r.Completeness = summarize(completeness)
	r.Discrepancy = summarize(discrepancy)
	r.FreshnessBuckets = freshnessHistogram(freshness)
	return r
}

func summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}
	}
	max, err := stats.Max(data)
	if err != nil {
		return Summary{}
	}
	return Summary{
		Mean:   round1(mean),
		Median: round1(median),
		Max:    max,
	}
}

var freshnessEdges = []float64{0, 30, 60, 90, 180}

var freshnessLabels = []string{"0–30 Tage", "30–60 Tage", "60–90 Tage", "90–180 Tage", "> 180 Tage"}

// freshnessHistogram bins freshness days. Negative values count as 0.
func freshnessHistogram(freshness []float64) []Bucket {
	upper := 181.0
	x := make([]float64, len(freshness))
	for i, v := range freshness {
		if v < 0 {
			v = 0
		}
		x[i] = v
		if v+1 > upper {
			upper = v + 1
		}
	}
	sort.Float64s(x)

	dividers := append(append([]float64{}, freshnessEdges...), upper)
	counts := make([]float64, len(dividers)-1)
	if len(x) > 0 {
		counts = stat.Histogram(counts, dividers, x, nil)
	}

	buckets := make([]Bucket, len(counts))
	for i := range counts {
		buckets[i] = Bucket{
			Label: freshnessLabels[i],
			From:  dividers[i],
			To:    dividers[i+1],
			Count: int(counts[i]),
		}
	}
	return buckets
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
