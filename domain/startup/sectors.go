package startup

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sectors.yaml
var defaultSectorMapping []byte

// SectorMapping derives a sector from the SDGs a startup is tagged with
type SectorMapping struct {
	Fallback string         `yaml:"fallback"`
	Priority []string       `yaml:"priority"`
	SDGs     map[int]string `yaml:"sdgs"`
}

// DefaultSectorMapping returns the built-in mapping
func DefaultSectorMapping() (*SectorMapping, error) {
	return ParseSectorMapping(defaultSectorMapping)
}

// LoadSectorMapping reads a mapping file, or the built-in mapping when path is empty
func LoadSectorMapping(path string) (*SectorMapping, error) {
	if path == "" {
		return DefaultSectorMapping()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sector mapping %s: %w", path, err)
	}
	return ParseSectorMapping(raw)
}

// ParseSectorMapping decodes a YAML mapping
func ParseSectorMapping(raw []byte) (*SectorMapping, error) {
	var m SectorMapping
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse sector mapping: %w", err)
	}
	if m.Fallback == "" {
		return nil, fmt.Errorf("sector mapping has no fallback sector")
	}
	return &m, nil
}

// Classify picks the highest-priority sector among those the SDGs map to.
// Startups without mapped SDGs get the fallback sector.
func (m *SectorMapping) Classify(sdgs []int) string {
	candidates := make(map[string]bool)
	var firstSeen string
	for _, id := range sdgs {
		if sector, ok := m.SDGs[id]; ok {
			if firstSeen == "" {
				firstSeen = sector
			}
			candidates[sector] = true
		}
	}
	if len(candidates) == 0 {
		return m.Fallback
	}
	for _, sector := range m.Priority {
		if candidates[sector] {
			return sector
		}
	}
	return firstSeen
}
