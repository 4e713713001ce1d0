package startup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionPriority(t *testing.T) {
	tests := []struct {
		name    string
		startup Startup
		want    string
	}{
		{"official wins", Startup{Official: Official{Description: "A"}, Latest: Latest{Description: "B"}, RawDescription: "C"}, "A"},
		{"crawled second", Startup{Latest: Latest{Description: "B"}, RawDescription: "C"}, "B"},
		{"raw last", Startup{RawDescription: "C"}, "C"},
		{"nothing", Startup{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.startup.Description())
		})
	}
}

func TestBatchNumber(t *testing.T) {
	assert.Equal(t, 13, BatchNumber("Batch 13"))
	assert.Equal(t, 2, BatchNumber("B2"))
	assert.Equal(t, 0, BatchNumber("Alumni"))
	assert.Equal(t, 0, BatchNumber(""))
}

func TestWebsiteHost(t *testing.T) {
	assert.Equal(t, "example.org", Startup{Website: "https://www.example.org/about"}.WebsiteHost())
	assert.Equal(t, "foo.de", Startup{Website: "http://foo.de"}.WebsiteHost())
	assert.Equal(t, "", Startup{}.WebsiteHost())
}

func TestSDGName(t *testing.T) {
	sdgs := []SDG{{ID: 13, Name: "Maßnahmen zum Klimaschutz"}}
	assert.Equal(t, "Maßnahmen zum Klimaschutz", SDGName(sdgs, 13))
	assert.Equal(t, "SDG 4", SDGName(sdgs, 4))
}

func TestStartupDecodesSparseRecord(t *testing.T) {
	raw := `{"id":"s1","name":"Solarkraft","sdgs":[7,13],"sector":"Klimaschutz & erneuerbare Energien","status":"active"}`
	var s Startup
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	assert.Equal(t, "s1", s.ID)
	assert.Nil(t, s.PrimaryContact)
	assert.Equal(t, "", s.ContactName())
	assert.True(t, s.HasSDG(13))
	assert.False(t, s.HasSDG(1))
}

func TestSectorMappingClassify(t *testing.T) {
	m, err := DefaultSectorMapping()
	require.NoError(t, err)

	tests := []struct {
		name string
		sdgs []int
		want string
	}{
		{"no sdgs", nil, "Demokratie & resiliente Gesellschaft"},
		{"unmapped sdg", []int{42}, "Demokratie & resiliente Gesellschaft"},
		{"single", []int{3}, "Gesundheit & Pflege"},
		{"priority wins", []int{3, 12}, "Kreislaufwirtschaft"},
		{"climate over cities", []int{11, 13}, "Klimaschutz & Erneuerbare Energien"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Classify(tt.sdgs))
		})
	}
}

func TestParseSectorMappingRequiresFallback(t *testing.T) {
	_, err := ParseSectorMapping([]byte("priority: []\n"))
	assert.Error(t, err)
}
