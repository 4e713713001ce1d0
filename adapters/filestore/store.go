// Package filestore reads the dashboard's JSON records from a directory.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"impactdash/domain/core"
	"impactdash/domain/insight"
	"impactdash/domain/news"
	"impactdash/domain/startup"
	"impactdash/internal"
	"impactdash/ports"
)

const (
	StartupsFile  = "startups.json"
	InsightsFile  = "ai-insights.json"
	NewsFeedFile  = "news-feed.json"
	SDGsFile      = "sdgs.json"
	CrawlRunsFile = "crawl-runs.json"
)

// Store reads snapshots straight from disk on every call
type Store struct {
	dir    string
	clock  core.Clock
	logger *internal.Logger
}

var _ ports.DataSource = (*Store)(nil)

// New creates a store over dir
func New(dir string, clock core.Clock, logger *internal.Logger) *Store {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Store{dir: dir, clock: clock, logger: logger}
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// Load reads all five files concurrently. Only the startup list is
// mandatory; the others degrade to empty values.
func (s *Store) Load(ctx context.Context) (*ports.Snapshot, error) {
	var (
		startups  []startup.Startup
		insights  insight.File
		feed      news.Feed
		sdgs      []startup.SDG
		crawlRuns []startup.CrawlRun
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.readStartups(ctx)
		if err != nil {
			return err
		}
		startups = list
		return nil
	})
	g.Go(func() error {
		s.readOptional(ctx, InsightsFile, &insights)
		return nil
	})
	g.Go(func() error {
		s.readOptional(ctx, NewsFeedFile, &feed)
		return nil
	})
	g.Go(func() error {
		s.readOptional(ctx, SDGsFile, &sdgs)
		return nil
	})
	g.Go(func() error {
		s.readOptional(ctx, CrawlRunsFile, &crawlRuns)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if feed.News == nil {
		feed.News = []news.Item{}
	}

	snap := &ports.Snapshot{
		Startups:  startups,
		Insights:  insight.NewIndex(insights.Insights),
		News:      feed,
		SDGs:      sdgs,
		CrawlRuns: crawlRuns,
		LoadedAt:  s.clock.Now(),
	}
	s.logger.Debug("[filestore] loaded %d startups, %d insights, %d news", len(snap.Startups), len(snap.Insights), len(snap.News.News))
	return snap, nil
}

func (s *Store) readStartups(ctx context.Context) ([]startup.Startup, error) {
	raw, err := s.read(ctx, StartupsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrNoData, StartupsFile, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] != '[' {
		// a non-list document is treated as no startups, not as a failure
		s.logger.Warn("[filestore] %s is not a list, using empty list", StartupsFile)
		return []startup.Startup{}, nil
	}

	var list []startup.Startup
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", core.ErrNoData, StartupsFile, err)
	}
	if list == nil {
		list = []startup.Startup{}
	}
	return list, nil
}

// readOptional decodes name into v, leaving v at its zero value on any failure
func (s *Store) readOptional(ctx context.Context, name string, v interface{}) {
	raw, err := s.read(ctx, name)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("[filestore] read %s: %v", name, err)
		}
		return
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("[filestore] parse %s: %v", name, err)
	}
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.dir, name))
}

// ReadNewsFeed reads the news file alone, reporting whether it is missing or blank
func (s *Store) ReadNewsFeed(ctx context.Context) (news.Feed, ports.NewsFeedState, error) {
	raw, err := s.read(ctx, NewsFeedFile)
	if err != nil {
		if os.IsNotExist(err) {
			return news.Feed{}, ports.NewsFeedMissing, nil
		}
		return news.Feed{}, ports.NewsFeedOK, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return news.Feed{}, ports.NewsFeedEmpty, nil
	}

	var feed news.Feed
	if err := json.Unmarshal(raw, &feed); err != nil {
		return news.Feed{}, ports.NewsFeedOK, err
	}
	if feed.News == nil {
		feed.News = []news.Item{}
	}
	return feed, ports.NewsFeedOK, nil
}

// field is one key of a startup record, kept in file order
type field struct {
	key   string
	value json.RawMessage
}

// SetSectors rewrites the sector of every record in startups.json, sectors[i]
// going to the i-th record. Only the sector key changes; every other key and
// the key order are kept. Records without a sector get it appended.
func (s *Store) SetSectors(ctx context.Context, sectors []string) error {
	raw, err := s.read(ctx, StartupsFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", StartupsFile, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse %s: %w", StartupsFile, err)
	}
	if len(records) != len(sectors) {
		return fmt.Errorf("%s has %d records, got %d sectors", StartupsFile, len(records), len(sectors))
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, record := range records {
		fields, err := decodeFields(record)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		sector, err := marshalString(sectors[i])
		if err != nil {
			return err
		}
		fields = setField(fields, "sector", sector)

		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeFields(&buf, fields); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("format %s: %w", StartupsFile, err)
	}
	out.WriteByte('\n')
	return s.replace(StartupsFile, out.Bytes())
}

func decodeFields(record json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(record))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("not an object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: value})
	}
	return fields, nil
}

func setField(fields []field, key string, value json.RawMessage) []field {
	for i := range fields {
		if fields[i].key == key {
			fields[i].value = value
			return fields
		}
	}
	return append(fields, field{key: key, value: value})
}

func writeFields(buf *bytes.Buffer, fields []field) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(f.key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(buf, f.value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// marshalString encodes v without escaping &, < and >
func marshalString(v string) (json.RawMessage, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// replace writes name through a temp file in the same directory
func (s *Store) replace(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".startups-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
