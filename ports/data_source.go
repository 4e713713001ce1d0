package ports

import (
	"context"
	"time"

	"impactdash/domain/insight"
	"impactdash/domain/news"
	"impactdash/domain/startup"
)

// Snapshot is everything read from the data directory in one pass
type Snapshot struct {
	Startups  []startup.Startup
	Insights  insight.Index
	News      news.Feed
	SDGs      []startup.SDG
	CrawlRuns []startup.CrawlRun
	LoadedAt  time.Time
}

// NewsFeedState tells apart the ways the news feed file can be unusable
type NewsFeedState int

const (
	NewsFeedOK NewsFeedState = iota
	NewsFeedMissing
	NewsFeedEmpty
)

// DataSource reads the dashboard's static records
type DataSource interface {
	// Load returns a snapshot. Only an unreadable startup list is an error;
	// the other files fall back to empty values.
	Load(ctx context.Context) (*Snapshot, error)

	// ReadNewsFeed reads the news file on its own. A parse failure is an error.
	ReadNewsFeed(ctx context.Context) (news.Feed, NewsFeedState, error)
}
