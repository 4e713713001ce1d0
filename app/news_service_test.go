package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactdash/domain/core"
	"impactdash/domain/news"
	"impactdash/ports"
)

func newsClock() core.Clock {
	return core.NewManualClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestFeedSortedNewestFirst(t *testing.T) {
	data := &fakeData{feed: news.Feed{TotalNews: 3, News: []news.Item{
		{ID: "a", Date: "2025-01-01"},
		{ID: "b", Date: "2025-02-15T10:00:00Z"},
		{ID: "c", Date: "2024-12-24"},
	}}}
	feed, err := NewNewsService(data, newsClock(), nil).Feed(context.Background(), news.Filter{})
	require.NoError(t, err)

	require.Len(t, feed.News, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{feed.News[0].ID, feed.News[1].ID, feed.News[2].ID})
	assert.Equal(t, 3, feed.TotalNews)
	assert.Equal(t, "a", data.feed.News[0].ID, "source slice untouched")
}

func TestFeedPlaceholders(t *testing.T) {
	for _, state := range []ports.NewsFeedState{ports.NewsFeedMissing, ports.NewsFeedEmpty} {
		feed, err := NewNewsService(&fakeData{feedState: state}, newsClock(), nil).Feed(context.Background(), news.Filter{})
		require.NoError(t, err)
		assert.Equal(t, news.EmptyFeedMessage, feed.Message)
		assert.Equal(t, 0, feed.TotalNews)
		assert.NotNil(t, feed.News)
		assert.Equal(t, "2025-03-01T10:00:00Z", feed.LastUpdated)
	}
}

func TestFeedParseError(t *testing.T) {
	feed, err := NewNewsService(&fakeData{feedErr: fmt.Errorf("unexpected end of JSON input")}, newsClock(), nil).Feed(context.Background(), news.Filter{})
	require.Error(t, err)
	assert.Equal(t, "unexpected end of JSON input", feed.Error)
	assert.Empty(t, feed.News)
}

func TestFeedFilter(t *testing.T) {
	data := &fakeData{feed: news.Feed{TotalNews: 2, News: []news.Item{
		{ID: "a", Date: "2025-01-01", Category: news.CategoryFunding, Impact: news.ImpactHigh, Verified: true},
		{ID: "b", Date: "2025-01-02", Category: news.CategoryAward, Impact: news.ImpactLow},
	}}}
	feed, err := NewNewsService(data, newsClock(), nil).Feed(context.Background(), news.Filter{HighImpactOnly: true})
	require.NoError(t, err)
	require.Len(t, feed.News, 1)
	assert.Equal(t, "a", feed.News[0].ID)
	assert.Equal(t, 1, feed.TotalNews)

	stats, err := NewNewsService(data, newsClock(), nil).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.HighImpact)
}
