package app

import (
	"context"

	"impactdash/domain/core"
	"impactdash/domain/news"
	"impactdash/internal"
	"impactdash/internal/errors"
	"impactdash/ports"
)

// NewsService serves the news feed
type NewsService struct {
	data   ports.DataSource
	clock  core.Clock
	logger *internal.Logger
}

// NewNewsService creates a news service
func NewNewsService(data ports.DataSource, clock core.Clock, logger *internal.Logger) *NewsService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &NewsService{data: data, clock: clock, logger: logger}
}

// Feed returns the feed newest first, narrowed by filter. A missing or
// blank file yields the empty placeholder feed. On a read or parse failure
// the returned feed carries the error text alongside the error.
func (s *NewsService) Feed(ctx context.Context, filter news.Filter) (news.Feed, error) {
	feed, state, err := s.data.ReadNewsFeed(ctx)
	if err != nil {
		s.logger.Error("[NewsService] error loading news feed: %v", err)
		failed := news.EmptyFeed(s.clock.Now(), "")
		failed.Error = err.Error()
		return failed, errors.Wrap(err, "failed to load news feed")
	}

	switch state {
	case ports.NewsFeedMissing:
		s.logger.Info("[NewsService] news feed file does not exist yet")
		return news.EmptyFeed(s.clock.Now(), news.EmptyFeedMessage), nil
	case ports.NewsFeedEmpty:
		s.logger.Info("[NewsService] news feed file is empty")
		return news.EmptyFeed(s.clock.Now(), news.EmptyFeedMessage), nil
	}

	items := append([]news.Item(nil), feed.News...)
	news.SortByDateDesc(items)
	if !filter.IsEmpty() {
		items = filter.Apply(items)
		feed.TotalNews = len(items)
	}
	if items == nil {
		items = []news.Item{}
	}
	feed.News = items

	s.logger.Debug("[NewsService] loaded %d news items", feed.TotalNews)
	return feed, nil
}

// Stats summarizes the whole feed
func (s *NewsService) Stats(ctx context.Context) (news.Stats, error) {
	feed, err := s.Feed(ctx, news.Filter{})
	if err != nil {
		return news.Stats{}, err
	}
	return news.Summarize(feed.News), nil
}
