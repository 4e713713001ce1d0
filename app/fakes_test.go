package app

import (
	"context"
	"sync"

	"impactdash/domain/insight"
	"impactdash/domain/news"
	"impactdash/domain/startup"
	"impactdash/ports"
)

type fakeData struct {
	snap      *ports.Snapshot
	err       error
	feed      news.Feed
	feedState ports.NewsFeedState
	feedErr   error
}

func (f *fakeData) Load(ctx context.Context) (*ports.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeData) ReadNewsFeed(ctx context.Context) (news.Feed, ports.NewsFeedState, error) {
	return f.feed, f.feedState, f.feedErr
}

type fakeMailer struct {
	mu      sync.Mutex
	calls   []string
	err     error
	removed []string
}

func (m *fakeMailer) AddContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, audienceID+":"+email)
	if m.err != nil {
		return nil, m.err
	}
	return &ports.ContactResult{ID: "contact-1", Object: "contact"}, nil
}

func (m *fakeMailer) RemoveContact(ctx context.Context, audienceID, email string) (*ports.ContactResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, audienceID+":"+email)
	if m.err != nil {
		return nil, m.err
	}
	return &ports.ContactResult{ID: "contact-1", Object: "contact", Deleted: true}, nil
}

func testSnapshot() *ports.Snapshot {
	return &ports.Snapshot{
		Startups: []startup.Startup{
			{ID: "s1", Name: "Solarkraft", Sector: "Energie", City: "Berlin", SDGs: []int{7}, Batch: "Batch 2", ProgramPhase: "Growth", Status: "active"},
			{ID: "s2", Name: "Kreislauf", Sector: "Kreislaufwirtschaft", City: "Hamburg", SDGs: []int{12}, Batch: "Batch 10", ProgramPhase: "Early", Status: "active"},
		},
		Insights: insight.NewIndex([]insight.Raw{{StartupID: "s1", Founders: []byte(`["Anna Weber"]`)}}),
		News: news.Feed{News: []news.Item{
			{ID: "n1", StartupID: "s1", StartupName: "Solarkraft", Date: "2025-01-10", Headline: "Seed-Runde"},
			{ID: "n2", StartupID: "s1", StartupName: "Solarkraft", Date: "2025-02-10", Headline: "Neues Produkt"},
		}},
		SDGs: []startup.SDG{{ID: 7, Name: "Saubere Energie"}, {ID: 12, Name: "Nachhaltiger Konsum"}},
	}
}
