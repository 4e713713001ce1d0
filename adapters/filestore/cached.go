package filestore

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"impactdash/domain/news"
	"impactdash/internal"
	"impactdash/ports"
)

// Cached keeps the last snapshot until a file in the data directory
// changes. Snapshots are shared between callers and must not be mutated.
type Cached struct {
	store   *Store
	logger  *internal.Logger
	watcher *fsnotify.Watcher

	mu         sync.RWMutex
	snap       *ports.Snapshot
	generation uint64

	startOnce sync.Once
	closeOnce sync.Once
	doneCh    chan struct{}
}

var _ ports.DataSource = (*Cached)(nil)

// NewCached wraps store and watches its directory
func NewCached(store *Store, logger *internal.Logger) (*Cached, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(store.Dir()); err != nil {
		watcher.Close()
		return nil, err
	}
	return &Cached{
		store:   store,
		logger:  logger,
		watcher: watcher,
		doneCh:  make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx ends or Close is called
func (c *Cached) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
	})
}

// Close stops watching and waits for the event loop to exit
func (c *Cached) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.watcher.Close()
		started := true
		c.startOnce.Do(func() { started = false })
		if started {
			<-c.doneCh
		}
	})
	return err
}

func (c *Cached) run(ctx context.Context) {
	defer close(c.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				c.logger.Debug("[filestore] %s changed, dropping cached snapshot", event.Name)
				c.Invalidate()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("[filestore] watcher error: %v", err)
		}
	}
}

// Invalidate drops the cached snapshot
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.generation++
	c.mu.Unlock()
}

// Load returns the cached snapshot, reading from disk when there is none
func (c *Cached) Load(ctx context.Context) (*ports.Snapshot, error) {
	c.mu.RLock()
	snap, gen := c.snap, c.generation
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// a change that arrived during the read wins
	if c.generation == gen {
		c.snap = snap
	}
	c.mu.Unlock()
	return snap, nil
}

// ReadNewsFeed is not cached
func (c *Cached) ReadNewsFeed(ctx context.Context) (news.Feed, ports.NewsFeedState, error) {
	return c.store.ReadNewsFeed(ctx)
}
