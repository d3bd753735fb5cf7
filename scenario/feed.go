package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Item is one entry of the feed.
type Item struct {
	ID          string
	Title       string
	Description string
	Timestamp   time.Time
	Tags        []string
	ImageURL    string
}

// GenerateItems returns count mock items numbered from start. Every third
// item carries an image.
func GenerateItems(start, count int, rng *rand.Rand, now time.Time) []Item {
	items := make([]Item, count)
	for i := range items {
		idx := start + i
		tags := make([]string, rng.IntN(5)+1)
		for t := range tags {
			tags[t] = fmt.Sprintf("Tag %d", t+1)
		}
		item := Item{
			ID:          uuid.NewString(),
			Title:       fmt.Sprintf("Item %d", idx),
			Description: fmt.Sprintf("This is a detailed description for item %d. It contains enough text to wrap and test text rendering performance.", idx),
			Timestamp:   now.Add(-time.Duration(rng.Float64() * float64(1000*time.Second))),
			Tags:        tags,
		}
		if idx%3 == 0 {
			item.ImageURL = fmt.Sprintf("https://picsum.photos/200/100?random=%d", idx)
		}
		items[i] = item
	}
	return items
}

// FeedMetrics describes the feed after the last scroll or load.
type FeedMetrics struct {
	ScrollTime     time.Duration
	RenderTime     time.Duration
	ItemsInView    int
	TotalItems     int
	ScrollPosition float64
}

// FeedConfig sizes the simulated list. Heights are in pixels.
type FeedConfig struct {
	PageSize       int
	ItemHeight     float64
	ViewportHeight float64
	LoadThreshold  float64
	Latency        time.Duration
}

// DefaultFeedConfig matches a 600px list of 100px rows loading 20 at a time.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		PageSize:       20,
		ItemHeight:     100,
		ViewportHeight: 600,
		LoadThreshold:  100,
		Latency:        100 * time.Millisecond,
	}
}

// Feed is an infinite-scroll list that loads a new page whenever the
// scroll position gets within LoadThreshold of the end.
type Feed struct {
	cfg FeedConfig

	mu      sync.Mutex
	items   []Item
	loading bool
	metrics FeedMetrics
	rng     *rand.Rand
}

func NewFeed(cfg FeedConfig, rng *rand.Rand) *Feed {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Feed{cfg: cfg, rng: rng}
}

// LoadMore appends one page after the simulated network latency. It is a
// no-op while another load is running.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	start := time.Now()
	select {
	case <-time.After(f.cfg.Latency):
	case <-ctx.Done():
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, GenerateItems(len(f.items), f.cfg.PageSize, f.rng, time.Now())...)
	f.metrics.RenderTime = time.Since(start)
	f.metrics.TotalItems = len(f.items)
	return nil
}

// Scroll moves the viewport to pos, clamped to the content, and loads the
// next page when near the end.
func (f *Feed) Scroll(ctx context.Context, pos float64) error {
	start := time.Now()

	f.mu.Lock()
	content := float64(len(f.items)) * f.cfg.ItemHeight
	pos = max(0, min(pos, content-f.cfg.ViewportHeight))
	nearEnd := content-pos-f.cfg.ViewportHeight < f.cfg.LoadThreshold
	f.metrics.ScrollPosition = pos
	f.metrics.ItemsInView = int(math.Ceil(f.cfg.ViewportHeight / f.cfg.ItemHeight))
	f.metrics.ScrollTime = time.Since(start)
	f.mu.Unlock()

	if nearEnd {
		return f.LoadMore(ctx)
	}
	return nil
}

// ScrollBy scrolls relative to the current position.
func (f *Feed) ScrollBy(ctx context.Context, delta float64) error {
	return f.Scroll(ctx, f.Metrics().ScrollPosition+delta)
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *Feed) Metrics() FeedMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metrics
}
