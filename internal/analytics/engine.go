package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	"github.com/Sri-Rahul/linkanalysis/internal/repository"
)

const (
	topLinkCount     = 5
	recentEventCount = 10
)

// Engine computes on-demand aggregated views over the link set and the event
// store. All methods are pure reads: they take no locks and see whatever data
// is committed at query time, so results improve monotonically rather than
// being transactional snapshots.
type Engine struct {
	links     repository.LinkRepository
	events    repository.EventRepository
	serverURL string
	now       func() time.Time
}

// NewEngine creates a new aggregation engine. serverURL prefixes the short
// URLs reported in summaries.
func NewEngine(links repository.LinkRepository, events repository.EventRepository, serverURL string) *Engine {
	return &Engine{
		links:     links,
		events:    events,
		serverURL: serverURL,
		now:       time.Now,
	}
}

// Summary computes the owner-scoped dashboard view: link and click totals,
// the top five links by clicks, the ten most recent events, and a device
// tally across all of the owner's links
func (e *Engine) Summary(ctx context.Context, ownerID string) (*domain.AnalyticsSummary, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}

	links, err := e.links.ListLinks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner links: %w", err)
	}

	var totalClicks int64
	for _, link := range links {
		totalClicks += link.Clicks
	}

	recent, err := e.events.RecentEventsByOwner(ctx, ownerID, recentEventCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}

	devices, err := e.events.DeviceTallyByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tally: %w", err)
	}

	return &domain.AnalyticsSummary{
		TotalURLs:    len(links),
		TotalClicks:  totalClicks,
		TopURLs:      e.topLinks(links),
		RecentEvents: recent,
		DeviceTally:  devices,
	}, nil
}

// topLinks orders by click count descending, breaking ties by most recent
// creation first
func (e *Engine) topLinks(links []*domain.Link) []domain.TopLink {
	sorted := make([]*domain.Link, len(links))
	copy(sorted, links)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Clicks != sorted[j].Clicks {
			return sorted[i].Clicks > sorted[j].Clicks
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > topLinkCount {
		sorted = sorted[:topLinkCount]
	}

	top := make([]domain.TopLink, len(sorted))
	for i, link := range sorted {
		top[i] = domain.TopLink{
			Code:        link.Code,
			ShortURL:    e.serverURL + "/" + link.Code,
			Destination: link.Destination,
			Clicks:      link.Clicks,
		}
	}
	return top
}

// ClicksOverTime returns per-UTC-day click counts for a link inside the named
// lookback window, ascending by date. Days without events are absent.
func (e *Engine) ClicksOverTime(ctx context.Context, code, window string) ([]domain.SeriesPoint, error) {
	link, err := e.links.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}

	since := windowStart(e.now(), window)
	series, err := e.events.ClicksPerDay(ctx, link.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute click series: %w", err)
	}
	return series, nil
}

// Breakdown groups all events for a link by one categorical field
func (e *Engine) Breakdown(ctx context.Context, code, dimension string) ([]domain.CategoryCount, error) {
	switch dimension {
	case domain.DimensionDevice, domain.DimensionBrowser, domain.DimensionOS:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, dimension)
	}

	link, err := e.links.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}

	counts, err := e.events.CountByDimension(ctx, link.ID, dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s breakdown: %w", dimension, err)
	}
	return counts, nil
}

// Events returns the raw visit events for a link, newest first
func (e *Engine) Events(ctx context.Context, code string, limit int) ([]*domain.VisitEvent, error) {
	link, err := e.links.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}

	events, err := e.events.EventsByLink(ctx, link.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// windowStart maps a window name to its lookback start. Unrecognized names
// fall back to a 30 day lookback.
func windowStart(now time.Time, window string) time.Time {
	switch window {
	case domain.WindowDay:
		return now.AddDate(0, 0, -1)
	case domain.WindowWeek:
		return now.AddDate(0, 0, -7)
	case domain.WindowMonth:
		return now.AddDate(0, -1, 0)
	case domain.WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}
