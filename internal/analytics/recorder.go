// Package analytics captures visit events off the redirect path and computes
// aggregated views over them.
package analytics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	"github.com/Sri-Rahul/linkanalysis/internal/repository"
)

var eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "visit_events_dropped_total",
	Help: "Visit events dropped because the capture queue was full",
})

// CaptureRequest carries the raw per-visit metadata handed off by the
// redirect dispatcher
type CaptureRequest struct {
	LinkID     int64
	UserAgent  string
	Referrer   string
	IPAddress  string
	OccurredAt time.Time
}

// Recorder appends visit events through a buffered queue drained by worker
// goroutines. Capture never blocks and never returns an error: a full queue
// drops the event and a failed insert is logged and swallowed, so the
// redirect path cannot be delayed or failed by analytics.
type Recorder struct {
	events   chan CaptureRequest
	repo     repository.EventRepository
	workers  int
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRecorder creates a recorder with the given queue capacity and worker
// count and starts the workers
func NewRecorder(repo repository.EventRepository, queueSize, workers int) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}

	r := &Recorder{
		events:  make(chan CaptureRequest, queueSize),
		repo:    repo,
		workers: workers,
	}

	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

// Capture enqueues a visit event. If the queue is full the event is dropped;
// a gap in analytics is acceptable, a slow redirect is not.
func (r *Recorder) Capture(req CaptureRequest) {
	select {
	case r.events <- req:
	default:
		eventsDropped.Inc()
		log.Printf("[WARN] Capture queue full, dropping visit event for link %d", req.LinkID)
	}
}

// Close drains and stops the workers. Queued events are flushed before
// Close returns.
func (r *Recorder) Close() error {
	r.stopOnce.Do(func() {
		close(r.events)
	})
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for req := range r.events {
		event := buildEvent(req)
		if err := r.repo.InsertEvent(context.Background(), event); err != nil {
			log.Printf("[ERROR] Failed to record visit event for link %d: %v", req.LinkID, err)
		}
	}
}

// buildEvent normalizes a raw capture request into an immutable visit event
func buildEvent(req CaptureRequest) *domain.VisitEvent {
	device, browser, os := ClassifyUserAgent(req.UserAgent)

	referrer := req.Referrer
	if referrer == "" {
		referrer = "direct"
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &domain.VisitEvent{
		ID:         uuid.NewString(),
		LinkID:     req.LinkID,
		OccurredAt: occurredAt.UTC(),
		Device:     device,
		Browser:    browser,
		OS:         os,
		Referrer:   referrer,
		// Geolocation is stubbed; a real resolver would fill these from the IP
		Country:   "unknown",
		City:      "unknown",
		IPAddress: req.IPAddress,
	}
}

// ClassifyUserAgent maps a raw User-Agent string to coarse device, browser,
// and OS categories. Anything unrecognized is "unknown", never an error.
func ClassifyUserAgent(rawUA string) (device, browser, os string) {
	device, browser, os = "unknown", "unknown", "unknown"
	if rawUA == "" {
		return
	}

	ua := useragent.Parse(rawUA)

	switch {
	case ua.Bot:
		device = "bot"
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Desktop:
		device = "desktop"
	}

	if ua.Name != "" {
		browser = ua.Name
	}
	if ua.OS != "" {
		os = ua.OS
	}
	return
}
