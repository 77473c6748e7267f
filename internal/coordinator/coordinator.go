package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ratesync/internal/pipeline"
	"ratesync/internal/rates"
)

// Extractor produces the normalized rows of one extraction pass.
type Extractor interface {
	Extract(ctx context.Context) ([]rates.Row, error)
}

// Publisher replaces the sink contents with the given rows.
type Publisher interface {
	Publish(ctx context.Context, rows []rates.Row) (rates.Publication, error)
}

// Coordinator runs extract-then-publish behind a freshness cache and a
// single-flight guard, and owns the status of the last completed run.
type Coordinator struct {
	extractor Extractor
	publisher Publisher
	freshness time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	status      pipeline.RunStatus
	lastSuccess time.Time
	running     bool
}

// New creates a Coordinator. Runs within freshness of the last successful
// run are served from cache unless forced.
func New(extractor Extractor, publisher Publisher, freshness time.Duration, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		extractor: extractor,
		publisher: publisher,
		freshness: freshness,
		logger:    logger,
		now:       time.Now,
		status:    pipeline.InitialStatus(),
	}
}

// Status returns the outcome of the last completed run and whether a run
// is in progress.
func (c *Coordinator) Status() (pipeline.RunStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.running
}

// RunOnce extracts and publishes a fresh snapshot.
//
// Unless force is set, a successful run younger than the freshness window
// is returned as is. If another run is in progress the previous status is
// returned immediately; callers never wait on or duplicate a run. Failures
// are recorded in the status and then returned.
func (c *Coordinator) RunOnce(ctx context.Context, force bool) (pipeline.RunStatus, error) {
	c.mu.Lock()
	if age := c.now().Sub(c.lastSuccess); !force && c.status.OK && age < c.freshness {
		status := c.status
		c.mu.Unlock()
		c.logger.Debug("coordinator: serving cached status", "age", age)
		return status, nil
	}
	if c.running {
		status := c.status
		c.mu.Unlock()
		c.logger.Debug("coordinator: run already in progress")
		return status, nil
	}
	c.running = true
	c.mu.Unlock()

	pub, err := c.run(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false

	if err != nil {
		c.status = pipeline.RunStatus{OK: false, Error: err.Error()}
		c.logger.Error("coordinator: run failed", "type", pipeline.TypeOf(err), "error", err)
		return c.status, err
	}

	publishedAt := pub.PublishedAt
	c.status = pipeline.RunStatus{OK: true, PublishedAt: &publishedAt, RowCount: pub.Count}
	c.lastSuccess = c.now()
	c.logger.Info("coordinator: run succeeded", "rows", pub.Count, "published_at", publishedAt)
	return c.status, nil
}

// run turns a panic in either stage into a failed run so the in-progress
// flag is always cleared.
func (c *Coordinator) run(ctx context.Context) (pub rates.Publication, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("coordinator: run panicked: %v", r)
		}
	}()

	rows, err := c.extractor.Extract(ctx)
	if err != nil {
		return rates.Publication{}, err
	}
	return c.publisher.Publish(ctx, rows)
}
