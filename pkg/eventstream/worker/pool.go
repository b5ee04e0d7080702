// Package worker provides an asynchronous worker pool that publishes report
// events through an eventstream.Publisher.
//
// The pool keeps event delivery off the command path so a slow or unavailable
// broker never delays a reply to the user.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/dossier/pkg/eventstream"
)

var (
	defaultNumWorkers     uint = 2
	defaultJobQueueSize   uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Event *eventstream.ReportCreatedEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher delivers events. Required.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds a single publish call.
	PublishTimeout time.Duration

	// OnResult, if set, is called after every publish attempt.
	OnResult func(job Job, err error)

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool publishes events asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is closed,
// resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || job.Event == nil {
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("event queued",
			zap.String("event_id", job.Event.EventID),
			zap.String("report_id", job.Event.Report.ID),
		)
		return true
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			zap.String("event_id", job.Event.EventID),
			zap.String("report_id", job.Event.Report.ID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the bot and API have stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	err := p.config.Publisher.PublishReport(ctx, job.Event)
	if err != nil {
		p.logger.Error("publishing report event failed",
			zap.String("event_id", job.Event.EventID),
			zap.Error(err),
		)
	} else {
		p.logger.Debug("report event published",
			zap.String("event_id", job.Event.EventID),
		)
	}

	if p.config.OnResult != nil {
		p.config.OnResult(job, err)
	}
}
