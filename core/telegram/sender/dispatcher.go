// Package sender runs outbound Telegram calls that the caller does not wait
// for, such as retracting a channel post or announcing a new item. Every job
// runs at most once.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize int
	Workers   int
	// JobTimeout bounds a single job.
	JobTimeout time.Duration
}

// Job is one outbound call. Run receives a context bounded by JobTimeout.
type Job struct {
	Action   string
	Endpoint string
	Run      func(ctx context.Context) error
}

type queued struct {
	ctx context.Context
	job Job
}

// Dispatcher executes jobs on a fixed worker pool.
type Dispatcher struct {
	opts Options
	jobs chan queued

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	done atomic.Uint64
	errs atomic.Uint64
}

// NewDispatcher starts a dispatcher with sane defaults if options are zeroed.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 15 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan queued, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go d.worker()
	}
	return d
}

// Enqueue schedules job without blocking. ctx carries log correlation only;
// its cancellation does not abort the job once queued.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- queued{ctx: context.WithoutCancel(ctx), job: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Completed returns the number of jobs that finished without error.
func (d *Dispatcher) Completed() uint64 {
	return d.done.Load()
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for q := range d.jobs {
		d.handle(q)
	}
}

func (d *Dispatcher) handle(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.opts.JobTimeout)
	defer cancel()

	start := time.Now()
	err := q.job.Run(ctx)
	took := time.Since(start)

	attrs := []slog.Attr{
		slog.String("action", q.job.Action),
		slog.Duration("elapsed", took),
	}
	if q.job.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", q.job.Endpoint))
	}
	if err != nil {
		d.errs.Add(1)
		attrs = append(attrs,
			slog.String("err", netutil.RedactErr(err)),
			slog.String("error_kind", netutil.Classify(err)),
		)
		logger.Warn(q.ctx, "tg.sender", "send.fail", attrs...)
		return
	}
	d.done.Add(1)
	logger.Debug(q.ctx, "tg.sender", "send.success", attrs...)
}
