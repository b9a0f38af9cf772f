// Package worker bounds how many links of a graph build are processed at
// the same time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"phishgraph/pkg/logger"
	"phishgraph/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Pool.
type Options struct {
	// MaxInFlight is the number of jobs allowed to run at once. Values below 1 mean 1.
	MaxInFlight int
	// JobTimeout bounds every single job. Zero leaves jobs bounded only by
	// the context passed to Run.
	JobTimeout time.Duration
	// RatePerSecond paces job starts across the pool. Zero disables pacing.
	RatePerSecond float64
	// Burst is the number of starts allowed at once when pacing, at least 1.
	Burst int
	// Metrics tracks in-flight jobs, may be nil.
	Metrics *metrics.Collectors
}

// Pool is a cooperative limiter of in-flight jobs.
//
// Before a job starts, reserve takes one slot. When none is free it waits
// until another job finishes or the context ends. A finishing job calls
// finished, which frees its slot and wakes one waiter without blocking. A
// waiter that wakes up and still sees free capacity after taking its own
// slot passes the wake-up on, so no free slot is left unnoticed while
// others wait.
//
// A Pool can be shared by concurrent Run calls; the limit then applies to
// all of them together.
type Pool struct {
	maxInFlight int
	jobTimeout  time.Duration
	limiter     *rate.Limiter
	metrics     *metrics.Collectors

	// mu protects inFlight.
	mu       sync.Mutex
	inFlight int
	// finishedChan wakes goroutines waiting in reserve. It holds at most one
	// pending wake-up.
	finishedChan chan struct{}
}

// New creates a Pool.
func New(opts Options) *Pool {
	p := &Pool{
		maxInFlight:  max(opts.MaxInFlight, 1),
		jobTimeout:   opts.JobTimeout,
		metrics:      opts.Metrics,
		finishedChan: make(chan struct{}, 1),
	}
	if opts.RatePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(opts.Burst, 1))
	}

	return p
}

func (p *Pool) wake() {
	select {
	case p.finishedChan <- struct{}{}:
	default:
	}
}

// reserve takes one slot, waiting for a finishing job when the pool is full.
func (p *Pool) reserve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("no free slot: %w", err)
		}

		p.mu.Lock()
		if p.inFlight < p.maxInFlight {
			p.inFlight++
			free := p.inFlight < p.maxInFlight
			p.mu.Unlock()

			if free {
				p.wake()
			}

			return nil
		}
		inFlight := p.inFlight
		p.mu.Unlock()

		logger.Debug(ctx, "waiting for a free slot", zap.Int("inFlight", inFlight))

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for a free slot: %w", ctx.Err())
		case <-p.finishedChan:
			continue
		}
	}
}

// finished frees a slot and wakes one waiter.
func (p *Pool) finished() {
	p.mu.Lock()
	if p.inFlight > 0 {
		p.inFlight--
	}
	p.mu.Unlock()

	p.wake()
}

// InFlight returns the number of jobs currently holding a slot.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.inFlight
}

// Do runs fn with a slot held. fn gets a context bounded by the job timeout.
// An error is returned only when no slot or rate token could be obtained
// before ctx ended; fn is not called then.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context)) error {
	if err := p.reserve(ctx); err != nil {
		return err
	}

	return p.runReserved(ctx, fn)
}

// runReserved runs fn on a slot already taken by reserve and frees it afterwards.
func (p *Pool) runReserved(ctx context.Context, fn func(ctx context.Context)) error {
	defer p.finished()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("could not pace job: %w", err)
		}
	}

	p.metrics.LinkStarted()
	defer p.metrics.LinkFinished()

	jobCtx, cancel := p.jobContext(ctx)
	defer cancel()

	fn(jobCtx)

	return nil
}

func (p *Pool) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.jobTimeout > 0 {
		return context.WithTimeout(ctx, p.jobTimeout)
	}

	return context.WithCancel(ctx)
}

// Run calls fn for every job, at most MaxInFlight at a time, and returns when
// all of them are done. A job that could not start before ctx ended is
// handed to skipped together with the cause instead. fn and skipped may be
// called concurrently.
func Run[J any](ctx context.Context, p *Pool, jobs []J, fn func(context.Context, J), skipped func(J, error)) {
	var wg sync.WaitGroup
	for _, job := range jobs {
		// reserving here keeps the number of goroutines at MaxInFlight.
		if err := p.reserve(ctx); err != nil {
			skipped(job, err)

			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.runReserved(ctx, func(jobCtx context.Context) { fn(jobCtx, job) })
			if err != nil {
				skipped(job, err)
			}
		}()
	}
	wg.Wait()
}
