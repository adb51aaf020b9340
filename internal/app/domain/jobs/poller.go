// Package jobs drives fire-and-poll workflows against the platform's
// asynchronous job endpoints: submit once, then poll the status endpoint at
// a fixed interval until a terminal status, an attempt budget, or caller
// cancellation stops the loop.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	appmetrics "github.com/mxchestnut/workshelf-sub001/internal/app/observability/metrics"
)

// State of a poller. Terminal states are never left once reached.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateSucceeded
	StateNeedsReview
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateSucceeded:
		return "succeeded"
	case StateNeedsReview:
		return "needs_review"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Terminal reports whether the state ends the polling loop.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateNeedsReview, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// StatusClass buckets a server status string for the state machine.
type StatusClass int

const (
	ClassInProgress StatusClass = iota
	ClassSucceeded
	ClassNeedsReview
	ClassFailed
)

// Classifier maps a server-defined job status to a StatusClass. Unknown
// statuses must classify as in-progress so new server states do not break
// running pollers.
type Classifier func(models.JobStatus) StatusClass

// DefaultClassifier covers the statuses the platform backend emits today.
func DefaultClassifier(status models.JobStatus) StatusClass {
	switch status {
	case models.JobVerified, models.JobApproved, models.JobCompleted:
		return ClassSucceeded
	case models.JobNeedsReview:
		return ClassNeedsReview
	case models.JobFailed, models.JobRejected:
		return ClassFailed
	}
	return ClassInProgress
}

// SubmitFunc creates the server-side job and returns its initial state.
type SubmitFunc func(ctx context.Context) (*models.AsyncJob, error)

// StatusFunc reads the current state of a previously submitted job. Must be
// idempotent and safe to call repeatedly.
type StatusFunc func(ctx context.Context, id int64) (*models.AsyncJob, error)

// Options configures a Poller. Zero values fall back to the defaults the
// upload and export flows use.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	Classify    Classifier
	Logger      *zap.Logger
	// Kind labels metrics, e.g. "epub-verification" or "gdpr-export".
	Kind string
}

const (
	defaultInterval    = 5 * time.Second
	defaultMaxAttempts = 60
)

// AttemptsFor converts a desired wall-clock budget into an attempt count for
// the given interval, rounding up so the budget is never undershot.
func AttemptsFor(total, interval time.Duration) int {
	if interval <= 0 {
		return defaultMaxAttempts
	}
	n := int((total + interval - 1) / interval)
	if n < 1 {
		return 1
	}
	return n
}

// Result is the final word of a polling run.
type Result struct {
	State State
	Job   *models.AsyncJob
	Err   error
}

// Poller runs one job through submit-then-poll. A Poller is single-use;
// state only moves forward and a terminal state is never overwritten, even
// by a response that arrives after the loop has already finished.
type Poller struct {
	interval    time.Duration
	maxAttempts int
	classify    Classifier
	logger      *zap.Logger
	kind        string

	mu    sync.Mutex
	state State
	job   *models.AsyncJob
	err   error
}

func New(opts Options) *Poller {
	p := &Poller{
		interval:    opts.Interval,
		maxAttempts: opts.MaxAttempts,
		classify:    opts.Classify,
		logger:      opts.Logger,
		kind:        opts.Kind,
		state:       StateIdle,
	}
	if p.interval <= 0 {
		p.interval = defaultInterval
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = defaultMaxAttempts
	}
	if p.classify == nil {
		p.classify = DefaultClassifier
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// State returns the current state; safe to call concurrently with Run.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Job returns the most recent job snapshot, nil before submission succeeds.
func (p *Poller) Job() *models.AsyncJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}

// Run submits the job and polls until a terminal state, the attempt budget,
// or ctx cancellation. Blocking; callers that need the page flow to continue
// run it in a goroutine. On cancellation the current non-terminal state is
// returned with ctx's error and no further requests are issued.
func (p *Poller) Run(ctx context.Context, submit SubmitFunc, status StatusFunc) Result {
	p.setState(StateSubmitting)

	job, err := submit(ctx)
	if err != nil {
		p.finish(StateFailed, nil, err)
		return p.result()
	}
	p.setJob(job)

	// The creation response may already carry a terminal status (e.g. a
	// GDPR export that was served from a prior run). No poll is issued
	// at all in that case.
	if cls := p.classify(job.Status); cls != ClassInProgress {
		p.finish(stateFor(cls), job, nil)
		return p.result()
	}

	p.setState(StatePolling)
	l := p.logger.With(zap.String("kind", p.kind), zap.Int64("jobID", job.ID))

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if !p.waitTick(ctx) {
			return p.result()
		}

		p.countTick()
		updated, err := status(ctx, job.ID)
		if err != nil {
			if errors.Is(err, models.ErrUnauthenticated) {
				// The credential is dead; further polls are pointless.
				p.finish(StateFailed, p.Job(), err)
				return p.result()
			}
			// Transient blips are expected over a multi-minute window:
			// a failed tick is skipped but still spends the budget.
			l.Warn("Poll tick failed, skipping",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", p.maxAttempts),
				zap.Error(err))
			continue
		}

		if p.State().Terminal() {
			// Stale response after the loop already finished elsewhere.
			return p.result()
		}
		p.setJob(updated)

		if cls := p.classify(updated.Status); cls != ClassInProgress {
			p.finish(stateFor(cls), updated, nil)
			return p.result()
		}
		l.Debug("Job still in progress",
			zap.String("status", string(updated.Status)),
			zap.Int("attempt", attempt))
	}

	p.finish(StateTimedOut, p.Job(), models.ErrPollTimeout)
	return p.result()
}

// waitTick sleeps one interval, returning false when the caller cancelled.
// Cancellation is checked before scheduling the tick so an abandoned poller
// never issues another request.
func (p *Poller) waitTick(ctx context.Context) bool {
	if ctx.Err() != nil {
		p.mu.Lock()
		if p.err == nil {
			p.err = ctx.Err()
		}
		p.mu.Unlock()
		return false
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		p.mu.Lock()
		if p.err == nil {
			p.err = ctx.Err()
		}
		p.mu.Unlock()
		return false
	case <-timer.C:
		return true
	}
}

func stateFor(cls StatusClass) State {
	switch cls {
	case ClassSucceeded:
		return StateSucceeded
	case ClassNeedsReview:
		return StateNeedsReview
	case ClassFailed:
		return StateFailed
	}
	return StatePolling
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Terminal() {
		return
	}
	p.state = s
}

func (p *Poller) setJob(job *models.AsyncJob) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Terminal() {
		return
	}
	p.job = job
}

// finish moves to a terminal state exactly once; later calls are discarded
// so a stale response can never regress or rewrite the outcome.
func (p *Poller) finish(s State, job *models.AsyncJob, err error) {
	p.mu.Lock()
	if p.state.Terminal() {
		p.mu.Unlock()
		return
	}
	p.state = s
	if job != nil {
		p.job = job
	}
	p.err = err
	p.mu.Unlock()

	p.countOutcome(s)
	p.logger.Info("Polling finished",
		zap.String("kind", p.kind),
		zap.String("state", s.String()),
		zap.Error(err))
}

func (p *Poller) result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Result{State: p.state, Job: p.job, Err: p.err}
}

func (p *Poller) countTick() {
	if m := appmetrics.Get(); m != nil {
		m.PollTicksTotal.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", p.kind)))
	}
}

func (p *Poller) countOutcome(s State) {
	if m := appmetrics.Get(); m != nil {
		m.PollOutcomesTotal.Add(context.Background(), 1,
			metric.WithAttributes(
				attribute.String("kind", p.kind),
				attribute.String("outcome", s.String())))
	}
}
