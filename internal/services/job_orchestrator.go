package services

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/platform/metrics"
	"delivery-insertion-planner/internal/platform/obs"
	"delivery-insertion-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

type JobState string

const (
	JobIdle       JobState = "IDLE"
	JobSubmitting JobState = "SUBMITTING"
	JobPolling    JobState = "POLLING"
	JobStopping   JobState = "STOPPING"
	JobSucceeded  JobState = "SUCCEEDED"
	JobFailed     JobState = "FAILED"
)

// InFlight reports whether a job is between submission and a terminal status.
func (s JobState) InFlight() bool {
	return s == JobSubmitting || s == JobPolling || s == JobStopping
}

var (
	ErrJobInFlight = errors.New("an optimization is already running")
	ErrJobFailed   = errors.New("optimization failed")
	ErrNoJobID     = errors.New("no optimization id found")
	ErrPollTimeout = errors.New("optimization did not finish in time")
)

const (
	DefaultPollInterval = time.Second
	stopRequestTimeout  = 10 * time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// JobSnapshot is the externally visible state of the orchestrator.
type JobSnapshot struct {
	State  JobState `json:"state"`
	JobID  string   `json:"job_id,omitempty"`
	Status string   `json:"status,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type OrchestratorOptions struct {
	// Delay between status polls. Defaults to one second.
	PollInterval time.Duration
	// Upper bound on the whole job. Zero polls until a terminal status.
	MaxWait  time.Duration
	Sleep    Sleeper
	Now      func() time.Time
	Progress ports.ProgressReporter
}

type RunOptions struct {
	// Ask the service to stop as soon as every order is scheduled.
	StopWhenFullyScheduled bool
	// Runs on a successful terminal status before the job leaves the
	// in-flight states. An error fails the job.
	OnSuccess func(*domain.OptimizationResult) error
}

// Orchestrator drives a single optimization job from submission to a
// terminal status: SUBMITTING -> POLLING -> {SUCCEEDED, FAILED,
// STOPPING -> SUCCEEDED}. Only one job may be in flight at a time.
//
// Polls are strictly sequential: the next poll is scheduled only after the
// previous response has been processed. Early-stop requests run in the
// background and are never waited on.
type Orchestrator struct {
	service ports.OptimizationService
	opts    OrchestratorOptions

	mu       sync.Mutex
	snapshot JobSnapshot
}

func NewOrchestrator(service ports.OptimizationService, opts OrchestratorOptions) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		service:  service,
		opts:     opts,
		snapshot: JobSnapshot{State: JobIdle},
	}
}

// Snapshot returns the current job state.
func (o *Orchestrator) Snapshot() JobSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

// InFlight reports whether a job is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.Snapshot().State.InFlight()
}

// Run submits req and blocks until the job reaches a terminal status.
// Cancelling ctx ends polling; it does not stop the remote job.
func (o *Orchestrator) Run(
	ctx context.Context,
	req *domain.OptimizationRequest,
	ro RunOptions,
) (*domain.OptimizationResult, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	return o.run(ctx, req, ro)
}

// Start reserves the orchestrator and runs the job in the background,
// delivering the outcome to done. It returns ErrJobInFlight synchronously.
func (o *Orchestrator) Start(
	ctx context.Context,
	req *domain.OptimizationRequest,
	ro RunOptions,
	done func(*domain.OptimizationResult, error),
) error {
	if err := o.begin(); err != nil {
		return err
	}

	go func() {
		result, err := o.run(ctx, req, ro)
		if done != nil {
			done(result, err)
		}
	}()

	return nil
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.snapshot.State.InFlight() {
		metrics.OptimizationJobs.WithLabelValues("rejected").Inc()
		return fmt.Errorf("start optimization: job %s is %s: %w", o.snapshot.JobID, o.snapshot.State, ErrJobInFlight)
	}
	o.snapshot = JobSnapshot{State: JobSubmitting}
	log.Printf("op=optimization state=%s", JobSubmitting)

	return nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	req *domain.OptimizationRequest,
	ro RunOptions,
) (_ *domain.OptimizationResult, err error) {
	started := o.opts.Now()

	jobID, err := o.service.Submit(ctx, req)
	if err != nil {
		return nil, o.fail("", "submit", fmt.Errorf("run optimization: submit: %w", err))
	}
	if jobID == "" {
		return nil, o.fail("", "submit", fmt.Errorf("run optimization: %w", ErrNoJobID))
	}
	ctx = obs.WithJobID(ctx, jobID)
	o.transition(JobPolling, jobID, "")

	stopping := false
	requestStop := func() {
		stopping = true
		go o.requestStop(ctx, jobID)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(jobID, "canceled", fmt.Errorf("run optimization: job %s: %w", jobID, err))
		}

		status, err := o.service.GetStatus(ctx, jobID)
		if err != nil {
			return nil, o.fail(jobID, "transport", fmt.Errorf("run optimization: job %s: get status: %w", jobID, err))
		}
		metrics.OptimizationPolls.WithLabelValues(status.Status).Inc()

		if status.Terminal() {
			metrics.OptimizationDuration.Observe(o.opts.Now().Sub(started).Seconds())

			if status.Status == domain.JobStatusFailed {
				desc := status.Description
				if desc == "" {
					desc = "service reported FAILED"
				}
				return nil, o.fail(jobID, "failed", fmt.Errorf("run optimization: job %s: %s: %w", jobID, desc, ErrJobFailed))
			}

			if ro.OnSuccess != nil {
				if err := ro.OnSuccess(status); err != nil {
					return nil, o.fail(jobID, "invalid_result", fmt.Errorf("run optimization: job %s: apply result: %w", jobID, err))
				}
			}

			o.transition(JobSucceeded, jobID, status.Status)
			metrics.OptimizationJobs.WithLabelValues("succeeded").Inc()
			o.report(ctx, jobID, status)
			return status, nil
		}

		if ro.StopWhenFullyScheduled && !stopping && status.FullyScheduled() {
			o.transition(JobStopping, jobID, status.Status)
			requestStop()
		} else {
			o.transition(o.Snapshot().State, jobID, status.Status)
		}
		o.report(ctx, jobID, status)

		if o.opts.MaxWait > 0 && o.opts.Now().Sub(started) >= o.opts.MaxWait {
			if !stopping {
				requestStop()
			}
			return nil, o.fail(jobID, "timeout", fmt.Errorf("run optimization: job %s after %s: %w", jobID, o.opts.MaxWait, ErrPollTimeout))
		}

		if err := o.opts.Sleep(ctx, o.opts.PollInterval); err != nil {
			return nil, o.fail(jobID, "canceled", fmt.Errorf("run optimization: job %s: %w", jobID, err))
		}
	}
}

// requestStop asks the service to end the job early; the outcome only matters
// for logs. It is bounded by its own timeout, not by the job.
func (o *Orchestrator) requestStop(ctx context.Context, jobID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopRequestTimeout)
	defer cancel()

	if err := o.service.Stop(ctx, jobID); err != nil {
		metrics.OptimizationStops.WithLabelValues("error").Inc()
		log.Printf("op=optimization.stop job_id=%s err=%v", jobID, err)
		return
	}
	metrics.OptimizationStops.WithLabelValues("sent").Inc()
	log.Printf("op=optimization.stop job_id=%s", jobID)
}

func (o *Orchestrator) transition(state JobState, jobID, status string) {
	o.mu.Lock()
	prev := o.snapshot
	o.snapshot = JobSnapshot{State: state, JobID: jobID, Status: status}
	o.mu.Unlock()

	if prev.State != state || prev.Status != status {
		log.Printf("op=optimization job_id=%s state=%s status=%s", jobID, state, status)
	}
}

func (o *Orchestrator) fail(jobID, outcome string, err error) error {
	o.mu.Lock()
	o.snapshot = JobSnapshot{State: JobFailed, JobID: jobID, Status: o.snapshot.Status, Error: err.Error()}
	o.mu.Unlock()

	metrics.OptimizationJobs.WithLabelValues(outcome).Inc()
	log.Printf("op=optimization job_id=%s state=%s err=%v", jobID, JobFailed, err)

	if o.opts.Progress != nil {
		o.opts.Progress.Report(context.Background(), ports.Progress{
			JobID:   jobID,
			State:   string(JobFailed),
			Message: err.Error(),
		})
	}
	return err
}

func (o *Orchestrator) report(ctx context.Context, jobID string, status *domain.OptimizationResult) {
	if o.opts.Progress == nil {
		return
	}

	p := ports.Progress{
		JobID:  jobID,
		State:  string(o.Snapshot().State),
		Status: status.Status,
	}
	if status.Metrics != nil {
		p.Unscheduled = status.Metrics.NumberOfUnscheduledOrders
	}
	o.opts.Progress.Report(ctx, p)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
