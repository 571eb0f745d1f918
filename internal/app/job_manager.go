package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vscraper/vscraper-go/internal/domain"
	"github.com/vscraper/vscraper-go/internal/events"
	"github.com/vscraper/vscraper-go/pkg/logger"
	"go.uber.org/zap"
)

// activeJob tracks one non-terminal job and the process backing it
type activeJob struct {
	job        *domain.Job
	handle     domain.ProcessHandle
	cancelled  bool // caller-initiated kill issued
	idleKilled bool // watchdog kill issued after a silent interval
}

// JobManager accepts download requests, drives the process runner,
// parses progress out of the tool's streamed output, and exposes
// cancellation keyed by URL. At most one active job exists per URL; the
// URL index is the single piece of shared mutable state and every
// mutation of it is serialized behind mu.
type JobManager struct {
	repo        domain.JobRepository
	runner      domain.ProcessRunner
	store       *ConfigStore
	emitter     *events.Emitter
	multiLogger *logger.MultiLogger

	// baseCtx outlives any individual request; job execution runs under
	// it so a download survives the HTTP call that submitted it.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu     sync.Mutex
	active map[string]*activeJob
	wg     sync.WaitGroup
}

// NewJobManager creates a new job manager
func NewJobManager(
	repo domain.JobRepository,
	runner domain.ProcessRunner,
	store *ConfigStore,
	emitter *events.Emitter,
	multiLogger *logger.MultiLogger,
) *JobManager {
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &JobManager{
		repo:        repo,
		runner:      runner,
		store:       store,
		emitter:     emitter,
		multiLogger: multiLogger,
		baseCtx:     baseCtx,
		baseCancel:  baseCancel,
		active:      make(map[string]*activeJob),
	}
}

// Submit validates the request and accepts it as a new queued job. The
// job moves to running asynchronously; Submit never blocks on the
// external process. Returns ErrDuplicateActiveJob while a non-terminal
// job exists for the same URL.
//
// The caller's context covers acceptance only. Execution runs under
// the manager's own lifecycle context, so cancelling the submitting
// request (a returning HTTP handler, for instance) does not kill the
// download.
func (m *JobManager) Submit(ctx context.Context, req domain.DownloadRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	if _, exists := m.active[req.URL]; exists {
		m.mu.Unlock()
		return "", fmt.Errorf("%w: %s", domain.ErrDuplicateActiveJob, req.URL)
	}

	job := domain.NewJob(req)
	aj := &activeJob{job: job}
	m.active[req.URL] = aj
	m.mu.Unlock()

	if err := m.repo.Create(job); err != nil {
		m.mu.Lock()
		delete(m.active, req.URL)
		m.mu.Unlock()
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	if m.multiLogger != nil {
		m.multiLogger.LogJobEvent("job_accepted",
			zap.String("id", job.ID),
			zap.String("url", job.URL))
	}

	m.wg.Add(1)
	go m.run(aj)

	return job.ID, nil
}

// Cancel looks up the active job for the URL and requests termination.
// Returns false when no active job exists; cancelling a finished or
// unknown URL is a benign no-op. When the natural exit event was
// already queued before the kill request, the exit outcome wins.
func (m *JobManager) Cancel(url string) bool {
	m.mu.Lock()
	aj, exists := m.active[url]
	if !exists {
		m.mu.Unlock()
		return false
	}
	aj.cancelled = true
	handle := aj.handle
	m.mu.Unlock()

	if handle != nil {
		handle.Kill()
	}

	if m.multiLogger != nil {
		m.multiLogger.LogJobEvent("job_cancel_requested",
			zap.String("id", aj.job.ID),
			zap.String("url", url))
	}

	m.emitter.Publish(events.TopicCancelDownload, true)
	return true
}

// GetJob retrieves a job by ID
func (m *JobManager) GetJob(id string) (*domain.Job, error) {
	return m.repo.FindByID(id)
}

// ListJobs lists all jobs with optional filters
func (m *JobManager) ListJobs(filters map[string]interface{}) ([]*domain.Job, error) {
	return m.repo.FindAll(filters)
}

// GetStats returns aggregate job counts
func (m *JobManager) GetStats() (*domain.JobStats, error) {
	return m.repo.GetStats()
}

// ActiveCount returns the number of non-terminal jobs
func (m *JobManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Wait blocks until every accepted job has reached a terminal state.
// Used by shutdown and tests.
func (m *JobManager) Wait() {
	m.wg.Wait()
}

// Shutdown kills every in-flight process and waits for the jobs to
// settle their terminal events. No new work runs afterwards.
func (m *JobManager) Shutdown() {
	m.baseCancel()

	m.mu.Lock()
	handles := make([]domain.ProcessHandle, 0, len(m.active))
	for _, aj := range m.active {
		if aj.handle != nil {
			handles = append(handles, aj.handle)
		}
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Kill()
	}
	m.wg.Wait()
}

// run executes one job from queued to terminal. It is the only writer
// of the job's state after acceptance and always publishes exactly one
// terminal event, after the last progress event.
func (m *JobManager) run(aj *activeJob) {
	defer m.wg.Done()

	job := aj.job
	cfg := m.store.Get()

	// A cancel can land before the process is spawned.
	if m.consumeCancelled(aj, nil) {
		m.finish(aj, domain.StateCancelled, "")
		return
	}

	req, err := job.Request()
	if err != nil {
		m.finish(aj, domain.StateFailed, err.Error())
		return
	}

	m.probeURL(m.baseCtx, job, &cfg)

	handle, err := m.runner.Spawn(m.baseCtx, cfg.Tools.YtdlpPath, BuildDownloadArgs(req, &cfg)...)
	if err != nil {
		m.finish(aj, domain.StateFailed, err.Error())
		return
	}

	if m.consumeCancelled(aj, handle) {
		// Kill was requested while spawning; the handle was not
		// registered yet, so issue it now and let Wait settle below.
		handle.Kill()
	}

	job.MarkRunning()
	if err := m.repo.Update(job); err != nil && m.multiLogger != nil {
		m.multiLogger.LogAppError("Failed to update job state", zap.Error(err))
	}

	m.streamProgress(aj, handle, cfg.Download.IdleTimeout)

	exit := handle.Wait()
	m.settle(aj, exit, handle.StderrTail())
}

// probeURL runs the pre-download availability check. A reachable URL
// publishes ytdlp_url_success; an unreachable one only logs, the
// download attempt itself produces the authoritative failure.
func (m *JobManager) probeURL(ctx context.Context, job *domain.Job, cfg *domain.Config) {
	handle, err := m.runner.Spawn(ctx, cfg.Tools.YtdlpPath, BuildProbeArgs(job.URL, cfg)...)
	if err != nil {
		if m.multiLogger != nil {
			m.multiLogger.LogAppError("URL probe spawn failed",
				zap.String("url", job.URL),
				zap.Error(err))
		}
		return
	}

	for range handle.Lines() {
	}

	if handle.Wait().Success() {
		m.emitter.Publish(events.TopicURLSuccess, events.URLSuccess{URL: job.URL})
	} else if m.multiLogger != nil {
		m.multiLogger.LogJobEvent("url_probe_failed",
			zap.String("id", job.ID),
			zap.String("url", job.URL))
	}
}

// streamProgress consumes the process output until it ends, publishing
// monotonic progress updates. When idleTimeout is non-zero, a process
// that stays silent for the whole interval is killed.
func (m *JobManager) streamProgress(aj *activeJob, handle domain.ProcessHandle, idleTimeout time.Duration) {
	job := aj.job

	var idle *time.Timer
	var idleC <-chan time.Time
	if idleTimeout > 0 {
		idle = time.NewTimer(idleTimeout)
		defer idle.Stop()
		idleC = idle.C
	}

	for {
		select {
		case line, ok := <-handle.Lines():
			if !ok {
				return
			}
			if idle != nil {
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(idleTimeout)
			}

			progress, ok := parseProgressLine(line)
			if !ok {
				continue
			}

			percent := job.AdvanceProgress(progress.Percent)
			m.emitter.Publish(events.TopicDownloadUpdate, events.ProgressUpdate{
				JobID:   job.ID,
				URL:     job.URL,
				Percent: percent,
				Size:    progress.Size,
				Speed:   progress.Speed,
				ETA:     progress.ETA,
			})

		case <-idleC:
			if m.multiLogger != nil {
				m.multiLogger.LogJobEvent("job_idle_timeout",
					zap.String("id", job.ID),
					zap.Duration("timeout", idleTimeout))
			}
			m.mu.Lock()
			aj.idleKilled = true
			m.mu.Unlock()
			handle.Kill()
			// Drain the remaining lines so the exit can be reaped.
			for range handle.Lines() {
			}
			return
		}
	}
}

// settle classifies the exit and finishes the job. The rule is
// deterministic: a kill-induced exit with a pending cancel ends
// Cancelled; a natural exit always keeps its own outcome even when a
// cancel raced it.
func (m *JobManager) settle(aj *activeJob, exit domain.ExitState, stderrTail string) {
	m.mu.Lock()
	cancelled := aj.cancelled
	idleKilled := aj.idleKilled
	m.mu.Unlock()

	switch {
	case exit.Killed && cancelled:
		m.finish(aj, domain.StateCancelled, "")
	case exit.Killed && idleKilled:
		m.finish(aj, domain.StateFailed, fmt.Sprintf("%v: no output for idle interval", domain.ErrProcessTerminated))
	case exit.Killed:
		// Externally signalled death (OOM kill, crash) without a cancel.
		m.finish(aj, domain.StateFailed, domain.ErrProcessTerminated.Error())
	case exit.Code == 0:
		m.finish(aj, domain.StateCompleted, "")
	case exit.Code < 0:
		m.finish(aj, domain.StateFailed, domain.ErrProcessTerminated.Error())
	default:
		reason := stderrTail
		if reason == "" {
			reason = fmt.Sprintf("yt-dlp exited with code %d", exit.Code)
		}
		m.finish(aj, domain.StateFailed, reason)
	}
}

// finish moves the job to its terminal state, releases the URL, and
// publishes the terminal event last.
func (m *JobManager) finish(aj *activeJob, state domain.JobState, reason string) {
	job := aj.job

	switch state {
	case domain.StateCompleted:
		job.MarkCompleted()
	case domain.StateCancelled:
		job.MarkCancelled()
	default:
		job.MarkFailed(reason)
	}

	m.mu.Lock()
	delete(m.active, job.URL)
	m.mu.Unlock()

	if err := m.repo.Update(job); err != nil && m.multiLogger != nil {
		m.multiLogger.LogAppError("Failed to update job state", zap.Error(err))
	}

	if m.multiLogger != nil {
		m.multiLogger.LogJobEvent("job_finished",
			zap.String("id", job.ID),
			zap.String("url", job.URL),
			zap.String("state", string(job.State)),
			zap.String("reason", job.Reason))
	}

	m.emitter.Publish(events.TopicJobDone, events.JobDone{
		JobID:   job.ID,
		URL:     job.URL,
		State:   string(job.State),
		Percent: job.LastProgress,
		Reason:  job.Reason,
	})
}

// consumeCancelled reports whether a cancel was requested, registering
// the handle for later kills when one is provided.
func (m *JobManager) consumeCancelled(aj *activeJob, handle domain.ProcessHandle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if handle != nil {
		aj.handle = handle
	}
	return aj.cancelled
}
