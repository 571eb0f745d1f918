package infrastructure

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/vscraper/vscraper-go/internal/domain"
	"go.uber.org/zap"
)

// stderrTailLines bounds the captured error stream carried into a
// failure reason.
const stderrTailLines = 20

// ExecProcessRunner implements domain.ProcessRunner on os/exec
type ExecProcessRunner struct {
	logger *zap.Logger
}

// NewExecProcessRunner creates a new process runner
func NewExecProcessRunner(logger *zap.Logger) *ExecProcessRunner {
	return &ExecProcessRunner{logger: logger}
}

// Spawn starts the executable and begins streaming its stdout lines.
// Note: exec.Command passes args directly to the process, no shell
// quoting needed.
func (r *ExecProcessRunner) Spawn(ctx context.Context, executable string, args ...string) (domain.ProcessHandle, error) {
	cmd := exec.CommandContext(ctx, executable, args...)
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		killProcGroup(cmd)
		return nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSpawn, executable, err)
	}

	if r.logger != nil {
		r.logger.Debug("Spawned process",
			zap.String("cmd", ShellQuoteCommand(executable, args...)),
			zap.Int("pid", cmd.Process.Pid))
	}

	h := &execHandle{
		cmd:   cmd,
		lines: make(chan string, 16),
		done:  make(chan struct{}),
	}

	// Stderr tail collector. Runs to EOF before Wait is allowed to
	// close the pipes.
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			h.mu.Lock()
			h.errTail = append(h.errTail, scanner.Text())
			if len(h.errTail) > stderrTailLines {
				h.errTail = h.errTail[1:]
			}
			h.mu.Unlock()
		}
	}()

	// Stdout line pump. Lines are forwarded in write order; the channel
	// closes when the process closes its end.
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(h.lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			h.lines <- scanner.Text()
		}
	}()

	// Reaper: waits for the process exactly once and records the exit.
	go func() {
		h.wg.Wait()
		err := cmd.Wait()

		h.mu.Lock()
		defer h.mu.Unlock()
		h.exited = true
		h.exit = domain.ExitState{Code: cmd.ProcessState.ExitCode(), Killed: h.killed}
		if err != nil && h.exit.Code == -1 {
			// Died to a signal without an exit code.
			h.exit.Killed = h.exit.Killed || strings.Contains(err.Error(), "signal")
		}
		close(h.done)
	}()

	return h, nil
}

// execHandle implements domain.ProcessHandle for a started exec.Cmd
type execHandle struct {
	cmd   *exec.Cmd
	lines chan string
	done  chan struct{}
	wg    sync.WaitGroup

	mu       sync.Mutex
	errTail  []string
	killed   bool
	exited   bool
	exit     domain.ExitState
	killOnce sync.Once
}

func (h *execHandle) Lines() <-chan string {
	return h.lines
}

func (h *execHandle) Wait() domain.ExitState {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exit
}

func (h *execHandle) StderrTail() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return strings.Join(h.errTail, "\n")
}

// Kill sends a termination request to the whole process group, so
// pipeline helpers holding the output pipes die with the tool and the
// line stream ends promptly. Calling it after exit, or twice, is a
// no-op.
func (h *execHandle) Kill() {
	h.killOnce.Do(func() {
		h.mu.Lock()
		if h.exited {
			h.mu.Unlock()
			return
		}
		h.killed = true
		h.mu.Unlock()

		killProcGroup(h.cmd)
	})
}
