package domain

import "context"

// ExitState describes how an external process ended
type ExitState struct {
	Code   int  // exit code, -1 when unavailable
	Killed bool // true when the process was terminated by Kill
}

// Success reports whether the process exited normally with code 0
func (e ExitState) Success() bool {
	return !e.Killed && e.Code == 0
}

// ProcessHandle exposes the lifecycle of one spawned external process.
// Lines delivers stdout lines in write order and is closed when the
// process exits; the sequence is consumed once and never restarted.
type ProcessHandle interface {
	// Lines returns the ordered stdout line stream
	Lines() <-chan string

	// Wait blocks until the process exits and returns its exit state
	Wait() ExitState

	// StderrTail returns the captured tail of the error stream. Only
	// meaningful after Wait returns.
	StderrTail() string

	// Kill requests termination. Idempotent; killing an exited or
	// already-killed process is a no-op.
	Kill()
}

// ProcessRunner launches external executables. The job manager and the
// installer depend on this narrow interface so tests can inject a fake.
type ProcessRunner interface {
	// Spawn starts the executable with the given arguments. Returns an
	// error wrapping ErrSpawn when the executable is missing or not
	// invocable.
	Spawn(ctx context.Context, executable string, args ...string) (ProcessHandle, error)
}
