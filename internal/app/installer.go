package app

import (
	"context"
	"sync"

	"github.com/vscraper/vscraper-go/internal/domain"
	"github.com/vscraper/vscraper-go/internal/events"
	"go.uber.org/zap"
)

// Installer verifies and installs the external tools on demand. Install
// outcomes are observed only through the event bus: exactly one outcome
// event per tool per InstallAll invocation, and a concurrent InstallAll
// joins the in-flight attempt instead of racing a second download
// against the same path.
type Installer struct {
	fetcher domain.ToolFetcher
	runner  domain.ProcessRunner
	store   *ConfigStore
	emitter *events.Emitter
	logger  *zap.Logger

	mu     sync.Mutex
	states map[domain.Tool]domain.InstallState
}

// NewInstaller creates a new installer
func NewInstaller(
	fetcher domain.ToolFetcher,
	runner domain.ProcessRunner,
	store *ConfigStore,
	emitter *events.Emitter,
	logger *zap.Logger,
) *Installer {
	states := make(map[domain.Tool]domain.InstallState)
	for _, tool := range domain.Tools() {
		states[tool] = domain.InstallNotInstalled
	}

	return &Installer{
		fetcher: fetcher,
		runner:  runner,
		store:   store,
		emitter: emitter,
		logger:  logger,
		states:  states,
	}
}

// States returns a snapshot of each tool's installation state
func (i *Installer) States() map[domain.Tool]domain.InstallState {
	i.mu.Lock()
	defer i.mu.Unlock()

	snapshot := make(map[domain.Tool]domain.InstallState, len(i.states))
	for tool, state := range i.states {
		snapshot[tool] = state
	}
	return snapshot
}

// InstallAll ensures both tools are installed. Fire-and-forget: it
// returns immediately and each tool's outcome arrives as one event on
// its install topic. Partial failure is two independent events.
func (i *Installer) InstallAll(ctx context.Context) {
	for _, tool := range domain.Tools() {
		go i.install(ctx, tool)
	}
}

// install drives one tool through its state machine. Only the goroutine
// that moves the state to Installing publishes the outcome; callers
// that find an install already in flight join it silently.
func (i *Installer) install(ctx context.Context, tool domain.Tool) {
	i.mu.Lock()
	switch i.states[tool] {
	case domain.InstallInstalling:
		i.mu.Unlock()
		i.logger.Debug("Install already in progress",
			zap.String("tool", string(tool)),
			zap.Error(domain.ErrAlreadyInProgress))
		return
	case domain.InstallInstalled:
		i.mu.Unlock()
		i.publishOutcome(tool, true)
		return
	}
	i.states[tool] = domain.InstallInstalling
	i.mu.Unlock()

	success := i.ensureInstalled(ctx, tool)

	i.mu.Lock()
	if success {
		i.states[tool] = domain.InstallInstalled
	} else {
		i.states[tool] = domain.InstallFailed
	}
	i.mu.Unlock()

	i.publishOutcome(tool, success)
}

// ensureInstalled checks presence, fetches when absent, and verifies
// the executable.
func (i *Installer) ensureInstalled(ctx context.Context, tool domain.Tool) bool {
	cfg := i.store.Get()
	path := cfg.Tools.PathFor(tool)

	if i.verify(ctx, tool, path) {
		i.logger.Info("Tool already installed",
			zap.String("tool", string(tool)),
			zap.String("path", path))
		return true
	}

	if err := i.fetcher.Fetch(ctx, tool, path); err != nil {
		i.logger.Error("Failed to fetch tool",
			zap.String("tool", string(tool)),
			zap.Error(err))
		return false
	}

	if !i.verify(ctx, tool, path) {
		i.logger.Error("Installed tool failed verification",
			zap.String("tool", string(tool)),
			zap.String("path", path))
		return false
	}

	i.logger.Info("Tool installed",
		zap.String("tool", string(tool)),
		zap.String("path", path))
	return true
}

// verify runs the executable with --version and drains its output
func (i *Installer) verify(ctx context.Context, tool domain.Tool, path string) bool {
	flag := "--version"
	if tool == domain.ToolFfmpeg {
		flag = "-version"
	}

	handle, err := i.runner.Spawn(ctx, path, flag)
	if err != nil {
		return false
	}

	for range handle.Lines() {
	}
	return handle.Wait().Success()
}

func (i *Installer) publishOutcome(tool domain.Tool, success bool) {
	topic := events.TopicYtdlpInstall
	if tool == domain.ToolFfmpeg {
		topic = events.TopicFfmpegInstall
	}
	i.emitter.Publish(topic, events.InstallOutcome{
		Tool:    string(tool),
		Success: success,
	})
}
