package infrastructure

import (
	"fmt"
	"os/exec"

	"github.com/vscraper/vscraper-go/internal/domain"
	"github.com/vscraper/vscraper-go/internal/events"
	"go.uber.org/zap"
)

// NotificationService renders job and installer outcomes as desktop
// notifications. It is a plain subscriber of the event bus; the core
// never calls it directly.
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
	}
}

// Watch subscribes to terminal and installer events and notifies until
// the returned subscription is closed.
func (n *NotificationService) Watch(emitter *events.Emitter) *events.Subscription {
	sub := emitter.Subscribe(
		events.TopicJobDone,
		events.TopicFfmpegInstall,
		events.TopicYtdlpInstall,
	)

	go func() {
		for ev := range sub.C {
			switch payload := ev.Payload.(type) {
			case events.JobDone:
				n.notifyJobDone(payload)
			case events.InstallOutcome:
				n.notifyInstall(payload)
			}
		}
	}()

	return sub
}

func (n *NotificationService) notifyJobDone(done events.JobDone) {
	switch domain.JobState(done.State) {
	case domain.StateCompleted:
		n.Send("Download complete", done.URL)
	case domain.StateFailed:
		n.Send("Download failed", done.URL)
	case domain.StateCancelled:
		n.Send("Download cancelled", done.URL)
	}
}

func (n *NotificationService) notifyInstall(outcome events.InstallOutcome) {
	if outcome.Success {
		n.Send("Tool installed", outcome.Tool)
	} else {
		n.Send("Tool installation failed", outcome.Tool)
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.config.Method {
	case "osascript":
		return n.sendOSAScript(title, message)
	case "notify-send":
		return n.sendNotifySend(title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

// sendOSAScript sends notification using macOS osascript
func (n *NotificationService) sendOSAScript(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "osascript"),
			zap.Error(err))
		return err
	}

	return nil
}

// sendNotifySend sends notification using Linux notify-send
func (n *NotificationService) sendNotifySend(title, message string) error {
	cmd := exec.Command("notify-send", title, message)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "notify-send"),
			zap.Error(err))
		return err
	}

	return nil
}
