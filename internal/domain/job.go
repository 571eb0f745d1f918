package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobState represents the current state of a download job
type JobState string

const (
	StateQueued    JobState = "queued"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Quality represents the requested video quality
type Quality string

const (
	QualityBest  Quality = "Best"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
)

// Format represents the requested container format
type Format string

const (
	FormatMP4  Format = "MP4"
	FormatMKV  Format = "MKV"
	FormatAVI  Format = "AVI"
	FormatWebM Format = "WebM"
)

// AdvancedOptions is the open options bag attached to a download request.
// New fields are additive; absent fields keep their zero value.
type AdvancedOptions struct {
	ExtractAudio      bool   `json:"extract_audio,omitempty"`
	DownloadSubtitles bool   `json:"download_subtitles,omitempty"`
	DownloadThumbnail bool   `json:"download_thumbnail,omitempty"`
	AutoStart         bool   `json:"auto_start,omitempty"`
	DestinationDir    string `json:"destination_dir,omitempty"`
	FilenamePrefix    string `json:"filename_prefix,omitempty"`
	PlaylistLimit     int    `json:"playlist_limit,omitempty"`
	StrictPlaylist    bool   `json:"strict_playlist,omitempty"`
}

// DownloadRequest describes one download to execute
type DownloadRequest struct {
	URL     string          `json:"url"`
	Quality Quality         `json:"quality"`
	Format  Format          `json:"format"`
	Options AdvancedOptions `json:"options"`
}

// Validate checks the request invariants. Unknown quality/format values
// are rejected, never coerced.
func (r *DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: url must not be empty", ErrValidation)
	}
	if !ValidateQuality(r.Quality) {
		return fmt.Errorf("%w: unknown quality %q", ErrValidation, r.Quality)
	}
	if !ValidateFormat(r.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrValidation, r.Format)
	}
	if r.Options.PlaylistLimit < 0 {
		return fmt.Errorf("%w: playlist limit must not be negative", ErrValidation)
	}
	return nil
}

// ValidateQuality checks if a quality is one of the enumerated values
func ValidateQuality(q Quality) bool {
	return q == QualityBest || q == Quality1080p || q == Quality720p || q == Quality480p
}

// ValidateFormat checks if a format is one of the enumerated values
func ValidateFormat(f Format) bool {
	return f == FormatMP4 || f == FormatMKV || f == FormatAVI || f == FormatWebM
}

// Job represents one download job tracked by the manager
type Job struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	URL          string    `json:"url" gorm:"not null;index"`
	Quality      Quality   `json:"quality" gorm:"not null"`
	Format       Format    `json:"format" gorm:"not null"`
	Options      string    `json:"-" gorm:"type:text"` // JSON-encoded AdvancedOptions
	State        JobState  `json:"state" gorm:"not null;index"`
	LastProgress float64   `json:"last_progress"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewJob creates a new job in the queued state
func NewJob(req DownloadRequest) *Job {
	opts, _ := json.Marshal(req.Options)
	return &Job{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Quality:   req.Quality,
		Format:    req.Format,
		Options:   string(opts),
		State:     StateQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Request reconstructs the download request this job was created from.
// Fails when the stored options payload does not decode, which only
// happens to rows corrupted outside the application.
func (j *Job) Request() (DownloadRequest, error) {
	var opts AdvancedOptions
	if j.Options != "" {
		if err := json.Unmarshal([]byte(j.Options), &opts); err != nil {
			return DownloadRequest{}, fmt.Errorf("malformed job options: %w", err)
		}
	}
	return DownloadRequest{
		URL:     j.URL,
		Quality: j.Quality,
		Format:  j.Format,
		Options: opts,
	}, nil
}

// MarkRunning transitions the job to running
func (j *Job) MarkRunning() {
	j.State = StateRunning
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkCompleted transitions the job to completed with full progress
func (j *Job) MarkCompleted() {
	j.State = StateCompleted
	j.LastProgress = 100.0
	now := time.Now()
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// MarkFailed transitions the job to failed with a reason
func (j *Job) MarkFailed(reason string) {
	j.State = StateFailed
	j.Reason = reason
	now := time.Now()
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// MarkCancelled transitions the job to cancelled
func (j *Job) MarkCancelled() {
	j.State = StateCancelled
	now := time.Now()
	j.FinishedAt = &now
	j.UpdatedAt = now
}

// AdvanceProgress updates the job's progress, clamping any value that
// would regress the monotonic invariant. Returns the published value.
func (j *Job) AdvanceProgress(percent float64) float64 {
	if percent < j.LastProgress {
		return j.LastProgress
	}
	if percent > 100.0 {
		percent = 100.0
	}
	j.LastProgress = percent
	j.UpdatedAt = time.Now()
	return percent
}

// IsTerminal checks if the job reached a final state
func (j *Job) IsTerminal() bool {
	return j.State == StateCompleted || j.State == StateFailed || j.State == StateCancelled
}

// JobStats represents aggregate job counts
type JobStats struct {
	Total     int64 `json:"total"`
	Queued    int64 `json:"queued"`
	Running   int64 `json:"running"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}
