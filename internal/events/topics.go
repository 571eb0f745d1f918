package events

// Topic names published by the core. The UI subscribes by topic; names
// are part of the external contract and must stay stable.
const (
	TopicFfmpegInstall  = "ffmpeg_install"
	TopicYtdlpInstall   = "ytdlp_install"
	TopicURLSuccess     = "ytdlp_url_success"
	TopicDownloadUpdate = "ytdlp_download_update"
	TopicJobDone        = "ytdlp_job_done"
	TopicCancelDownload = "ytdlp_cancel_download"
)

// Topics lists every topic the core publishes to
func Topics() []string {
	return []string{
		TopicFfmpegInstall,
		TopicYtdlpInstall,
		TopicURLSuccess,
		TopicDownloadUpdate,
		TopicJobDone,
		TopicCancelDownload,
	}
}

// InstallOutcome is the payload for the install topics
type InstallOutcome struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
}

// URLSuccess is the payload for ytdlp_url_success
type URLSuccess struct {
	URL string `json:"url"`
}

// ProgressUpdate is the payload for ytdlp_download_update
type ProgressUpdate struct {
	JobID   string  `json:"job_id"`
	URL     string  `json:"url"`
	Percent float64 `json:"percent"`
	Size    string  `json:"size,omitempty"`
	Speed   string  `json:"speed,omitempty"`
	ETA     string  `json:"eta,omitempty"`
}

// JobDone is the terminal payload for ytdlp_job_done. Exactly one is
// published per job, always after every progress update for that job.
type JobDone struct {
	JobID   string  `json:"job_id"`
	URL     string  `json:"url"`
	State   string  `json:"state"`
	Percent float64 `json:"percent"`
	Reason  string  `json:"reason,omitempty"`
}
