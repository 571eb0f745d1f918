package domain

import "context"

// Tool identifies one of the external executables the core depends on
type Tool string

const (
	ToolYtdlp  Tool = "yt-dlp"  // download extractor
	ToolFfmpeg Tool = "ffmpeg"  // media converter
)

// Tools lists every managed tool
func Tools() []Tool {
	return []Tool{ToolYtdlp, ToolFfmpeg}
}

// InstallState represents the installation state of one tool.
// Transitions only move forward, except Failed -> Installing on retry.
type InstallState string

const (
	InstallNotInstalled InstallState = "not_installed"
	InstallInstalling   InstallState = "installing"
	InstallInstalled    InstallState = "installed"
	InstallFailed       InstallState = "failed"
)

// ToolFetcher downloads a tool binary and makes it executable at the
// destination path.
type ToolFetcher interface {
	Fetch(ctx context.Context, tool Tool, destPath string) error
}
