package app

import (
	"path/filepath"
	"strconv"

	"github.com/vscraper/vscraper-go/internal/domain"
)

// formatSelectors maps the request quality to a yt-dlp format selector
var formatSelectors = map[domain.Quality]string{
	domain.QualityBest:  "bestvideo+bestaudio/best",
	domain.Quality1080p: "bestvideo[height<=1080]+bestaudio/best",
	domain.Quality720p:  "bestvideo[height<=720]+bestaudio/best",
	domain.Quality480p:  "bestvideo[height<=480]+bestaudio/best",
}

// containerNames maps the request format to a yt-dlp merge container
var containerNames = map[domain.Format]string{
	domain.FormatMP4:  "mp4",
	domain.FormatMKV:  "mkv",
	domain.FormatAVI:  "avi",
	domain.FormatWebM: "webm",
}

// BuildDownloadArgs derives the yt-dlp invocation for a request.
// --newline keeps progress output line-oriented for the parser.
func BuildDownloadArgs(req domain.DownloadRequest, cfg *domain.Config) []string {
	args := []string{
		"--newline",
		"--ffmpeg-location", cfg.Tools.FfmpegPath,
	}

	if cfg.Download.RateLimit != "" {
		args = append(args, "--limit-rate", cfg.Download.RateLimit)
	}

	opts := req.Options

	if opts.ExtractAudio {
		args = append(args, "-x", "--audio-format", "best")
	} else {
		args = append(args,
			"--format", formatSelectors[req.Quality],
			"--merge-output-format", containerNames[req.Format])
	}

	if opts.DownloadSubtitles {
		args = append(args, "--write-subs")
	}
	if opts.DownloadThumbnail {
		args = append(args, "--write-thumbnail")
	}

	if opts.StrictPlaylist {
		args = append(args, "--yes-playlist")
		if opts.PlaylistLimit > 0 {
			args = append(args, "--playlist-end", strconv.Itoa(opts.PlaylistLimit))
		}
	} else {
		args = append(args, "--no-playlist")
	}

	destDir := opts.DestinationDir
	if destDir == "" {
		destDir = cfg.Download.BaseDir
	}
	args = append(args, "-P", destDir)

	template := "%(title)s.%(ext)s"
	if opts.FilenamePrefix != "" {
		template = opts.FilenamePrefix + template
	}
	args = append(args, "-o", filepath.ToSlash(template))

	args = append(args, req.URL)
	return args
}

// BuildProbeArgs derives the pre-download URL check invocation
func BuildProbeArgs(url string, cfg *domain.Config) []string {
	return []string{
		"--simulate",
		"--ffmpeg-location", cfg.Tools.FfmpegPath,
		url,
	}
}
