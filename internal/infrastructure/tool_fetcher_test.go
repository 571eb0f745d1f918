package infrastructure

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscraper/vscraper-go/internal/domain"
)

func TestReleaseURL_Ytdlp(t *testing.T) {
	url, err := releaseURL(domain.ToolYtdlp)
	require.NoError(t, err)
	assert.Contains(t, url, "github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp")
	if runtime.GOOS == "windows" {
		assert.Contains(t, url, ".exe")
	}
}

func TestReleaseURL_Ffmpeg(t *testing.T) {
	suffix, supported := ffmpegSuffixes[runtime.GOOS+"/"+runtime.GOARCH]

	url, err := releaseURL(domain.ToolFfmpeg)
	if !supported {
		assert.Error(t, err)
		return
	}
	require.NoError(t, err)
	assert.Contains(t, url, "eugeneware/ffmpeg-static/releases/latest/download/ffmpeg-"+suffix)
}

func TestReleaseURL_UnknownTool(t *testing.T) {
	_, err := releaseURL("wget")
	assert.Error(t, err)
}
