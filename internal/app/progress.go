package app

import (
	"regexp"
	"strconv"
)

// progressPattern matches yt-dlp's line-oriented progress output, e.g.
//
//	[download]  12.4% of 10.50MiB at 1.20MiB/s ETA 00:07
//
// Size, speed and ETA are optional so bare percent lines still count.
var progressPattern = regexp.MustCompile(
	`\[download\]\s+(\d+(?:\.\d+)?)%(?:\s+of\s+~?(\d+(?:\.\d+)?[KMGT]?i?B))?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

// lineProgress is one parsed progress sample
type lineProgress struct {
	Percent float64
	Size    string
	Speed   string
	ETA     string
}

// parseProgressLine extracts a progress sample from one raw output
// line. Non-matching lines report ok=false and are ignored for
// progress purposes.
func parseProgressLine(line string) (lineProgress, bool) {
	matches := progressPattern.FindStringSubmatch(line)
	if matches == nil {
		return lineProgress{}, false
	}

	percent, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return lineProgress{}, false
	}

	return lineProgress{
		Percent: percent,
		Size:    matches[2],
		Speed:   matches[3],
		ETA:     matches[4],
	}, true
}
