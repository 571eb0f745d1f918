package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		want lineProgress
	}{
		{
			name: "full line",
			line: "[download]  12.4% of 10.50MiB at 1.20MiB/s ETA 00:07",
			ok:   true,
			want: lineProgress{Percent: 12.4, Size: "10.50MiB", Speed: "1.20MiB/s", ETA: "00:07"},
		},
		{
			name: "estimated size",
			line: "[download]   5.0% of ~120.00MiB at 800.12KiB/s ETA 02:31",
			ok:   true,
			want: lineProgress{Percent: 5.0, Size: "120.00MiB", Speed: "800.12KiB/s", ETA: "02:31"},
		},
		{
			name: "integer percent",
			line: "[download] 100% of 4.20MiB at 2.00MiB/s ETA 00:00",
			ok:   true,
			want: lineProgress{Percent: 100, Size: "4.20MiB", Speed: "2.00MiB/s", ETA: "00:00"},
		},
		{
			name: "bare percent",
			line: "[download]  42.1%",
			ok:   true,
			want: lineProgress{Percent: 42.1},
		},
		{
			name: "unknown speed",
			line: "[download]   0.0% of 10.00MiB at Unknown B/s ETA Unknown",
			ok:   true,
			want: lineProgress{Percent: 0.0, Size: "10.00MiB", Speed: "Unknown"},
		},
		{
			name: "destination line",
			line: "[download] Destination: video.mp4",
			ok:   false,
		},
		{
			name: "extractor chatter",
			line: "[youtube] abc: Downloading webpage",
			ok:   false,
		},
		{
			name: "merger line",
			line: "[Merger] Merging formats into \"video.mp4\"",
			ok:   false,
		},
		{
			name: "empty",
			line: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseProgressLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
