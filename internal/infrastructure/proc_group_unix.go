//go:build !windows

package infrastructure

import (
	"os/exec"
	"syscall"
)

// setProcGroup puts the child in its own process group so a kill can
// reach the helpers it spawns (yt-dlp drives ffmpeg as a grandchild
// that inherits the output pipes).
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup signals the whole group. Falls back to the direct
// child when the group is already gone.
func killProcGroup(cmd *exec.Cmd) {
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		cmd.Process.Kill()
	}
}
