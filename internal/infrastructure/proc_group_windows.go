//go:build windows

package infrastructure

import "os/exec"

// setProcGroup is a no-op on windows; there is no setpgid equivalent
// usable here.
func setProcGroup(cmd *exec.Cmd) {}

// killProcGroup terminates the direct child only. Helper processes it
// spawned are not reached.
func killProcGroup(cmd *exec.Cmd) {
	cmd.Process.Kill()
}
