// ABOUTME: Process handling fallback for platforms without process groups
// ABOUTME: Kills only the direct child process

//go:build !unix

package handle

import "os/exec"

func setProcGroup(*exec.Cmd) {}

func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
