//go:build !windows

package procwatch

import (
	"fmt"
	"os/exec"
)

func processRunning(processName string) bool {
	// pgrep exits 1 when nothing matches.
	return exec.Command("pgrep", "-x", processName).Run() == nil
}

func killProcess(processName string) error {
	if err := exec.Command("pkill", "-x", processName).Run(); err != nil {
		return fmt.Errorf("pkill %s: %w", processName, err)
	}
	return nil
}

func launchDetached(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	return cmd.Process.Release()
}
