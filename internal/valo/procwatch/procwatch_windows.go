//go:build windows

package procwatch

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

func hidden(cmd *exec.Cmd) *exec.Cmd {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
	return cmd
}

// processRunning asks tasklist for an exact image-name match. tasklist
// prints an informational line instead of failing when nothing matches, so
// the output is checked for the name rather than the exit code.
func processRunning(processName string) bool {
	cmd := hidden(exec.Command("tasklist", "/NH", "/FI", fmt.Sprintf("IMAGENAME eq %s", processName)))
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(out)), strings.ToLower(processName))
}

func killProcess(processName string) error {
	cmd := hidden(exec.Command("taskkill", "/F", "/IM", processName))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %s: %s", processName, strings.TrimSpace(string(out)))
	}
	return nil
}

func launchDetached(path string) error {
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", path, err)
	}
	// The client outlives this process; don't wait on it.
	return cmd.Process.Release()
}
