package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/mpvkit/mpvkit/color"
	"github.com/mpvkit/mpvkit/icon"
	"github.com/mpvkit/mpvkit/style"
)

// checkBinary verifies that the engine executable spawned by the ipc
// backend can be found.
func checkBinary(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		fmt.Println(missingBinaryMessage(binary))
		return fmt.Errorf("engine binary %q: %w", binary, err)
	}
	return nil
}

func missingBinaryMessage(binary string) string {
	var installCmd string
	switch runtime.GOOS {
	case "darwin":
		installCmd = "brew install mpv"
	case "linux":
		installCmd = "sudo apt install mpv"
	case "windows":
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(fmt.Sprintf("%s Missing engine", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The engine binary '%s' was not found in your PATH.", binary))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}
	suggestion += fmt.Sprintf("\n\nOr point %s at it.", style.Fg(color.Purple)("engine.binary"))

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, suggestion))
}
