package style

import "github.com/charmbracelet/lipgloss"

var (
	Text    = lipgloss.Color("#cdd6f4")
	Subtext = lipgloss.Color("#a6adc8")
	Overlay = lipgloss.Color("#6c7086")
	Surface = lipgloss.Color("#313244")

	Mauve = lipgloss.Color("#cba6f7")
	Red   = lipgloss.Color("#f38ba8")
	Peach = lipgloss.Color("#fab387")
	Green = lipgloss.Color("#a6e3a1")
	Blue  = lipgloss.Color("#89b4fa")

	AccentColor  = Mauve
	SuccessColor = Green
	WarningColor = Peach
	ErrorColor   = Red
	FaintColor   = Overlay
)
