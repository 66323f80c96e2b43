package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
	colorStripe = lipgloss.Color("236")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text and key hints.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleWarning for status messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for failures.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleHeader        = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleHeaderFocused = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Underline(true).Padding(0, 1)
	styleCell          = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	styleCellStriped   = styleCell.Background(colorStripe)
	styleCellCursor    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	styleSkeleton      = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
	styleModal         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorCyan).Padding(1, 2)
)

const (
	iconAsc      = "▲"
	iconDesc     = "▼"
	iconToken    = "●"
	skeletonCell = "░░░░░░"
)

func sortIcon(o grid.Order) string {
	switch o {
	case grid.OrderAsc:
		return " " + iconAsc
	case grid.OrderDesc:
		return " " + iconDesc
	default:
		return ""
	}
}
