package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/gravity/pkg/timeline"
)

var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorBorder    = lipgloss.Color("#3F4451")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	ActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActiveTitleStyle = lipgloss.NewStyle().
				Foreground(ColorFgPrimary).
				Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	FeedbackStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

var segmentColors = map[timeline.SegmentKind]lipgloss.Color{
	timeline.SegmentFocus:   ColorRed,
	timeline.SegmentTrivial: ColorYellow,
	timeline.SegmentBreak:   ColorGreen,
	timeline.SegmentDirect:  ColorBlue,
}

func segmentStyle(kind timeline.SegmentKind) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(segmentColors[kind])
}
