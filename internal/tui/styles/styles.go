package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	FrameBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	ActiveFrameBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Amber).
				Padding(0, 1)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	TimecodeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(SlateLight).
			Bold(true).
			Padding(0, 1)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Amber).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Strip styles for cached range bars
var (
	VideoCachedStyle = lipgloss.NewStyle().Foreground(Blue)
	AudioCachedStyle = lipgloss.NewStyle().Foreground(Green)
	InOutStyle       = lipgloss.NewStyle().Foreground(Amber)
	EmptyStripStyle  = lipgloss.NewStyle().Foreground(SlateLight)
	PlayheadStyle    = lipgloss.NewStyle().Foreground(White).Bold(true)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// Span is a half-open interval [Start, End) in strip coordinates
type Span struct {
	Start, End float64
}

// StripCells marks which of width cells are covered by spans over a total
// length. A cell counts as covered when any span overlaps it.
func StripCells(spans []Span, total float64, width int) []bool {
	cells := make([]bool, max(width, 0))
	if total <= 0 || width <= 0 {
		return cells
	}
	scale := float64(width) / total
	for _, s := range spans {
		first := max(0, int(s.Start*scale))
		last := min(width-1, int((s.End*scale)-1e-9))
		for i := first; i <= last; i++ {
			cells[i] = true
		}
	}
	return cells
}

// RenderStrip renders covered cells with full blocks in style and the rest
// as a dim track. playhead is a cell index, or -1 for none.
func RenderStrip(cells []bool, style lipgloss.Style, playhead int) string {
	var b strings.Builder
	for i, covered := range cells {
		switch {
		case i == playhead:
			b.WriteString(PlayheadStyle.Render("│"))
		case covered:
			b.WriteString(style.Render("█"))
		default:
			b.WriteString(EmptyStripStyle.Render("░"))
		}
	}
	return b.String()
}
