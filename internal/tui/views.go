package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
	"github.com/mmcdole/reel/internal/tui/styles"
)

const stripLabelWidth = 7

// View renders the viewer
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	sections := []string{
		m.renderHeader(),
		m.renderFrame(),
		m.renderStrips(),
		m.renderCache(),
		m.renderAudio(),
	}
	if m.StatusMsg != "" {
		style := styles.SuccessStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		sections = append(sections, style.Render(m.StatusMsg))
	}
	sections = append(sections, m.help.View(Keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	p := m.Player
	playback := p.Playback().Get()
	badge := styles.DimBadgeStyle
	if playback != domain.Stop {
		badge = styles.BadgeStyle
	}
	return strings.Join([]string{
		styles.TitleStyle.Render("reel"),
		styles.SubtitleStyle.Render(m.Preset),
		styles.TimecodeStyle.Render(p.CurrentTime().Get().String()),
		badge.Render(playback.String()),
		styles.DimBadgeStyle.Render(p.Loop().Get().String()),
		styles.DimStyle.Render(fmt.Sprintf("%.2f fps", p.Speed().Get())),
	}, " ")
}

func (m Model) renderFrame() string {
	p := m.Player
	label := styles.DimStyle.Render("no frame")
	if v := p.CurrentVideo().Get(); v != nil && !v.Empty() {
		label = frameLabel(v)
	}
	layer := fmt.Sprintf("layer %d/%d", p.VideoLayer().Get()+1, len(p.AVInfo().Video))
	border := styles.FrameBorder
	if p.Playback().Get() != domain.Stop {
		border = styles.ActiveFrameBorder
	}
	width := max(20, m.Width-4)
	return border.Width(width).Render(label + "\n" + styles.DimStyle.Render(layer))
}

func frameLabel(v *domain.VideoData) string {
	var parts []string
	for _, l := range v.Layers {
		if l.Image == nil {
			continue
		}
		text := l.Image.Label
		if l.ImageB != nil {
			text += fmt.Sprintf(" → %s (%.0f%%)", l.ImageB.Label, l.Transition*100)
		}
		parts = append(parts, text)
	}
	return styles.TitleStyle.Render(strings.Join(parts, " | "))
}

func (m Model) renderStrips() string {
	p := m.Player
	global := p.TimeRange()
	width := max(10, m.Width-stripLabelWidth-2)
	playhead := stripCell(p.CurrentTime().Get(), global, width)

	row := func(label string, ranges []otime.TimeRange, style lipgloss.Style) string {
		cells := styles.StripCells(spans(ranges, global), global.Duration.Value, width)
		return styles.DimStyle.Render(fmt.Sprintf("%-*s", stripLabelWidth, label)) +
			styles.RenderStrip(cells, style, playhead)
	}
	inOut := p.InOutRange().Get()
	return lipgloss.JoinVertical(lipgloss.Left,
		row("in/out", []otime.TimeRange{inOut}, styles.InOutStyle),
		row("video", p.CachedVideoRanges().Get(), styles.VideoCachedStyle),
		row("audio", p.CachedAudioRanges().Get(), styles.AudioCachedStyle),
		styles.DimStyle.Render(fmt.Sprintf("%-*s%s - %s", stripLabelWidth, "", inOut.Start, inOut.EndInclusive())),
	)
}

// spans converts ranges to frame offsets from the start of global
func spans(ranges []otime.TimeRange, global otime.TimeRange) []styles.Span {
	out := make([]styles.Span, 0, len(ranges))
	for _, r := range ranges {
		r = r.RescaledTo(global.Rate())
		start := r.Start.Sub(global.Start).Value
		out = append(out, styles.Span{Start: start, End: start + r.Duration.Value})
	}
	return out
}

func stripCell(t otime.RationalTime, global otime.TimeRange, width int) int {
	if global.Duration.Value <= 0 || width <= 0 {
		return -1
	}
	offset := t.RescaledTo(global.Rate()).Sub(global.Start).Value
	return min(width-1, max(0, int(offset/global.Duration.Value*float64(width))))
}

func (m Model) renderCache() string {
	stats := m.Player.CacheStats()
	pct := m.Player.CachePercentage().Get()
	return styles.DimStyle.Render(fmt.Sprintf("%-*s", stripLabelWidth, "cache")) +
		m.progress.ViewAs(pct/100) +
		styles.DimStyle.Render(fmt.Sprintf(" %3.0f%% pending %d", pct, stats.Pending))
}

func (m Model) renderAudio() string {
	p := m.Player
	if !p.HasAudio() {
		return styles.DimStyle.Render("audio off")
	}
	mute := "on"
	if p.Mute().Get() {
		mute = styles.ErrorStyle.Render("muted")
	}
	return styles.DimStyle.Render(fmt.Sprintf("volume %3.0f%%  %s  offset %+.2fs  %s",
		p.Volume().Get()*100, mute, p.AudioOffset().Get(), p.AVInfo().Audio))
}
