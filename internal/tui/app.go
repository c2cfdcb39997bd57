package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/player"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateViewing ApplicationState = iota
	StateHelp
)

const statusTimeout = 2 * time.Second

// Model is the main Bubble Tea model for the viewer
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	Player        *player.Player
	Preset        string
	FrameInterval time.Duration
	Logger        *slog.Logger

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool

	progress progress.Model
	help     help.Model
	watch    playbackWatch
}

// NewModel creates the viewer for p, ticking it fps times per second
func NewModel(p *player.Player, preset string, fps int, logger *slog.Logger) Model {
	if fps <= 0 {
		fps = 30
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return Model{
		State:         StateViewing,
		Player:        p,
		Preset:        preset,
		FrameInterval: time.Second / time.Duration(fps),
		Logger:        logger,
		progress: progress.New(
			progress.WithSolidFill(string(styles.Amber)),
			progress.WithoutPercentage(),
			progress.WithWidth(40),
		),
		help:  h,
		watch: watchPlayback(p),
	}
}

// Init starts the display clock and the playback listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		TickCmd(m.FrameInterval),
		WaitForPlaybackCmd(m.watch.ch),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.progress.Width = max(10, msg.Width-stripLabelWidth-8)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.Player.Tick()
		return m, TickCmd(m.FrameInterval)

	case PlaybackChangedMsg:
		if msg.Playback == domain.Stop && m.Player.Loop().Get() == domain.LoopOnce {
			m.StatusMsg = "Stopped at " + m.Player.CurrentTime().Get().String()
			m.StatusIsErr = false
			return m, tea.Batch(WaitForPlaybackCmd(m.watch.ch), ClearStatusCmd(statusTimeout))
		}
		return m, WaitForPlaybackCmd(m.watch.ch)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}
	return m, nil
}

// Close stops listening to the player
func (m Model) Close() {
	m.watch.cancel()
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(statusTimeout)
}
