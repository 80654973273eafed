package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/facet/cli/view"
)

// FetchFunc resolves the current manifest state for the watch view.
type FetchFunc func(ctx context.Context) (*view.ManifestSummary, error)

// pollMsg carries one poll result into the model.
type pollMsg struct {
	summary *view.ManifestSummary
	err     error
}

// tickMsg schedules the next poll.
type tickMsg time.Time

// WatchModel is a Bubble Tea model that polls the manifest on an
// interval and renders live readiness state.
type WatchModel struct {
	fetch    FetchFunc
	interval time.Duration

	summary  *view.ManifestSummary
	lastErr  error
	polls    int
	width    int
	height   int
	quitting bool
}

// NewWatchModel creates a watch model polling fetch every interval.
func NewWatchModel(fetch FetchFunc, interval time.Duration) WatchModel {
	if interval <= 0 {
		interval = time.Second
	}
	return WatchModel{fetch: fetch, interval: interval}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return m.poll()
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case pollMsg:
		m.polls++
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.summary = msg.summary
		}
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case tickMsg:
		return m, m.poll()
	}

	return m, nil
}

func (m WatchModel) poll() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.fetch(context.Background())
		return pollMsg{summary: summary, err: err}
	}
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Manifest Watch"))
	b.WriteString("\n\n")

	state := m.state()
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("State:"),
		ReadinessStyle(state).Render(state)))

	if m.lastErr != nil {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Error:"),
			ErrorStyle.Render(m.lastErr.Error())))
	}

	if m.summary != nil {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Source:"),
			ValueStyle.Render(m.summary.Source)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderCounters())

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m WatchModel) state() string {
	switch {
	case m.lastErr != nil:
		return "error"
	case m.summary != nil && m.summary.Ready:
		return "ready"
	default:
		return "polling"
	}
}

func (m WatchModel) renderCounters() string {
	entrypoints, assets := 0, 0
	if m.summary != nil {
		entrypoints = len(m.summary.Entrypoints)
		assets = m.summary.AssetCount
	}

	boxes := []string{
		m.renderStatBox("Polls", m.polls, highlightColor),
		m.renderStatBox("Entrypoints", entrypoints, successColor),
		m.renderStatBox("Assets", assets, warningColor),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m WatchModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunWatchTUI runs the watch TUI until the user quits.
func RunWatchTUI(fetch FetchFunc, interval time.Duration) error {
	model := NewWatchModel(fetch, interval)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
