package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/facet/cli/view"
)

// InspectModel is a Bubble Tea model for inspect views.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "inspect_manifest":
		content = m.renderManifest()
	case "inspect_entrypoint":
		content = m.renderEntrypoint()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderManifest() string {
	data, ok := m.data.(*view.ManifestSummary)
	if !ok {
		return "Invalid data type for inspect_manifest"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Manifest"))
	b.WriteString("\n\n")

	state := "waiting"
	if data.Ready {
		state = "ready"
	}

	rows := [][]string{
		{"Filename", data.Filename},
		{"Source", data.Source},
		{"Mode", data.Mode},
		{"State", state},
		{"Files", fmt.Sprintf("%d", data.FileCount)},
		{"Assets", fmt.Sprintf("%d", data.AssetCount)},
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "State" {
			value = ReadinessStyle(state).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	if len(data.Entrypoints) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Entrypoints:"))
		b.WriteString("\n")
		for _, name := range data.Entrypoints {
			b.WriteString(fmt.Sprintf("  • %s\n", ValueStyle.Render(name)))
		}
	}

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderEntrypoint() string {
	data, ok := m.data.(*view.EntrypointView)
	if !ok {
		return "Invalid data type for inspect_entrypoint"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Entrypoint: " + data.Name))
	b.WriteString("\n\n")

	state := "waiting"
	if data.Ready {
		state = "ready"
	}
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("State:"),
		ReadinessStyle(state).Render(state)))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Source:"),
		ValueStyle.Render(data.Source)))

	b.WriteString("\n")
	b.WriteString(m.renderAssetGroup("Scripts", data.JS))
	b.WriteString(m.renderAssetGroup("Styles", data.CSS))

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderAssetGroup(title string, assets []view.AssetView) string {
	var b strings.Builder
	b.WriteString(LabelStyle.Render(title + ":"))
	b.WriteString("\n")
	if len(assets) == 0 {
		b.WriteString(ValueStyle.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}
	for _, a := range assets {
		b.WriteString(fmt.Sprintf("  • %s", AssetStyle.Render(a.Src)))
		if a.Integrity == "" {
			b.WriteString(WaitingStyle.Render("  [no integrity]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
