package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/metaprint/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// headerLines is the height of the title and blank line above the viewport,
// plus the help line below it.
const headerLines = 4

type interactiveModel struct {
	err      error
	session  *session
	cfg      config
	sels     []render.Selection
	visible  []int
	filter   textinput.Model
	view     viewport.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelect modelState = iota
	stateFilter
	stateShowValue
)

func newInteractiveModel(cfg config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type name"
	ti.Prompt = "/"
	ti.Width = 40

	return &interactiveModel{
		cfg:    cfg,
		filter: ti,
		view:   viewport.New(80, 20),
		state:  stateSelect,
	}
}

type loadedMsg struct {
	err     error
	session *session
	sels    []render.Selection
}

type renderedMsg struct {
	err    error
	output string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	s, err := open(context.Background(), m.cfg)
	if err != nil {
		return loadedMsg{err: err}
	}
	sels, err := s.selections(m.cfg)
	if err != nil {
		s.close(context.Background())
		return loadedMsg{err: err}
	}
	return loadedMsg{session: s, sels: sels}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-headerLines, 1)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.session != nil {
				m.session.close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.visible)-1 {
				m.selected++
				return m, nil
			}

		case "/":
			if m.state == stateSelect {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateSelect && len(m.visible) > 0 {
				return m, m.renderSelection
			}

		case "esc":
			if m.state == stateShowValue {
				m.state = stateSelect
				m.err = nil
				return m, nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.sels = msg.sels
		m.applyFilter()
		return m, nil

	case renderedMsg:
		m.err = msg.err
		m.view.SetContent(msg.output)
		m.view.GotoTop()
		m.state = stateShowValue
		return m, nil
	}

	if m.state == stateShowValue {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
		}
		m.filter.Blur()
		m.state = stateSelect
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter keeps the selections whose type contains the filter text.
func (m *interactiveModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, sel := range m.sels {
		if needle == "" || strings.Contains(strings.ToLower(sel.Type), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) renderSelection() tea.Msg {
	sel := m.sels[m.visible[m.selected]]
	var b strings.Builder
	err := m.session.renderer.Render(&b, m.session.mem, sel)
	return renderedMsg{err: err, output: b.String()}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowValue {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.session == nil {
		return "Loading catalog..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("metaprint"))
	b.WriteString(" ")
	b.WriteString(m.cfg.catalog)
	b.WriteString(" ")
	b.WriteString(addrStyle.Render(m.session.source))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString("No selections.\n")
		}
		for i, idx := range m.visible {
			line := formatSelection(m.sels[idx])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter render • / filter • q quit"))
		}

	case stateShowValue:
		b.WriteString(m.view.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ scroll • esc back • q quit  %3.f%%", m.view.ScrollPercent()*100)))
	}

	return b.String()
}

func formatSelection(sel render.Selection) string {
	where := fmt.Sprintf("@0x%x", sel.Base)
	switch {
	case len(sel.Instances) > 0:
		where = fmt.Sprintf("%d instances", len(sel.Instances))
	case sel.Count > 1:
		where += fmt.Sprintf(" ×%d", sel.Count)
	}
	return typeStyle.Render(sel.Type) + " " + addrStyle.Render(where)
}

func runInteractive(cfg config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
