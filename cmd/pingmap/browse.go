package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/1F47E/antenna-coverage-map/pkg/sector"
	"github.com/1F47E/antenna-coverage-map/pkg/state"
	"github.com/1F47E/antenna-coverage-map/pkg/temporal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1)
)

const (
	inputPhones = iota
	inputDate
	inputTime
	inputCount
)

type loadedMsg struct {
	view state.View
	err  error
}

type browseModel struct {
	ctx      context.Context
	spinner  spinner.Model
	inputs   [inputCount]textinput.Model
	focus    int
	list     viewport.Model
	gradient sector.Gradient

	view      state.View
	loadErr   error
	filterErr error

	width  int
	height int
}

func newBrowseModel(ctx context.Context, gradient sector.Gradient) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	m := browseModel{
		ctx:      ctx,
		spinner:  s,
		list:     viewport.New(80, 15),
		gradient: gradient,
		view:     state.Empty(),
		width:    80,
		height:   24,
	}

	placeholders := [inputCount]string{"600111222, 600333444", "dd-mm-yyyy", "hh:mm"}
	prompts := [inputCount]string{"Phones ", "Date   ", "Time   "}
	values := [inputCount]string{phones, date, clock}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = prompts[i]
		ti.PromptStyle = promptStyle
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[inputDate].CharLimit = 10
	m.inputs[inputTime].CharLimit = 8
	m.inputs[inputPhones].Focus()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textinput.Blink,
		loadDataCmd(m.ctx),
	)
}

func loadDataCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		view, err := loadView(ctx)
		return loadedMsg{view: view, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = msg.Width - 4
		m.list.Height = max(msg.Height-14, 3)
		m.list.SetContent(m.listContent())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.inputs[m.focus].Blur()
			if msg.String() == "tab" {
				m.focus = (m.focus + 1) % inputCount
			} else {
				m.focus = (m.focus + inputCount - 1) % inputCount
			}
			return m, m.inputs[m.focus].Focus()
		case "enter":
			if m.view.Loaded() {
				m.applyFilter()
			}
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

	case spinner.TickMsg:
		if m.view.Loaded() || m.loadErr != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		if msg.err != nil && !msg.view.Loaded() {
			m.loadErr = msg.err
			return m, nil
		}
		m.view = msg.view
		m.filterErr = msg.err
		m.list.SetContent(m.listContent())
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// applyFilter replaces the criteria with the current input values
func (m *browseModel) applyFilter() {
	c, err := temporal.ParseCriteria(
		m.inputs[inputPhones].Value(),
		m.inputs[inputDate].Value(),
		m.inputs[inputTime].Value(),
	)
	if err != nil {
		m.filterErr = err
		return
	}
	m.filterErr = nil
	m.view = m.view.WithCriteria(c)
	m.list.SetContent(m.listContent())
	m.list.GotoTop()
}

func (m browseModel) listContent() string {
	visible := m.view.Visible()
	if len(visible) == 0 {
		return dimStyle.Render("No pings match the current filter")
	}

	domain, _ := m.view.Domain()
	var b strings.Builder
	for i, r := range visible {
		hex := domain.Color(m.gradient, r.CoverageRadius)
		fmt.Fprintf(&b, "%s %-14s %-20s %-10s %10.5f %10.5f  az %3.0f° ap %3.0f° r %5.0fm",
			lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██"),
			r.Caller, r.Datetime, r.AntennaID,
			r.Latitude, r.Longitude, r.Azimuth, r.HorizontalAperture, r.CoverageRadius)
		if i < len(visible)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m browseModel) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("📡 Antenna ping browser"))
	s.WriteString("\n\n")

	if m.loadErr != nil {
		s.WriteString(errorStyle.Render("Failed to load data: " + m.loadErr.Error()))
		s.WriteString("\n\n")
		s.WriteString(dimStyle.Render("Press esc to quit"))
		return s.String()
	}

	if !m.view.Loaded() {
		s.WriteString(fmt.Sprintf("%s Loading %s...", m.spinner.View(), cfg.Source.Location))
		return s.String()
	}

	inputs := make([]string, 0, inputCount)
	for _, ti := range m.inputs {
		inputs = append(inputs, ti.View())
	}
	s.WriteString(boxStyle.Render(strings.Join(inputs, "\n")))
	s.WriteString("\n")

	status := fmt.Sprintf("%d of %d pings", len(m.view.Visible()), len(m.view.Records()))
	if d, ok := m.view.Domain(); ok {
		status += fmt.Sprintf(" · radius %.0f-%.0f m", d.Min, d.Max)
	}
	if box, ok := m.view.Viewport(); ok {
		status += fmt.Sprintf(" · viewport (%.3f, %.3f)-(%.3f, %.3f)",
			box.BottomLeft.Lat, box.BottomLeft.Lon, box.TopRight.Lat, box.TopRight.Lon)
	}
	if n := len(m.view.Issues()); n > 0 {
		status += fmt.Sprintf(" · %d unusable date(s)", n)
	}
	s.WriteString(statusStyle.Render(status))
	s.WriteString("\n")
	if m.filterErr != nil {
		s.WriteString(errorStyle.Render(m.filterErr.Error()))
		s.WriteString("\n")
	}

	s.WriteString(boxStyle.Render(m.list.View()))
	s.WriteString("\n")
	s.WriteString(dimStyle.Render("tab: next field · enter: apply · ↑/↓: scroll · esc: quit"))
	return s.String()
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return errors.New("browse needs an interactive terminal, use filter or render instead")
	}

	gradient, err := cfg.Gradient()
	if err != nil {
		return err
	}

	// the alternate screen owns the terminal until exit
	logger.SetOutput(io.Discard)
	debug.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	p := tea.NewProgram(newBrowseModel(cmd.Context(), gradient), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}
