// Package tui provides the interactive Bubble Tea corrector.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/anprowh/LanguageCorrector/internal/corrector"
)

// maxEntries bounds the scrollback.
const maxEntries = 200

// Recorder persists corrected lines.
type Recorder interface {
	Record(ctx context.Context, input string, tokens []corrector.Token) error
}

type entry struct {
	input  string
	tokens []corrector.Token
}

// Model implements the Bubble Tea correction UI.
type Model struct {
	corrector *corrector.Corrector
	recorder  Recorder
	logger    *zap.Logger

	input   textinput.Model
	scroll  viewport.Model
	entries []entry

	width  int
	height int

	converted    int
	kept         int
	undetermined int
	errMsg       string
}

var (
	keptStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	convertedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	undeterminedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	echoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the correction TUI. recorder may be nil.
func NewModel(c *corrector.Corrector, recorder Recorder, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := textinput.New()
	input.Prompt = "› "
	input.Placeholder = "type or paste text, enter to correct"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()

	return &Model{
		corrector: c,
		recorder:  recorder,
		logger:    logger,
		input:     input,
		scroll:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit(m.input.Value())
			m.input.Reset()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.scroll, cmd = m.scroll.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return m.renderEntries(0) + "\n" + m.input.View()
	}
	footer := lipgloss.Place(m.width, 1, lipgloss.Left, lipgloss.Center, m.renderFooter())
	return strings.Join([]string{m.scroll.View(), m.input.View(), footer}, "\n")
}

func (m *Model) submit(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	tokens := m.corrector.Explain(line)
	for _, t := range tokens {
		switch {
		case t.Err != nil:
			m.undetermined++
		case t.Changed():
			m.converted++
		default:
			m.kept++
		}
	}
	m.entries = append(m.entries, entry{input: line, tokens: tokens})
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}

	m.errMsg = ""
	if m.recorder != nil {
		if err := m.recorder.Record(context.Background(), line, tokens); err != nil {
			m.logger.Warn("failed to record correction", zap.Error(err))
			m.errMsg = err.Error()
		}
	}
	m.refresh()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.scroll.Width = m.width
	m.scroll.Height = bodyHeight
	promptWidth := lipgloss.Width(m.input.Prompt)
	m.input.Width = maxInt(10, m.width-promptWidth-1)
}

func (m *Model) refresh() {
	m.scroll.SetContent(m.renderEntries(m.width))
	m.scroll.GotoBottom()
}

func (m *Model) renderEntries(width int) string {
	parts := make([]string, 0, len(m.entries)*2)
	for _, e := range m.entries {
		parts = append(parts, echoStyle.Render(e.input))
		parts = append(parts, wrapStyledRunes(buildStyledRunes(e.tokens), width))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return undeterminedStyle.Render(m.errMsg)
	}
	segments := []string{
		fmt.Sprintf("Converted %d", m.converted),
		fmt.Sprintf("Kept %d", m.kept),
		fmt.Sprintf("Undetermined %d", m.undetermined),
		"enter: correct  pgup/pgdn: scroll  esc: quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
