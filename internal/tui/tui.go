// Package tui is the terminal front end for the conversation manager: a
// sidebar with the searchable, windowed conversation list and a chat pane
// driving the send/receive cycle.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/chatx/chatx/internal/chat"
	"github.com/chatx/chatx/internal/segment"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSearch
	focusList
)

type Model struct {
	manager   *chat.Manager
	segmenter *segment.Segmenter
	renderer  *glamour.TermRenderer

	windowSize  int
	width       int
	height      int
	focus       focusArea
	selectedIdx int
	typing      bool
	notice      string

	// pendingClear is the id of the conversation a clear was requested for;
	// the next clear keypress confirms it.
	pendingClear string

	search   textinput.Model
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	failures <-chan error
}

type sendDoneMsg struct{ convID string }
type persistFailureMsg struct{ err error }

func New(manager *chat.Manager, segmenter *segment.Segmenter, windowSize int, failures <-chan error) Model {
	search := textinput.New()
	search.Placeholder = "Search conversations..."
	search.Prompt = "/ "
	search.CharLimit = 80

	input := textarea.New()
	input.Placeholder = "Message ChatX..."
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	m := Model{
		manager:    manager,
		segmenter:  segmenter,
		renderer:   renderer,
		windowSize: windowSize,
		search:     search,
		input:      input,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		failures:   failures,
	}

	if active, ok := manager.Active(); ok {
		m.input.SetValue(manager.Draft(active.ID))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenFailures())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sendDoneMsg:
		m.typing = false
		if msg.convID != "" {
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case persistFailureMsg:
		m.notice = "Warning: could not save conversations; changes are in memory only."
		return m, m.listenFailures()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 2
	if chatWidth < 20 {
		chatWidth = 20
	}
	inputHeight := 3
	vpHeight := m.height - inputHeight - 4
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Width = chatWidth
	m.viewport.Height = vpHeight
	m.input.SetWidth(chatWidth)
	m.search.Width = sidebarWidth - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-4),
	)
	if err == nil {
		m.renderer = renderer
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Escape):
		m.manager.ClearBanner()
		m.notice = ""
		m.pendingClear = ""
		m.setFocus(focusInput)
		return m, nil

	case key.Matches(msg, keys.CycleFocus):
		switch m.focus {
		case focusInput:
			m.setFocus(focusSearch)
		case focusSearch:
			m.setFocus(focusList)
		default:
			m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, keys.NewChat):
		conv := m.manager.Create()
		m.input.SetValue(m.manager.Draft(conv.ID))
		m.selectedIdx = 0
		m.refreshViewport()
		m.setFocus(focusInput)
		return m, nil

	case key.Matches(msg, keys.Regenerate):
		if active, ok := m.manager.Active(); ok {
			m.typing = true
			return m, m.regenerateCmd(active.ID)
		}
		return m, nil

	case key.Matches(msg, keys.Clear):
		return m.handleClear(), nil

	case key.Matches(msg, keys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusSearch:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleClear() Model {
	active, ok := m.manager.Active()
	if !ok {
		return m
	}
	if m.pendingClear == active.ID {
		m.manager.ClearMessages(active.ID)
		m.pendingClear = ""
		m.notice = ""
		m.refreshViewport()
		return m
	}
	m.pendingClear = active.ID
	m.notice = "Clear all messages in this conversation? Press ctrl+l again to confirm."
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Send) {
		text := m.input.Value()
		if text == "" || m.typing {
			return m, nil
		}
		m.input.Reset()
		m.typing = true
		m.refreshViewport()
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if active, ok := m.manager.Active(); ok {
		m.manager.SetDraft(active.ID, m.input.Value())
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleConversations()

	switch {
	case key.Matches(msg, keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}

	case key.Matches(msg, keys.Down):
		if m.selectedIdx < len(visible)-1 {
			m.selectedIdx++
		}

	case key.Matches(msg, keys.Select):
		if m.selectedIdx < len(visible) {
			m.selectConversation(visible[m.selectedIdx].ID)
		}

	case key.Matches(msg, keys.Delete):
		if m.selectedIdx < len(visible) {
			m.manager.Delete(visible[m.selectedIdx].ID)
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
			m.refreshViewport()
		}
	}

	return m, nil
}

func (m *Model) selectConversation(id string) {
	// The draft of the previous conversation is already stored keystroke by
	// keystroke; swap the editing buffer to the new selection's draft.
	m.manager.SetActive(id)
	m.input.SetValue(m.manager.Draft(id))
	m.refreshViewport()
	m.viewport.GotoBottom()
	m.setFocus(focusInput)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	m.input.Blur()
	m.search.Blur()
	switch focus {
	case focusInput:
		m.input.Focus()
	case focusSearch:
		m.search.Focus()
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		convID := m.manager.Send(context.Background(), text)
		return sendDoneMsg{convID: convID}
	}
}

func (m Model) regenerateCmd(convID string) tea.Cmd {
	return func() tea.Msg {
		m.manager.Regenerate(context.Background(), convID)
		return sendDoneMsg{convID: convID}
	}
}

func (m Model) listenFailures() tea.Cmd {
	return func() tea.Msg {
		return persistFailureMsg{err: <-m.failures}
	}
}

var keys = struct {
	Quit       key.Binding
	Escape     key.Binding
	CycleFocus key.Binding
	NewChat    key.Binding
	Delete     key.Binding
	Regenerate key.Binding
	Clear      key.Binding
	Send       key.Binding
	Select     key.Binding
	Up         key.Binding
	Down       key.Binding
	Scroll     key.Binding
}{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c")),
	Escape:     key.NewBinding(key.WithKeys("esc")),
	CycleFocus: key.NewBinding(key.WithKeys("tab")),
	NewChat:    key.NewBinding(key.WithKeys("ctrl+n")),
	Delete:     key.NewBinding(key.WithKeys("ctrl+d", "delete")),
	Regenerate: key.NewBinding(key.WithKeys("ctrl+r")),
	Clear:      key.NewBinding(key.WithKeys("ctrl+l")),
	Send:       key.NewBinding(key.WithKeys("enter")),
	Select:     key.NewBinding(key.WithKeys("enter")),
	Up:         key.NewBinding(key.WithKeys("up", "k")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	Scroll:     key.NewBinding(key.WithKeys("pgup", "pgdown")),
}
