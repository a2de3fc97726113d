package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chatx/chatx/internal/chat"
	"github.com/chatx/chatx/internal/models"
	"github.com/chatx/chatx/internal/segment"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	chatPane := m.renderChatPane()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatPane)

	status := m.renderStatus()
	return body + "\n" + status
}

func (m Model) visibleConversations() []models.Conversation {
	return chat.Window(m.manager.Conversations(), m.search.Value(), m.windowSize)
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ChatX"))
	b.WriteString(helpStyle.Render("  ctrl+n new chat"))
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	visible := m.visibleConversations()
	active, hasActive := m.manager.Active()

	if len(visible) == 0 {
		b.WriteString(noticeStyle.Render("No conversations"))
	}
	for i, conv := range visible {
		title := conv.Title
		if maxLen := sidebarWidth - 4; len(title) > maxLen {
			title = title[:maxLen]
		}

		style := convItemStyle
		if hasActive && conv.ID == active.ID {
			style = convActiveStyle
		}
		if m.focus == focusList && i == m.selectedIdx {
			style = convSelectedStyle
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
	}

	return sidebarStyle.Height(m.height - 2).Render(b.String())
}

func (m Model) renderChatPane() string {
	var b strings.Builder

	active, ok := m.manager.Active()
	if !ok {
		b.WriteString(titleStyle.Render("Welcome to ChatX"))
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render("Start a conversation to begin"))
		b.WriteString("\n\n")
	} else {
		header := fmt.Sprintf("%s  %s", titleStyle.Render(active.Title),
			timeStyle.Render(fmt.Sprintf("%d messages", len(active.Messages))))
		b.WriteString(header)
		b.WriteString("\n")
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.typing || (ok && m.manager.Typing(active.ID)) {
		b.WriteString(m.spinner.View())
		b.WriteString(timeStyle.Render(" ChatX is typing..."))
		b.WriteString("\n")
	}

	if banner := m.manager.Banner(); banner != "" {
		b.WriteString(bannerStyle.Render(banner))
		b.WriteString(helpStyle.Render("  (esc to dismiss)"))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) renderStatus() string {
	parts := []string{
		"tab focus",
		"enter send",
		"ctrl+r regenerate",
		"ctrl+l clear",
		"ctrl+d delete",
		"ctrl+c quit",
	}
	return helpStyle.Render(strings.Join(parts, " · "))
}

// refreshViewport re-renders the active conversation into the chat viewport.
func (m *Model) refreshViewport() {
	active, ok := m.manager.Active()
	if !ok {
		m.viewport.SetContent(noticeStyle.Render("No conversation selected."))
		return
	}

	var lines []string
	for _, msg := range active.Messages {
		lines = append(lines, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) renderMessage(msg models.Message) string {
	var b strings.Builder

	label := userLabelStyle.Render("You")
	if msg.Role == models.RoleAssistant {
		label = botLabelStyle.Render("ChatX")
	}
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(timeStyle.Render(msg.Timestamp.Format("15:04")))
	if msg.Edited {
		b.WriteString(timeStyle.Render(" (edited)"))
	}
	if m.manager.Pinned(msg.ID) {
		b.WriteString(pinStyle.Render(" ★"))
	}
	if reaction := m.manager.Reaction(msg.ID); reaction != "" {
		b.WriteString(" " + reaction)
	}
	b.WriteString("\n")

	for _, seg := range m.segmenter.Split(msg.Content) {
		switch seg.Kind {
		case segment.KindImage:
			b.WriteString(imageStyle.Render(fmt.Sprintf("[image] %s → %s", seg.Filename, seg.URL)))
			b.WriteString("\n")
		default:
			b.WriteString(m.renderText(msg.Role, seg.Text))
		}
	}
	return b.String()
}

// renderText passes assistant prose through the markdown renderer; user
// input is shown verbatim.
func (m *Model) renderText(role models.Role, text string) string {
	if role == models.RoleAssistant && m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			return out
		}
	}
	return text + "\n"
}
