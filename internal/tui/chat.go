package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tuba-naf/teamtask-cli/internal"
)

// recentLoadedMsg reports the outcome of the initial history fetch
type recentLoadedMsg struct {
	err error
}

// chatSentMsg reports the outcome of one send
type chatSentMsg struct {
	err error
}

// sessionExpiredMsg bubbles up to the app, which swaps in the login surface
type sessionExpiredMsg struct{}

// chatPane is the chat widget shared by the full-screen chat surface and
// the dashboard's floating overlay. Each pane owns its controller, so two
// panes never share history.
type chatPane struct {
	ctrl    *internal.ConversationController
	input   textinput.Model
	spin    spinner.Model
	width   int
	height  int
	loading bool // initial history fetch in flight
}

func newChatPane(ctrl *internal.ConversationController) chatPane {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return chatPane{
		ctrl:    ctrl,
		input:   input,
		spin:    spin,
		loading: true,
	}
}

func (p chatPane) init() tea.Cmd {
	return tea.Batch(p.spin.Tick, p.loadRecentCmd())
}

func (p chatPane) loadRecentCmd() tea.Cmd {
	ctrl := p.ctrl
	return func() tea.Msg {
		return recentLoadedMsg{err: ctrl.LoadRecent(context.Background())}
	}
}

func (p chatPane) sendCmd(text string) tea.Cmd {
	ctrl := p.ctrl
	return func() tea.Msg {
		return chatSentMsg{err: ctrl.Send(context.Background(), text)}
	}
}

func (p chatPane) update(msg tea.Msg) (chatPane, tea.Cmd) {
	switch msg := msg.(type) {
	case recentLoadedMsg:
		p.loading = false
		if msg.err != nil && internal.IsUnauthorized(msg.err) {
			return p, func() tea.Msg { return sessionExpiredMsg{} }
		}
		return p, nil

	case chatSentMsg:
		if msg.err != nil {
			if internal.IsUnauthorized(msg.err) {
				return p, func() tea.Msg { return sessionExpiredMsg{} }
			}
			// The controller restored the failed text to its buffer;
			// put it back in the input so the user can retry.
			p.input.SetValue(p.ctrl.Input())
			p.input.CursorEnd()
		}
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := p.input.Value()
			if strings.TrimSpace(text) == "" || p.ctrl.Sending() {
				return p, nil
			}
			p.input.SetValue("")
			return p, p.sendCmd(text)
		case "ctrl+n":
			if p.ctrl.Sending() {
				return p, nil
			}
			p.ctrl.StartNew()
			p.input.SetValue("")
			return p, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// teardown invalidates in-flight work when the pane is removed
func (p chatPane) teardown() {
	p.ctrl.Teardown()
}

func (p chatPane) setSize(width, height int) chatPane {
	p.width = width
	p.height = height
	p.input.Width = width - 4
	return p
}

func (p chatPane) view() string {
	var b strings.Builder

	if p.loading {
		b.WriteString(thinkingStyle.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	}

	messages := p.ctrl.Messages()
	if len(messages) == 0 {
		b.WriteString(titleStyle.Render("Start a conversation"))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(`Try "Add a task to buy groceries" or "What are my tasks?"`))
		b.WriteString("\n\n")
	} else {
		for _, msg := range visibleMessages(messages, p.height) {
			b.WriteString(renderMessage(msg, p.width))
			b.WriteString("\n")
		}
	}

	if p.ctrl.Sending() {
		b.WriteString(assistantBadgeStyle.Render("ASSISTANT"))
		b.WriteString(" ")
		b.WriteString(p.spin.View())
		b.WriteString(thinkingStyle.Render("Thinking..."))
		b.WriteString("\n")
	}

	if errMsg := p.ctrl.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter send · ctrl+n new chat"))
	return b.String()
}

// visibleMessages keeps the tail of the history that fits the pane
func visibleMessages(messages []internal.ChatMessage, height int) []internal.ChatMessage {
	if height <= 0 {
		return messages
	}
	// Rough budget: two lines per message plus the input area.
	max := (height - 6) / 2
	if max < 1 {
		max = 1
	}
	if len(messages) > max {
		return messages[len(messages)-max:]
	}
	return messages
}

func renderMessage(msg internal.ChatMessage, width int) string {
	badge := userBadgeStyle.Render("YOU")
	if msg.Role == internal.RoleAssistant {
		badge = assistantBadgeStyle.Render("ASSISTANT")
	}
	content := msg.Content
	if width > 10 {
		content = lipgloss.NewStyle().Width(width - 2).Render(content)
	}
	return badge + "\n" + content
}

// chatModel is the full-screen chat surface
type chatModel struct {
	pane chatPane
}

func newChatModel(ctrl *internal.ConversationController) chatModel {
	return chatModel{pane: newChatPane(ctrl)}
}

func (m chatModel) Init() tea.Cmd {
	return m.pane.init()
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.pane = m.pane.setSize(msg.Width, msg.Height-3)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.pane.teardown()
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.pane, cmd = m.pane.update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	header := headerStyle.Render("AI TASK ASSISTANT")
	return header + "\n\n" + m.pane.view()
}
