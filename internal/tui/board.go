package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tuba-naf/teamtask-cli/internal"
)

type boardMode int

const (
	modeBrowse boardMode = iota
	modeAdd
	modeRename
)

type tasksLoadedMsg struct {
	err error
}

type taskMutatedMsg struct {
	id  string
	err error
}

type taskDeletedMsg struct {
	id  string
	err error
}

// boardModel is the task board surface: the task list, an add/rename
// input, and a floating chat overlay with its own conversation
// controller. Mutations disable their row while in flight; deletes keep
// the row visible until the server confirms.
type boardModel struct {
	tasks   *internal.TaskController
	client  *internal.Client
	archive *internal.Archive
	userID  string

	mode     boardMode
	input    textinput.Model
	cursor   int
	renameID string
	pending  map[string]bool // task ids with an in-flight mutation
	errMsg   string
	loading  bool

	chatOpen bool
	chat     chatPane

	width  int
	height int
}

func newBoardModel(tasks *internal.TaskController, client *internal.Client, archive *internal.Archive, userID string) boardModel {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 500

	return boardModel{
		tasks:   tasks,
		client:  client,
		archive: archive,
		userID:  userID,
		input:   input,
		pending: make(map[string]bool),
		loading: true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		return tasksLoadedMsg{err: tasks.Load(context.Background())}
	}
}

func (m boardModel) createCmd(title string) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		_, err := tasks.Create(context.Background(), title)
		return taskMutatedMsg{err: err}
	}
}

func (m boardModel) toggleCmd(id string) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		_, err := tasks.Toggle(context.Background(), id)
		return taskMutatedMsg{id: id, err: err}
	}
}

func (m boardModel) renameCmd(id, title string) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		_, err := tasks.Rename(context.Background(), id, title)
		return taskMutatedMsg{id: id, err: err}
	}
}

func (m boardModel) deleteCmd(id string) tea.Cmd {
	tasks := m.tasks
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: tasks.Remove(context.Background(), id)}
	}
}

func (m boardModel) Update(msg tea.Msg) (boardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.chatOpen {
			m.chat = m.chat.setSize(m.overlayWidth(), m.overlayHeight())
		}
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil && internal.IsUnauthorized(msg.err) {
			return m, func() tea.Msg { return sessionExpiredMsg{} }
		}
		m.clampCursor()
		return m, nil

	case taskMutatedMsg:
		delete(m.pending, msg.id)
		if msg.err != nil {
			if internal.IsUnauthorized(msg.err) {
				return m, func() tea.Msg { return sessionExpiredMsg{} }
			}
			m.errMsg = mutationMessage(msg.err)
		} else {
			m.errMsg = ""
		}
		m.clampCursor()
		return m, nil

	case taskDeletedMsg:
		delete(m.pending, msg.id)
		if msg.err != nil {
			if internal.IsUnauthorized(msg.err) {
				return m, func() tea.Msg { return sessionExpiredMsg{} }
			}
			m.errMsg = mutationMessage(msg.err)
		} else {
			m.errMsg = ""
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.chatOpen {
			return m.updateChatOverlay(msg)
		}
		return m.updateBoard(msg)
	}

	if m.chatOpen {
		var cmd tea.Cmd
		m.chat, cmd = m.chat.update(msg)
		return m, cmd
	}

	if m.mode != modeBrowse {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m boardModel) updateChatOverlay(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		// Closing the overlay tears the widget down; reopening starts a
		// fresh pane that reloads recent history.
		m.chat.teardown()
		m.chatOpen = false
		return m, nil
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.update(msg)
	return m, cmd
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (boardModel, tea.Cmd) {
	if m.mode != modeBrowse {
		switch msg.String() {
		case "esc":
			m.mode = modeBrowse
			m.input.SetValue("")
			m.input.Blur()
			return m, nil
		case "enter":
			title := m.input.Value()
			if strings.TrimSpace(title) == "" {
				return m, nil
			}
			mode := m.mode
			m.mode = modeBrowse
			m.input.SetValue("")
			m.input.Blur()
			if mode == modeRename {
				m.pending[m.renameID] = true
				return m, m.renameCmd(m.renameID, title)
			}
			return m, m.createCmd(title)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	tasks := m.tasks.Tasks()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "What needs doing?"
		m.input.Focus()
		return m, textinput.Blink
	case "e":
		if t, ok := m.selected(tasks); ok && !m.pending[t.ID] {
			m.mode = modeRename
			m.renameID = t.ID
			m.input.Placeholder = "New title"
			m.input.SetValue(t.Title)
			m.input.CursorEnd()
			m.input.Focus()
			return m, textinput.Blink
		}
	case " ", "enter":
		if t, ok := m.selected(tasks); ok && !m.pending[t.ID] {
			m.pending[t.ID] = true
			return m, m.toggleCmd(t.ID)
		}
	case "d":
		if t, ok := m.selected(tasks); ok && !m.pending[t.ID] {
			m.pending[t.ID] = true
			return m, m.deleteCmd(t.ID)
		}
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "c":
		ctrl := internal.NewConversationController(m.client, m.userID).WithArchive(m.archive)
		m.chat = newChatPane(ctrl).setSize(m.overlayWidth(), m.overlayHeight())
		m.chatOpen = true
		return m, m.chat.init()
	}
	return m, nil
}

func (m boardModel) selected(tasks []internal.Task) (internal.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return internal.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *boardModel) clampCursor() {
	if n := len(m.tasks.Tasks()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m boardModel) overlayWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 72 {
		w = 72
	}
	return w
}

func (m boardModel) overlayHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func (m boardModel) View() string {
	if m.chatOpen {
		header := headerStyle.Render("AI TASK ASSISTANT")
		body := header + "\n\n" + m.chat.view()
		return overlayStyle.Width(m.overlayWidth()).Render(body) + "\n" +
			hintStyle.Render("esc close chat")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("TEAM TASK"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(thinkingStyle.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	}

	tasks := m.tasks.Tasks()
	total, completed := m.tasks.Stats()
	if total > 0 {
		stats := fmt.Sprintf("%d total · %d done · %d remaining", total, completed, total-completed)
		b.WriteString(statStyle.Render(stats))
		b.WriteString("\n\n")
	}

	if errMsg := m.errMsg; errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg))
		b.WriteString("\n\n")
	} else if loadErr := m.tasks.Err(); loadErr != "" {
		b.WriteString(errorStyle.Render(loadErr))
		b.WriteString("\n\n")
	}

	if len(tasks) == 0 {
		b.WriteString(titleStyle.Render("No tasks yet"))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Press 'a' to add your first task"))
		b.WriteString("\n")
	}

	for i, t := range tasks {
		b.WriteString(m.renderTask(t, i == m.cursor))
		b.WriteString("\n")
	}

	if m.mode != modeBrowse {
		label := "Add task:"
		if m.mode == modeRename {
			label = "Rename task:"
		}
		b.WriteString("\n")
		b.WriteString(inputLabelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("enter save · esc cancel"))
	} else {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("a add · space toggle · e rename · d delete · c chat · r reload · q quit"))
	}
	return b.String()
}

func (m boardModel) renderTask(t internal.Task, selected bool) string {
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}

	title := t.Title
	line := fmt.Sprintf("%s %s", check, title)
	switch {
	case m.pending[t.ID]:
		line = pendingStyle.Render(line + " …")
	case t.IsCompleted:
		line = doneStyle.Render(line)
	}

	prefix := "  "
	if selected {
		prefix = cursorStyle.Render("> ")
		if m.width > 4 {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
	}
	return prefix + line
}

func mutationMessage(err error) string {
	var vErr *internal.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var apiErr *internal.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return "Request failed. Please try again."
}
