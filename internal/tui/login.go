package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuba-naf/teamtask-cli/internal"
)

type authResultMsg struct {
	err error
}

// loginModel is the login/register form shown whenever there is no usable
// session. Tab switches fields, ctrl+r flips between login and register.
type loginModel struct {
	guard *internal.Guard

	email       textinput.Model
	password    textinput.Model
	focus       int
	registering bool
	submitting  bool
	errMsg      string
	spin        spinner.Model
}

func newLoginModel(guard *internal.Guard) loginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return loginModel{
		guard:    guard,
		email:    email,
		password: password,
		spin:     spin,
	}
}

func (m loginModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m loginModel) submitCmd() tea.Cmd {
	guard := m.guard
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	registering := m.registering
	return func() tea.Msg {
		var err error
		if registering {
			_, err = guard.Register(context.Background(), email, password)
		} else {
			err = guard.Login(context.Background(), email, password)
		}
		return authResultMsg{err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = authMessage(msg.err, m.registering)
			return m, nil
		}
		m.errMsg = ""
		return m, func() tea.Msg { return authSucceededMsg{} }

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.email.Blur()
				m.password.Focus()
			}
			return m, textinput.Blink
		case "ctrl+r":
			m.registering = !m.registering
			m.errMsg = ""
			return m, nil
		case "enter":
			if strings.TrimSpace(m.email.Value()) == "" || m.password.Value() == "" {
				m.errMsg = "Email and password are required"
				return m, nil
			}
			if m.registering && len(m.password.Value()) < 8 {
				m.errMsg = "Password must be at least 8 characters"
				return m, nil
			}
			m.submitting = true
			m.errMsg = ""
			return m, m.submitCmd()
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	var b strings.Builder

	title := "LOG IN"
	hint := "ctrl+r switch to register"
	if m.registering {
		title = "REGISTER"
		hint = "ctrl+r switch to log in"
	}
	b.WriteString(headerStyle.Render("TEAM TASK"))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(inputLabelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(inputLabelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.submitting {
		b.WriteString(m.spin.View())
		b.WriteString(thinkingStyle.Render("Signing in..."))
		b.WriteString("\n")
	} else if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter submit · tab switch field · " + hint + " · ctrl+c quit"))
	return b.String()
}

func authMessage(err error, registering bool) string {
	var vErr *internal.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var apiErr *internal.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	if registering {
		return "Registration failed. Please try again."
	}
	return "Login failed. Please try again."
}
