// Package tui holds the interactive surfaces: the login form, the task
// board with its floating chat overlay, and the full-screen chat. The
// root model gates the protected surfaces on session validity and swaps
// the login form back in whenever the server evicts the session.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuba-naf/teamtask-cli/internal"
)

// Surface selects which protected surface the app opens after auth
type Surface int

const (
	SurfaceBoard Surface = iota
	SurfaceChat
)

// authSucceededMsg is emitted by the login form after a stored session
// has been established
type authSucceededMsg struct{}

type appMode int

const (
	appModeLogin appMode = iota
	appModeBoard
	appModeChat
)

// App is the root model. It renders nothing protected until the guard
// admits the session.
type App struct {
	guard   *internal.Guard
	client  *internal.Client
	archive *internal.Archive
	target  Surface

	mode  appMode
	login loginModel
	board boardModel
	chat  chatModel

	width  int
	height int
}

// NewApp builds the root model, starting on the login form when there is
// no usable session.
func NewApp(guard *internal.Guard, client *internal.Client, archive *internal.Archive, target Surface) App {
	app := App{
		guard:   guard,
		client:  client,
		archive: archive,
		target:  target,
	}

	if userID, err := guard.Require(); err == nil {
		app.enterTarget(userID)
	} else {
		app.mode = appModeLogin
		app.login = newLoginModel(guard)
	}
	return app
}

// Run starts the interactive program
func Run(guard *internal.Guard, client *internal.Client, archive *internal.Archive, target Surface) error {
	program := tea.NewProgram(NewApp(guard, client, archive, target), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (a *App) enterTarget(userID string) {
	switch a.target {
	case SurfaceChat:
		ctrl := internal.NewConversationController(a.client, userID).WithArchive(a.archive)
		a.chat = newChatModel(ctrl)
		a.mode = appModeChat
	default:
		tasks := internal.NewTaskController(a.client)
		a.board = newBoardModel(tasks, a.client, a.archive, userID)
		a.mode = appModeBoard
	}
}

func (a App) Init() tea.Cmd {
	switch a.mode {
	case appModeBoard:
		return a.board.Init()
	case appModeChat:
		return a.chat.Init()
	default:
		return a.login.Init()
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "q" && a.mode == appModeBoard && a.board.mode == modeBrowse && !a.board.chatOpen {
			return a, tea.Quit
		}

	case sessionExpiredMsg:
		// The token is already evicted; all that is left is routing the
		// user back to the login surface.
		a.mode = appModeLogin
		a.login = newLoginModel(a.guard)
		return a, a.login.Init()

	case authSucceededMsg:
		userID, err := a.guard.Require()
		if err != nil {
			// The token round-tripped but is undecodable; stay on login.
			a.login.errMsg = "Login failed. Please try again."
			return a, nil
		}
		a.enterTarget(userID)
		var cmd tea.Cmd
		switch a.mode {
		case appModeChat:
			cmd = a.chat.Init()
		default:
			cmd = a.board.Init()
		}
		return a, tea.Batch(cmd, a.resizeCmd())
	}

	var cmd tea.Cmd
	switch a.mode {
	case appModeBoard:
		a.board, cmd = a.board.Update(msg)
	case appModeChat:
		a.chat, cmd = a.chat.Update(msg)
	default:
		a.login, cmd = a.login.Update(msg)
	}
	return a, cmd
}

// resizeCmd replays the last known window size to a freshly mounted surface
func (a App) resizeCmd() tea.Cmd {
	if a.width == 0 {
		return nil
	}
	width, height := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: width, Height: height}
	}
}

func (a App) View() string {
	switch a.mode {
	case appModeBoard:
		return a.board.View()
	case appModeChat:
		return a.chat.View()
	default:
		return a.login.View()
	}
}
