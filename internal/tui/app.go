package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/logging"
	"github.com/pdfchat/cli/internal/session"
)

// Backend is the part of the API client the screens talk to
type Backend interface {
	session.API
	Health(ctx context.Context) api.Result[api.HealthStatus]
	ListDocuments(ctx context.Context) api.Result[api.DocumentList]
	DeleteDocument(ctx context.Context, documentID string) api.Result[api.DeleteResponse]
}

type screen int

const (
	screenLanding screen = iota
	screenChat
	screenDocuments
)

// App is the root model. It owns the session controller and routes
// messages to whichever screen is showing.
type App struct {
	ctx     context.Context
	backend Backend
	session *session.Controller
	theme   Theme
	log     *logrus.Entry

	screen screen
	width  int
	height int

	landing   *LandingView
	chat      *ChatView
	documents *DocumentsView
}

// NewApp wires the screens to a backend and a session controller
func NewApp(ctx context.Context, backend Backend, ctrl *session.Controller, theme Theme) *App {
	a := &App{
		ctx:     ctx,
		backend: backend,
		session: ctrl,
		theme:   theme,
		log:     logging.For("tui"),
		width:   80,
		height:  24,
	}
	a.landing = NewLandingView(a)
	a.chat = NewChatView(a)
	a.documents = NewDocumentsView(a)
	return a
}

// Run starts the program on the alternate screen and blocks until it quits
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Init starts the health check and the cursor blink
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.landing.Init(), a.chat.Init())
}

// Update handles global keys and results, then defers to the active screen
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.chat.resize()
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case sessionEventMsg:
		return a, a.applyEvent(msg.event)

	case spinner.TickMsg:
		return a, a.chat.Update(msg)

	case fileOpenedMsg:
		return a, a.chat.handleFile(msg)

	case healthMsg:
		return a, a.landing.handle(msg)

	case documentsLoadedMsg, documentDeletedMsg:
		return a, a.documents.handle(msg)
	}

	switch a.screen {
	case screenChat:
		return a, a.chat.Update(msg)
	case screenDocuments:
		return a, a.documents.Update(msg)
	default:
		return a, a.landing.Update(msg)
	}
}

// View renders the active screen
func (a *App) View() string {
	switch a.screen {
	case screenChat:
		return a.chat.View()
	case screenDocuments:
		return a.documents.View()
	default:
		return a.landing.View()
	}
}

func (a *App) show(s screen) tea.Cmd {
	a.screen = s
	switch s {
	case screenChat:
		return a.chat.focus()
	case screenDocuments:
		return a.documents.Init()
	}
	return nil
}

// run turns a session op into a command; nil ops stay nil
func (a *App) run(op session.Op) tea.Cmd {
	if op == nil {
		return nil
	}
	ctx := a.ctx
	return tea.Batch(
		func() tea.Msg { return sessionEventMsg{event: op(ctx)} },
		a.chat.spinner.Tick,
	)
}

// applyEvent folds a session event into the controller and schedules any
// delayed follow-up.
func (a *App) applyEvent(ev session.Event) tea.Cmd {
	a.log.Debugf("applying %T", ev)
	effect := a.session.Apply(ev)
	a.chat.refresh()
	if effect == nil {
		return nil
	}
	next := effect.Event
	return tea.Tick(effect.Delay, func(time.Time) tea.Msg {
		return sessionEventMsg{event: next}
	})
}

// sessionEventMsg carries a session event through the program loop
type sessionEventMsg struct {
	event session.Event
}

func (a *App) backendURL() string {
	if b, ok := a.backend.(interface{ BaseURL() string }); ok {
		return b.BaseURL()
	}
	return "server"
}
