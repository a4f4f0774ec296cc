package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdfchat/cli/internal/api"
)

var features = []struct{ title, text string }{
	{"Smart Document Analysis", "Parses and chunks your PDF for precise retrieval"},
	{"Natural Conversations", "Ask questions in plain language"},
	{"Instant Answers", "Replies grounded in the document you uploaded"},
	{"Private", "Documents stay on the server you point at"},
	{"Context Aware", "Follow-up questions keep the thread"},
	{"Any PDF", "Reports, papers, manuals and contracts"},
}

// LandingView is the marketing page shown at startup
type LandingView struct {
	app *App

	checking bool
	health   *api.HealthStatus
	err      string
}

// NewLandingView creates the landing screen
func NewLandingView(app *App) *LandingView {
	return &LandingView{app: app, checking: true}
}

// Init checks server health once
func (lv *LandingView) Init() tea.Cmd {
	return lv.checkHealth
}

// Update handles landing keys
func (lv *LandingView) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "enter", " ":
		return lv.app.show(screenChat)
	case "d":
		return lv.app.show(screenDocuments)
	case "r":
		lv.checking = true
		return lv.checkHealth
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (lv *LandingView) handle(msg healthMsg) tea.Cmd {
	lv.checking = false
	if msg.result.OK() {
		lv.health = msg.result.Data
		lv.err = ""
		return nil
	}
	lv.health = nil
	lv.err = msg.result.Error
	return nil
}

// View renders the landing screen
func (lv *LandingView) View() string {
	t := lv.app.theme
	var lines []string

	lines = append(lines, t.Title.Render("Chat with Your PDFs"))
	lines = append(lines, t.Subtitle.Render("Upload any PDF and ask questions about it. Answers come from the document itself."))
	lines = append(lines, "")

	var grid []string
	for _, f := range features {
		grid = append(grid, t.Accent.Render("• "+f.title)+"  "+t.Muted.Render(f.text))
	}
	lines = append(lines, t.Panel.Render(strings.Join(grid, "\n")))
	lines = append(lines, "")

	lines = append(lines, lv.status())
	lines = append(lines, "")
	lines = append(lines, t.Help.Render("enter: Start chatting | d: Documents | r: Recheck server | q: Quit"))

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(lv.app.width, lv.app.height, lipgloss.Center, lipgloss.Center, body)
}

func (lv *LandingView) status() string {
	t := lv.app.theme
	server := lv.app.backendURL()
	switch {
	case lv.checking:
		return t.StatusUploading.Render("Checking " + server + "...")
	case lv.health != nil:
		return t.StatusSuccess.Render(fmt.Sprintf("✓ %s is %s", server, lv.health.Status))
	default:
		return t.StatusError.Render(fmt.Sprintf("✗ %s unreachable: %s", server, lv.err))
	}
}

func (lv *LandingView) checkHealth() tea.Msg {
	return healthMsg{result: lv.app.backend.Health(lv.app.ctx)}
}

// healthMsg carries the health check result
type healthMsg struct {
	result api.Result[api.HealthStatus]
}
