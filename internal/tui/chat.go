package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pdfchat/cli/internal/session"
)

const (
	placeholderFile = "Drop a PDF here or type its path, then press enter"
	placeholderChat = "Ask a question about your PDF..."
)

// ChatView is the conversation screen. While no document is bound the input
// line doubles as the file prompt.
type ChatView struct {
	app      *App
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// attaching keeps the file prompt open over a bound document
	attaching bool
	// notice holds local failures such as an unreadable path
	notice string

	seenMessages int
	seenSending  bool
}

// NewChatView creates the chat screen
func NewChatView(app *App) *ChatView {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = placeholderFile

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	cv := &ChatView{
		app:      app,
		input:    in,
		viewport: viewport.New(app.width, app.height),
		spinner:  sp,
	}
	return cv
}

// Init starts the cursor blink
func (cv *ChatView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles chat keys and widget messages
func (cv *ChatView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !cv.busy() {
			return nil
		}
		cv.spinner, cmd = cv.spinner.Update(msg)
		return cmd

	case tea.MouseMsg:
		cv.viewport, cmd = cv.viewport.Update(msg)
		return cmd

	case tea.KeyMsg:
		return cv.handleKey(msg)
	}

	cv.input, cmd = cv.input.Update(msg)
	return cmd
}

func (cv *ChatView) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctrl := cv.app.session
	defer cv.refresh()

	if msg.Paste && cv.prompting() {
		return cv.openPath(string(msg.Runes))
	}

	switch msg.String() {
	case "ctrl+o":
		cv.attaching = true
		cv.input.Reset()
		return nil
	case "ctrl+x":
		ctrl.RemoveFile()
		cv.attaching = false
		cv.notice = ""
		cv.input.Reset()
		return nil
	case "ctrl+d":
		return cv.app.show(screenDocuments)
	case "esc":
		st := ctrl.Snapshot()
		switch {
		case st.Error != "":
			ctrl.DismissError()
		case cv.notice != "":
			cv.notice = ""
		case cv.attaching && st.Bound():
			cv.attaching = false
			cv.input.Reset()
		default:
			return cv.app.show(screenLanding)
		}
		return nil
	case "enter":
		return cv.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		cv.viewport, cmd = cv.viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	cv.input, cmd = cv.input.Update(msg)
	return cmd
}

func (cv *ChatView) submit() tea.Cmd {
	value := cv.input.Value()
	if cv.prompting() {
		return cv.openPath(value)
	}

	op := cv.app.session.BeginSend(value)
	if op == nil {
		return nil
	}
	cv.input.Reset()
	return cv.app.run(op)
}

func (cv *ChatView) openPath(raw string) tea.Cmd {
	if strings.TrimSpace(raw) == "" || cv.app.session.Snapshot().Status == session.StatusUploading {
		return nil
	}
	cv.input.Reset()
	cv.notice = ""
	return func() tea.Msg {
		f, err := session.OpenFile(raw)
		return fileOpenedMsg{file: f, err: err}
	}
}

// handleFile starts the upload of a file read from disk
func (cv *ChatView) handleFile(msg fileOpenedMsg) tea.Cmd {
	defer cv.refresh()
	if msg.err != nil {
		cv.notice = msg.err.Error()
		return nil
	}
	cv.attaching = false
	return cv.app.run(cv.app.session.BeginUpload(msg.file))
}

func (cv *ChatView) focus() tea.Cmd {
	cv.refresh()
	return cv.input.Focus()
}

func (cv *ChatView) resize() {
	cv.refresh()
}

func (cv *ChatView) prompting() bool {
	return cv.attaching || !cv.app.session.Snapshot().Bound()
}

func (cv *ChatView) busy() bool {
	st := cv.app.session.Snapshot()
	return st.Sending || st.Status == session.StatusUploading
}

// refresh re-lays out the viewport for the current state and follows the
// conversation when it grows.
func (cv *ChatView) refresh() {
	st := cv.app.session.Snapshot()

	if cv.prompting() {
		cv.input.Placeholder = placeholderFile
	} else {
		cv.input.Placeholder = placeholderChat
	}
	cv.input.Width = max(cv.app.width-4, 10)

	height := cv.app.height - lipgloss.Height(cv.header(st)) - lipgloss.Height(cv.footer(st))
	if b := cv.banner(st); b != "" {
		height -= lipgloss.Height(b)
	}
	cv.viewport.Width = cv.app.width
	cv.viewport.Height = max(height, 3)
	cv.viewport.SetContent(cv.renderMessages(st))

	if len(st.Messages) != cv.seenMessages || st.Sending != cv.seenSending {
		cv.viewport.GotoBottom()
	}
	cv.seenMessages = len(st.Messages)
	cv.seenSending = st.Sending
}

// View renders the chat screen
func (cv *ChatView) View() string {
	st := cv.app.session.Snapshot()
	parts := []string{cv.header(st)}
	if b := cv.banner(st); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, cv.viewport.View(), cv.footer(st))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (cv *ChatView) header(st session.State) string {
	t := cv.app.theme
	title := t.Title.Render("AI PDF Chat")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", cv.badge(st)) + "\n"
}

// badge shows the upload status and the attached file
func (cv *ChatView) badge(st session.State) string {
	t := cv.app.theme
	name := ""
	if st.File != nil {
		name = st.File.Name
	} else if st.Document != nil {
		name = st.Document.Filename
	}

	var out string
	switch st.Status {
	case session.StatusUploading:
		label := "Processing"
		if st.File == nil {
			label = "Loading"
		}
		out = t.StatusUploading.Render(fmt.Sprintf("%s %s %s...", cv.spinner.View(), label, name))
	case session.StatusSuccess:
		details := []string{name}
		if st.File != nil {
			if st.File.Pages > 0 {
				details = append(details, fmt.Sprintf("%d pages", st.File.Pages))
			}
			details = append(details, humanize.Bytes(uint64(st.File.Size())))
		}
		if st.Document != nil {
			details = append(details, fmt.Sprintf("%d chunks", st.Document.ChunkCount))
		}
		out = t.StatusSuccess.Render("✓ " + strings.Join(details, " · "))
	case session.StatusError:
		out = t.StatusError.Render("✗ Upload failed")
	default:
		out = t.StatusIdle.Render("○ No document")
	}
	if st.File != nil || st.Document != nil {
		out += t.Help.Render("  ctrl+x remove")
	}
	return out
}

func (cv *ChatView) banner(st session.State) string {
	msg := st.Error
	if msg == "" {
		msg = cv.notice
	}
	if msg == "" {
		return ""
	}
	return cv.app.theme.Banner.Width(max(cv.app.width-2, 10)).Render("⚠ " + msg + "  (esc to dismiss)")
}

func (cv *ChatView) footer(st session.State) string {
	t := cv.app.theme
	var lines []string
	if st.Sending {
		lines = append(lines, t.Muted.Render(cv.spinner.View()+" Thinking..."))
	}
	lines = append(lines, cv.input.View())

	help := "enter: Send | ctrl+o: New PDF | ctrl+x: Remove | ctrl+d: Documents | esc: Back"
	if cv.prompting() {
		help = "enter: Upload | ctrl+d: Documents | esc: Back"
	}
	lines = append(lines, t.Help.Render(help))
	return strings.Join(lines, "\n")
}

func (cv *ChatView) renderMessages(st session.State) string {
	t := cv.app.theme
	if len(st.Messages) == 0 && !st.Bound() {
		return cv.dropZone(st)
	}

	width := cv.app.width
	bubbleWidth := min(max(width*3/4, 20), 76)

	var blocks []string
	for _, m := range st.Messages {
		stamp := t.Muted.Render(m.Timestamp.Local().Format("15:04"))
		if m.Sender == session.SenderUser {
			head := t.UserLabel.Render("You") + " " + stamp
			body := t.UserBubble.Width(bubbleWidth).Render(m.Content)
			blocks = append(blocks,
				lipgloss.PlaceHorizontal(width, lipgloss.Right, head),
				lipgloss.PlaceHorizontal(width, lipgloss.Right, body),
			)
		} else {
			head := t.AssistantLabel.Render("AI") + " " + stamp
			blocks = append(blocks, head, t.AssistantBubble.Width(bubbleWidth).Render(m.Content))
		}
		blocks = append(blocks, "")
	}
	return strings.Join(blocks, "\n")
}

func (cv *ChatView) dropZone(st session.State) string {
	t := cv.app.theme
	intro := t.Subtitle.Render("Welcome to AI PDF Chat! Upload a PDF document to start asking questions about its content.")

	zone := t.DropZone
	lines := []string{
		t.Accent.Render("Drop your PDF here"),
		t.Muted.Render("or type its path below and press enter"),
		t.Muted.Render("PDF files only"),
	}
	if st.Status == session.StatusUploading {
		zone = t.DropHover
		lines = []string{t.StatusUploading.Render(cv.spinner.View() + " Processing PDF...")}
	}
	box := zone.Width(min(max(cv.app.width-8, 30), 60)).Render(strings.Join(lines, "\n"))

	body := lipgloss.JoinVertical(lipgloss.Center, intro, "", box)
	return lipgloss.PlaceHorizontal(cv.app.width, lipgloss.Center, body)
}

// fileOpenedMsg carries a file read from disk
type fileOpenedMsg struct {
	file session.File
	err  error
}
