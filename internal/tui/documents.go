package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/session"
)

// DocumentsView lists the documents the server holds
type DocumentsView struct {
	app *App

	docs     []api.Document
	selected int
	loading  bool
	errorMsg string
	status   string
	// confirming is the id awaiting a y/n delete confirmation
	confirming string
}

// NewDocumentsView creates the documents screen
func NewDocumentsView(app *App) *DocumentsView {
	return &DocumentsView{app: app}
}

// Init loads the list
func (dv *DocumentsView) Init() tea.Cmd {
	dv.loading = true
	dv.confirming = ""
	return dv.loadDocuments
}

// Update handles list navigation and actions
func (dv *DocumentsView) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if dv.confirming != "" {
		id := dv.confirming
		dv.confirming = ""
		if key.String() == "y" {
			dv.status = "Deleting..."
			return dv.deleteDocument(id)
		}
		dv.status = ""
		return nil
	}

	switch key.String() {
	case "j", "down":
		if dv.selected < len(dv.docs)-1 {
			dv.selected++
		}
	case "k", "up":
		if dv.selected > 0 {
			dv.selected--
		}
	case "r":
		return dv.Init()
	case "d":
		if doc, ok := dv.current(); ok {
			dv.confirming = doc.ID
			dv.status = fmt.Sprintf("Delete %s? y/n", doc.Filename)
		}
	case "enter":
		return dv.resume()
	case "esc":
		return dv.app.show(screenChat)
	case "q":
		return dv.app.show(screenLanding)
	}
	return nil
}

func (dv *DocumentsView) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case documentsLoadedMsg:
		dv.loading = false
		if !msg.result.OK() {
			dv.errorMsg = msg.result.Error
			return nil
		}
		dv.errorMsg = ""
		dv.docs = msg.result.Data.Documents
		if dv.selected >= len(dv.docs) {
			dv.selected = max(len(dv.docs)-1, 0)
		}
	case documentDeletedMsg:
		if !msg.result.OK() {
			dv.status = ""
			dv.errorMsg = msg.result.Error
			return nil
		}
		dv.status = msg.result.Data.Message
		if st := dv.app.session.Snapshot(); st.Document != nil && st.Document.ID == msg.id {
			dv.app.session.RemoveFile()
			dv.app.chat.refresh()
		}
		return dv.loadDocuments
	}
	return nil
}

func (dv *DocumentsView) current() (api.Document, bool) {
	if dv.selected < 0 || dv.selected >= len(dv.docs) {
		return api.Document{}, false
	}
	return dv.docs[dv.selected], true
}

// resume binds the selected document and opens the chat on its history
func (dv *DocumentsView) resume() tea.Cmd {
	doc, ok := dv.current()
	if !ok {
		return nil
	}
	chunks := 0
	if doc.ChunkCount != nil {
		chunks = *doc.ChunkCount
	}
	op := dv.app.session.BeginResume(session.Document{ID: doc.ID, Filename: doc.Filename, ChunkCount: chunks})
	if op == nil {
		dv.status = "Busy, try again when the current request finishes"
		return nil
	}
	dv.status = ""
	return tea.Batch(dv.app.show(screenChat), dv.app.run(op))
}

// View renders the documents screen
func (dv *DocumentsView) View() string {
	t := dv.app.theme
	var lines []string

	lines = append(lines, t.Title.Render("Documents"))
	lines = append(lines, "")

	if dv.loading {
		lines = append(lines, "Loading documents...")
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if dv.errorMsg != "" {
		lines = append(lines, t.StatusError.Render("Error: "+dv.errorMsg))
		lines = append(lines, "")
	}

	bound := ""
	if st := dv.app.session.Snapshot(); st.Document != nil {
		bound = st.Document.ID
	}

	if len(dv.docs) == 0 {
		lines = append(lines, t.Muted.Render("No documents uploaded yet."))
	}
	for i, doc := range dv.docs {
		style := lipgloss.NewStyle()
		cursor := "  "
		if i == dv.selected {
			style = t.Selected
			cursor = "> "
		}
		name := doc.Filename
		if doc.ID == bound {
			name += " (open)"
		}
		meta := []string{humanize.Bytes(uint64(doc.Size))}
		if doc.ChunkCount != nil {
			meta = append(meta, fmt.Sprintf("%d chunks", *doc.ChunkCount))
		}
		if at, err := time.Parse(time.RFC3339Nano, doc.UploadTime); err == nil {
			meta = append(meta, humanize.Time(at))
		} else if doc.UploadTime != "" {
			meta = append(meta, doc.UploadTime)
		}
		lines = append(lines, style.Render(cursor+name)+"  "+t.Muted.Render(strings.Join(meta, " · ")))
	}

	lines = append(lines, "")
	if dv.status != "" {
		lines = append(lines, t.Accent.Render(dv.status))
	}
	help := "j/k: Navigate | enter: Open | d: Delete | r: Reload | esc: Chat | q: Home"
	lines = append(lines, t.Help.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (dv *DocumentsView) loadDocuments() tea.Msg {
	return documentsLoadedMsg{result: dv.app.backend.ListDocuments(dv.app.ctx)}
}

func (dv *DocumentsView) deleteDocument(id string) tea.Cmd {
	return func() tea.Msg {
		return documentDeletedMsg{id: id, result: dv.app.backend.DeleteDocument(dv.app.ctx, id)}
	}
}

// documentsLoadedMsg signals the list has been fetched
type documentsLoadedMsg struct {
	result api.Result[api.DocumentList]
}

// documentDeletedMsg signals a delete has finished
type documentDeletedMsg struct {
	id     string
	result api.Result[api.DeleteResponse]
}
