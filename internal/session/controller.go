// Package session owns the state of one chat-with-a-PDF session: the bound
// document, the message log and the upload/send status.
//
// State changes in two steps. Begin* validates an action and moves the state
// synchronously, returning an Op that performs the network call without
// touching state. The Event the Op returns is folded back in with Apply.
// This keeps every mutation on the caller's goroutine.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdfchat/cli/internal/api"
	"github.com/sirupsen/logrus"
)

// User-facing texts
const (
	MsgNotPDF             = "Please upload a PDF file only."
	MsgUploadFailed       = "Upload failed"
	MsgUploadRetry        = "Upload failed. Please try again."
	MsgReplyFailed        = "Failed to get response"
	MsgSendRetry          = "Failed to send message. Please try again."
	uploadedMessageFormat = "Successfully uploaded: %s"
	welcomeMessageFormat  = "Great! I've successfully processed %q and created %d text chunks for analysis. The document is now ready for questions. What would you like to know about it?"
)

// DefaultWelcomeDelay paces the assistant greeting after an upload
const DefaultWelcomeDelay = time.Second

// API is the part of the API client the controller drives
type API interface {
	UploadDocument(ctx context.Context, filename string, data []byte) api.Result[api.UploadResponse]
	SendMessage(ctx context.Context, documentID, message string) api.Result[api.ChatResponse]
	GetChatHistory(ctx context.Context, documentID string) api.Result[api.ChatHistory]
}

// Op performs the network half of an action
type Op func(ctx context.Context) Event

// Effect is a follow-up event to apply after Delay
type Effect struct {
	Delay time.Duration
	Event Event
}

// Controller drives one chat session. It is not safe for concurrent use;
// callers serialize access (bubbletea's Update loop does).
type Controller struct {
	api          API
	state        State
	welcomeDelay time.Duration
	now          func() time.Time
	newID        func() string
	log          *logrus.Entry

	// sendGeneration is the generation the in-flight send was issued in
	sendGeneration uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithWelcomeDelay sets the pause before the assistant greets a new upload
func WithWelcomeDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.welcomeDelay = d
		}
	}
}

// WithClock sets the time source for local timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs sets the message id generator
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// WithLogger sets the controller's log entry
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Controller) { c.log = entry }
}

// NewController creates a controller with an idle, unbound session
func NewController(client API, opts ...Option) *Controller {
	c := &Controller{
		api:          client,
		welcomeDelay: DefaultWelcomeDelay,
		now:          time.Now,
		newID:        uuid.NewString,
		log:          logrus.WithField("component", "session"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	return c.state.clone()
}

// BeginUpload starts uploading f. Non-PDF files move the session to the
// error status without an API call. Returns nil when nothing is to be sent,
// including while another upload is in flight.
func (c *Controller) BeginUpload(f File) Op {
	if c.state.Status == StatusUploading {
		return nil
	}
	if !f.IsPDF() {
		c.state.Status = StatusError
		c.state.Error = MsgNotPDF
		c.log.WithFields(logrus.Fields{"file": f.Name, "media_type": f.MediaType}).Info("rejected non-PDF upload")
		return nil
	}

	c.state.Status = StatusUploading
	c.state.Error = ""
	file := f
	c.state.File = &file

	client := c.api
	gen := c.state.Generation
	return func(ctx context.Context) Event {
		return UploadFinished{Generation: gen, File: file, Result: client.UploadDocument(ctx, file.Name, file.Data)}
	}
}

// BeginSend appends the user's message and returns the op that asks the
// server. Empty text, an unbound session or a send in flight make it a no-op;
// callers clear their input only when an op is returned.
func (c *Controller) BeginSend(text string) Op {
	if strings.TrimSpace(text) == "" || c.state.Document == nil || c.state.Sending {
		return nil
	}

	c.appendMessage(Message{
		ID:        c.newID(),
		Content:   text,
		Sender:    SenderUser,
		Timestamp: c.now(),
	})
	c.state.Sending = true
	c.sendGeneration = c.state.Generation

	client := c.api
	docID := c.state.Document.ID
	gen := c.state.Generation
	return func(ctx context.Context) Event {
		return ReplyReceived{Generation: gen, Result: client.SendMessage(ctx, docID, text)}
	}
}

// BeginResume binds an existing server document and loads its transcript
func (c *Controller) BeginResume(doc Document) Op {
	if doc.ID == "" || c.state.Status == StatusUploading || c.state.Sending {
		return nil
	}

	c.state.Status = StatusUploading
	c.state.Error = ""

	client := c.api
	gen := c.state.Generation
	return func(ctx context.Context) Event {
		return HistoryLoaded{Generation: gen, Document: doc, Result: client.GetChatHistory(ctx, doc.ID)}
	}
}

// RemoveFile resets the session: no document, empty log, idle status
func (c *Controller) RemoveFile() {
	c.state = State{
		Status:     StatusIdle,
		Generation: c.state.Generation + 1,
	}
}

// DismissError clears the error banner
func (c *Controller) DismissError() {
	c.state.Error = ""
}

// Apply folds a completed op (or a delayed effect) into the state
func (c *Controller) Apply(ev Event) *Effect {
	switch ev := ev.(type) {
	case UploadFinished:
		return c.applyUpload(ev)
	case WelcomeDue:
		c.applyWelcome(ev)
	case ReplyReceived:
		c.applyReply(ev)
	case HistoryLoaded:
		c.applyHistory(ev)
	default:
		c.log.Warnf("ignoring unknown event %T", ev)
	}
	return nil
}

// Run executes op, applies its event and waits out any delayed effects.
// A nil op is a no-op.
func (c *Controller) Run(ctx context.Context, op Op) error {
	if op == nil {
		return nil
	}
	effect := c.Apply(op(ctx))
	for effect != nil {
		timer := time.NewTimer(effect.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		effect = c.Apply(effect.Event)
	}
	return nil
}

func (c *Controller) applyUpload(ev UploadFinished) *Effect {
	if ev.Generation != c.state.Generation {
		c.log.Debug("dropping upload result for a reset session")
		return nil
	}
	res := ev.Result
	if !res.OK() {
		c.state.Status = StatusError
		c.state.Error = failureText(res.Kind, res.Error, MsgUploadFailed, MsgUploadRetry)
		c.state.Document = nil
		c.state.File = nil
		c.log.WithFields(logrus.Fields{"file": ev.File.Name, "kind": res.Kind.String()}).Warn("upload failed")
		return nil
	}

	c.state.Generation++
	c.state.Document = &Document{
		ID:         res.Data.DocumentID,
		Filename:   ev.File.Name,
		ChunkCount: res.Data.ChunkCount,
	}
	c.state.Status = StatusSuccess
	c.state.Error = ""
	c.state.Messages = []Message{{
		ID:        c.newID(),
		Content:   fmt.Sprintf(uploadedMessageFormat, ev.File.Name),
		Sender:    SenderUser,
		Timestamp: c.now(),
	}}
	c.log.WithFields(logrus.Fields{
		"document_id": res.Data.DocumentID,
		"chunks":      res.Data.ChunkCount,
	}).Info("document uploaded")

	return &Effect{
		Delay: c.welcomeDelay,
		Event: WelcomeDue{
			Generation: c.state.Generation,
			Filename:   ev.File.Name,
			ChunkCount: res.Data.ChunkCount,
		},
	}
}

func (c *Controller) applyWelcome(ev WelcomeDue) {
	if ev.Generation != c.state.Generation {
		return
	}
	c.appendMessage(Message{
		ID:        c.newID(),
		Content:   fmt.Sprintf(welcomeMessageFormat, ev.Filename, ev.ChunkCount),
		Sender:    SenderAssistant,
		Timestamp: c.now(),
	})
}

func (c *Controller) applyReply(ev ReplyReceived) {
	if ev.Generation == c.sendGeneration {
		c.state.Sending = false
	}
	if ev.Generation != c.state.Generation {
		c.log.Debug("dropping reply for a reset session")
		return
	}

	res := ev.Result
	if !res.OK() {
		c.appendMessage(Message{
			ID:        c.newID(),
			Content:   "Error: " + failureText(res.Kind, res.Error, MsgReplyFailed, MsgSendRetry),
			Sender:    SenderAssistant,
			Timestamp: c.now(),
		})
		return
	}

	c.appendMessage(Message{
		ID:           c.newID(),
		Content:      res.Data.Response,
		Sender:       SenderAssistant,
		Timestamp:    c.parseTime(res.Data.Timestamp),
		RawTimestamp: res.Data.Timestamp,
	})
}

func (c *Controller) applyHistory(ev HistoryLoaded) {
	if ev.Generation != c.state.Generation {
		return
	}
	res := ev.Result
	if !res.OK() {
		c.state.Status = StatusError
		c.state.Error = failureText(res.Kind, res.Error, MsgUploadFailed, MsgUploadRetry)
		c.state.Document = nil
		c.state.File = nil
		return
	}

	doc := ev.Document
	c.state = State{
		Document:   &doc,
		Status:     StatusSuccess,
		Generation: c.state.Generation + 1,
	}
	for _, entry := range res.Data.ChatHistory {
		at := c.parseTime(entry.Timestamp)
		c.appendMessage(Message{ID: c.newID(), Content: entry.UserMessage, Sender: SenderUser, Timestamp: at, RawTimestamp: entry.Timestamp})
		c.appendMessage(Message{ID: c.newID(), Content: entry.AIResponse, Sender: SenderAssistant, Timestamp: at, RawTimestamp: entry.Timestamp})
	}
	c.log.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"exchanges":   len(res.Data.ChatHistory),
	}).Info("document resumed")
}

func (c *Controller) appendMessage(m Message) {
	c.state.Messages = append(c.state.Messages, m)
}

// failureText picks the banner or bubble text for a failed call
func failureText(kind api.FailureKind, serverMsg, fallback, transportMsg string) string {
	if kind == api.FailureTransport {
		return transportMsg
	}
	if serverMsg == "" {
		return fallback
	}
	return serverMsg
}

// timestamp layouts the backend is known to emit
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (c *Controller) parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return c.now()
}
