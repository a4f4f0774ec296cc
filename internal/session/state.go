package session

import (
	"time"
)

// UploadStatus is the upload lifecycle of a session
type UploadStatus int

const (
	StatusIdle UploadStatus = iota
	StatusUploading
	StatusSuccess
	StatusError
)

func (s UploadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry of the chat log. Messages are never mutated after
// they are appended.
type Message struct {
	ID        string
	Content   string
	Sender    Sender
	Timestamp time.Time
	// RawTimestamp is the server-supplied timestamp, verbatim. Empty for
	// locally generated messages.
	RawTimestamp string
}

// Document is the server-side document a session is bound to
type Document struct {
	ID         string
	Filename   string
	ChunkCount int
}

// State is everything the chat screen renders
type State struct {
	Document *Document
	File     *File
	Messages []Message
	Status   UploadStatus
	Error    string
	Sending  bool
	// Generation changes whenever the session is reset or rebound; results
	// issued under an older generation are discarded.
	Generation uint64
}

// Bound reports whether a document is bound
func (s State) Bound() bool {
	return s.Document != nil
}

// clone returns a copy that shares nothing mutable with s
func (s State) clone() State {
	out := s
	if s.Document != nil {
		d := *s.Document
		out.Document = &d
	}
	if s.File != nil {
		f := *s.File
		out.File = &f
	}
	if s.Messages != nil {
		out.Messages = append([]Message(nil), s.Messages...)
	}
	return out
}
