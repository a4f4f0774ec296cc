package session

import "github.com/pdfchat/cli/internal/api"

// Event is the outcome of an Op or a delayed Effect
type Event interface {
	sessionEvent()
}

// UploadFinished carries the result of an upload
type UploadFinished struct {
	Generation uint64
	File       File
	Result     api.Result[api.UploadResponse]
}

// WelcomeDue fires after the welcome delay following a successful upload
type WelcomeDue struct {
	Generation uint64
	Filename   string
	ChunkCount int
}

// ReplyReceived carries the answer to a sent message
type ReplyReceived struct {
	Generation uint64
	Result     api.Result[api.ChatResponse]
}

// HistoryLoaded carries the transcript of a resumed document
type HistoryLoaded struct {
	Generation uint64
	Document   Document
	Result     api.Result[api.ChatHistory]
}

func (UploadFinished) sessionEvent() {}
func (WelcomeDue) sessionEvent()     {}
func (ReplyReceived) sessionEvent()  {}
func (HistoryLoaded) sessionEvent()  {}
