package api

// FailureKind classifies why a call did not succeed
type FailureKind int

const (
	// FailureNone means the call succeeded
	FailureNone FailureKind = iota
	// FailureValidation means the call was rejected before reaching the network
	FailureValidation
	// FailureTransport covers connection, DNS and malformed-body errors
	FailureTransport
	// FailureApplication means the server answered with success=false
	FailureApplication
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureValidation:
		return "validation"
	case FailureTransport:
		return "transport"
	case FailureApplication:
		return "application"
	}
	return "unknown"
}

// Result is the uniform envelope every call resolves to
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	Kind FailureKind `json:"-"`
	Err  error       `json:"-"`
}

// OK reports whether the call succeeded and carried data
func (r Result[T]) OK() bool {
	return r.Success && r.Data != nil
}

// HealthStatus is returned by GET /health
type HealthStatus struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	OpenAIConfigured bool   `json:"openai_configured"`
}

// UploadResponse is returned by POST /upload
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
	ChunkCount int    `json:"chunk_count"`
}

// ChatRequest is the body of POST /chat/{document_id}
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned by POST /chat/{document_id}
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// HistoryEntry is one exchange in a document's server-side transcript
type HistoryEntry struct {
	ID          string `json:"id"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   string `json:"timestamp"`
}

// ChatHistory is returned by GET /chat/{document_id}/history
type ChatHistory struct {
	DocumentID  string         `json:"document_id"`
	ChatHistory []HistoryEntry `json:"chat_history"`
}

// Document describes a previously uploaded document
type Document struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
	Size       int64  `json:"size"`
	ChunkCount *int   `json:"chunk_count,omitempty"`
}

// DocumentList is returned by GET /documents
type DocumentList struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

// DeleteResponse is returned by DELETE /documents/{document_id}
type DeleteResponse struct {
	Message string `json:"message"`
}
