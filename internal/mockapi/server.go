// Package mockapi is an in-memory stand-in for the PDF chat backend. It
// speaks the same {success, data, error} envelope as the real service.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/pdfinfo"
	"github.com/pdfchat/cli/internal/rag"
	"github.com/sirupsen/logrus"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 10
	maxUploadBytes      = 32 << 20
	excerptLength       = 400
	defaultTopK         = 3
)

// Extractor pulls plain text out of PDF bytes
type Extractor interface {
	Extract(data []byte) (string, error)
}

// ExtractorFunc adapts a function to Extractor
type ExtractorFunc func(data []byte) (string, error)

// Extract calls f
func (f ExtractorFunc) Extract(data []byte) (string, error) { return f(data) }

// Generator writes an answer from a prompt. *ollama.Client is one.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Server serves the mock API
type Server struct {
	engine    *gin.Engine
	store     *store
	extractor Extractor
	generator Generator
	retriever *rag.Retriever
	prompts   *rag.ContextBuilder
	now       func() time.Time
	log       *logrus.Entry
	chunkSize int
}

// Option configures a Server
type Option func(*Server)

// WithExtractor replaces the MuPDF text extractor
func WithExtractor(e Extractor) Option {
	return func(s *Server) { s.extractor = e }
}

// WithClock sets the time source for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Server) { s.log = entry }
}

// WithGenerator makes chat answers come from a language model. Without one
// the server quotes the most relevant excerpt.
func WithGenerator(g Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithChunkSize sets the target chunk size in bytes
func WithChunkSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// New creates a mock server with its routes registered
func New(opts ...Option) *Server {
	s := &Server{
		extractor: ExtractorFunc(pdfinfo.ExtractText),
		now:       time.Now,
		log:       logrus.WithField("component", "mockapi"),
		retriever: rag.NewRetriever(defaultTopK),
		prompts:   rag.NewContextBuilder(0),
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = newStore(s.now)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/health", s.health)
	r.POST("/upload", s.upload)
	r.POST("/chat/:id", s.chat)
	r.GET("/chat/:id/history", s.history)
	r.GET("/documents", s.listDocuments)
	r.DELETE("/documents/:id", s.deleteDocument)
	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Endpoint not found")
	})

	s.engine = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.WithField("addr", addr).Info("mock API listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).String(),
		}).Debug("request served")
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) health(c *gin.Context) {
	ok(c, api.HealthStatus{
		Status:           "healthy",
		Timestamp:        s.timestamp(),
		OpenAIConfigured: s.generator != nil,
	})
}

func (s *Server) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file provided")
		return
	}
	if header.Filename == "" {
		fail(c, http.StatusBadRequest, "No file selected")
		return
	}

	f, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	if len(data) > maxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		fail(c, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	text, err := s.extractor.Extract(data)
	if err != nil {
		s.log.WithError(err).WithField("filename", header.Filename).Warn("text extraction failed")
		fail(c, http.StatusUnprocessableEntity, "Could not extract text from PDF")
		return
	}
	chunks := splitText(text, s.chunkSize, defaultChunkOverlap)
	if len(chunks) == 0 {
		fail(c, http.StatusUnprocessableEntity, "No text found in PDF")
		return
	}

	doc := s.store.add(header.Filename, int64(len(data)), chunks)
	ok(c, api.UploadResponse{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		UploadTime: doc.UploadTime,
		ChunkCount: len(chunks),
	})
}

func (s *Server) chat(c *gin.Context) {
	doc, found := s.store.get(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, "Message is required")
		return
	}

	reply := s.answer(c.Request.Context(), doc, req.Message)
	ts := s.timestamp()
	s.store.record(doc.ID, api.HistoryEntry{
		ID:          uuid.NewString(),
		UserMessage: req.Message,
		AIResponse:  reply,
		Timestamp:   ts,
	})
	ok(c, api.ChatResponse{Response: reply, Timestamp: ts})
}

// answer asks the generator when there is one and falls back to quoting
// the best excerpt
func (s *Server) answer(ctx context.Context, doc *document, question string) string {
	result := s.retriever.Retrieve(doc.chunks, question)

	if s.generator != nil {
		prompt := s.prompts.BuildPrompt(doc.Filename, s.prompts.BuildContext(result), question)
		reply, err := s.generator.Generate(ctx, prompt)
		if err == nil && reply != "" {
			return reply
		}
		s.log.WithError(err).WithField("document_id", doc.ID).Warn("generation failed, quoting excerpt")
	}
	return quote(doc.Filename, result)
}

func quote(filename string, result rag.Result) string {
	best, _ := result.Best()
	excerpt := best.Content
	if r := []rune(excerpt); len(r) > excerptLength {
		excerpt = strings.TrimSpace(string(r[:excerptLength])) + "…"
	}
	if !result.Matched {
		return fmt.Sprintf("I couldn't find anything about that in %q. The document begins:\n\n%s", filename, excerpt)
	}
	return fmt.Sprintf("Here is the most relevant passage from %q:\n\n%s", filename, excerpt)
}

func (s *Server) history(c *gin.Context) {
	id := c.Param("id")
	entries, found := s.store.history(id)
	if !found {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	ok(c, api.ChatHistory{DocumentID: id, ChatHistory: entries})
}

func (s *Server) listDocuments(c *gin.Context) {
	docs := s.store.list()
	ok(c, api.DocumentList{Documents: docs, Total: len(docs)})
}

func (s *Server) deleteDocument(c *gin.Context) {
	id := c.Param("id")
	if !s.store.remove(id) {
		fail(c, http.StatusNotFound, "Document not found")
		return
	}
	ok(c, api.DeleteResponse{Message: "Document deleted successfully"})
}
