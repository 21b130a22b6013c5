package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salespage/chatkit"
	"github.com/salespage/chatkit/core"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ExtractRequest asks for a page to be fetched and parsed.
type ExtractRequest struct {
	URL string `json:"url" binding:"required"`
}

// ExtractResponse carries the structured record for a page.
type ExtractResponse struct {
	Data   core.PageData `json:"data"`
	Cached bool          `json:"cached"`
}

// ChatRequest asks a question about a page within a session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

// ChatResponse carries the vetted answer.
type ChatResponse struct {
	SessionID      string `json:"session_id"`
	Answer         string `json:"answer"`
	Origin         string `json:"origin"`
	Valid          bool   `json:"valid"`
	MatchedSources int    `json:"matched_sources"`
}

// ConversationResponse carries a session's message log.
type ConversationResponse struct {
	SessionID string         `json:"session_id"`
	Messages  []core.Message `json:"messages"`
}

// InvalidateRequest asks for a page's cached snapshot to be dropped.
type InvalidateRequest struct {
	URL string `json:"url" binding:"required"`
}

// HealthResponse reports liveness plus pipeline counters.
type HealthResponse struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Stats   chatkit.Stats `json:"stats"`
}

// handleHealth handles GET /.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: ServiceVersion,
		Stats:   s.kit.Stats(c.Request.Context()),
	})
}

// handleStats handles GET /stats.
func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.kit.Stats(c.Request.Context()))
}

// handleExtract handles POST /extract: cache-first page extraction.
func (s *Server) handleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url is required", Code: "INVALID_REQUEST"})
		return
	}
	data, cached, err := s.kit.Extract(c.Request.Context(), req.URL)
	if err != nil {
		s.opts.Logger.Error("extraction failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "could not extract page", Code: "EXTRACTION_FAILED"})
		return
	}
	c.JSON(http.StatusOK, ExtractResponse{Data: data, Cached: cached})
}

// handleChat handles POST /chat.
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url and question are required", Code: "INVALID_REQUEST"})
		return
	}
	reply, sessionID, err := s.kit.Ask(c.Request.Context(), req.SessionID, req.URL, req.Question)
	if err != nil {
		s.opts.Logger.Error("chat failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "could not answer question", Code: "CHAT_FAILED"})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{
		SessionID:      sessionID,
		Answer:         reply.Text,
		Origin:         string(reply.Origin),
		Valid:          reply.Validation.Valid,
		MatchedSources: reply.Validation.MatchedSources,
	})
}

// handleConversation handles GET /conversation/:id. Unknown sessions yield
// an empty message list, not an error.
func (s *Server) handleConversation(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, ConversationResponse{
		SessionID: id,
		Messages:  s.kit.Conversations().History(c.Request.Context(), id),
	})
}

// handleInvalidate handles POST /cache/invalidate: drops the cached
// snapshot for a page so the next extract refetches it.
func (s *Server) handleInvalidate(c *gin.Context) {
	var req InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url is required", Code: "INVALID_REQUEST"})
		return
	}
	invalidated := s.kit.InvalidatePage(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, gin.H{"url": req.URL, "invalidated": invalidated})
}

// handleClearSession handles POST /sessions/:id/clear.
func (s *Server) handleClearSession(c *gin.Context) {
	id := c.Param("id")
	cleared := s.kit.ClearSession(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"session_id": id, "cleared": cleared})
}
