package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-relay/internal/domain/chatbot"
	"github.com/yanqian/faq-relay/internal/domain/faq"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	faqSvc     faq.Service
	dispatcher *chatbot.Dispatcher
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, dispatcher *chatbot.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:     faqSvc,
		dispatcher: dispatcher,
		logger:     logger.With("component", "http.handler"),
	}
}

// ChatRequest is a chat message relayed over HTTP.
type ChatRequest struct {
	ChannelID string `json:"channelId"`
	AuthorID  string `json:"authorId"`
	Content   string `json:"content"`
}

// ChatResponse carries the reply, if the message was a command.
type ChatResponse struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply,omitempty"`
}

// Health reports liveness and whether the FAQ document is loaded.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "faqReady": h.faqSvc.Ready()})
}

// AnswerFAQ resolves one question against the FAQ document.
func (h *Handler) AnswerFAQ(c *gin.Context) {
	var req faq.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("", err))
		return
	}
	switch req.Strategy {
	case "", faq.StrategySemantic, faq.StrategyLiteral:
	default:
		abortWithError(c, badRequest("strategy must be semantic or literal", nil))
		return
	}

	resp, err := h.faqSvc.Answer(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "faq_failed"))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TrendingFAQ returns the most asked questions.
func (h *Handler) TrendingFAQ(c *gin.Context) {
	items, err := h.faqSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err, "faq_failed"))
		return
	}
	if items == nil {
		items = []faq.TrendingQuery{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// FAQHistory returns the newest entries of the query audit log.
func (h *Handler) FAQHistory(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, badRequest("limit must be a positive integer", err))
			return
		}
		limit = parsed
	}
	records, err := h.faqSvc.History(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err, "faq_failed"))
		return
	}
	if records == nil {
		records = []faq.QueryRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"queries": records})
}

// Chat runs a message through the same dispatcher the chat gateway uses.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest("", err))
		return
	}
	authorID := req.AuthorID
	if authorID == "" {
		authorID = subjectFromContext(c)
	}
	reply, handled := h.dispatcher.Handle(c.Request.Context(), chatbot.InboundMessage{
		ID:        requestID(c),
		ChannelID: req.ChannelID,
		AuthorID:  authorID,
		Content:   req.Content,
	})
	c.JSON(http.StatusOK, ChatResponse{Handled: handled, Reply: reply.Content})
}
