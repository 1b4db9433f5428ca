package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AIHandler forwards planner, tutor, summarizer, and voice requests to the
// assistant. Downstream failures are reported with a fixed message only.
type AIHandler struct {
	ai     Assistant
	logger *slog.Logger
}

func NewAIHandler(ai Assistant, logger *slog.Logger) *AIHandler {
	return &AIHandler{ai: ai, logger: logger}
}

type planReq struct {
	Topic string `json:"topic"`
}

type askReq struct {
	Question string `json:"question"`
}

type summarizeReq struct {
	Text string `json:"text"`
}

func (h *AIHandler) StudyPlan(c *gin.Context) {
	var req planReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Topic) == "" {
		respondError(c, http.StatusBadRequest, "Topic is required")
		return
	}
	plan, err := h.ai.Plan(c.Request.Context(), req.Topic)
	if err != nil {
		h.fail(c, err, "Failed to generate plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *AIHandler) Ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		respondError(c, http.StatusBadRequest, "Question is required")
		return
	}
	answer, err := h.ai.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.fail(c, err, "Failed to get AI response")
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *AIHandler) Summarize(c *gin.Context) {
	var req summarizeReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, "Text is required")
		return
	}
	summary, err := h.ai.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		h.fail(c, err, "Failed to summarize")
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (h *AIHandler) VoiceToText(c *gin.Context) {
	header, err := c.FormFile("audio")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.fail(c, err, "Voice-to-text failed")
		return
	}
	defer file.Close()

	text, err := h.ai.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.fail(c, err, "Voice-to-text failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *AIHandler) fail(c *gin.Context, err error, msg string) {
	h.logger.ErrorContext(c.Request.Context(), msg, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, msg)
}
