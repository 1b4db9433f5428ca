package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyroom/internal/session"
	"studyroom/internal/studylog"
	"studyroom/internal/timer"
)

// SessionHandler drives server-side timers.
type SessionHandler struct {
	ctrl   *session.Controller
	logger *slog.Logger
}

func NewSessionHandler(ctrl *session.Controller, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{ctrl: ctrl, logger: logger}
}

func (h *SessionHandler) Status(c *gin.Context) {
	status, err := h.ctrl.Snapshot(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to load session")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SessionHandler) Start(c *gin.Context) {
	status, err := h.ctrl.Start(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to start session")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SessionHandler) Stop(c *gin.Context) {
	receipt, err := h.ctrl.Finish(c.Request.Context(), c.Param("userId"))
	if errors.Is(err, timer.ErrNotRunning) {
		respondError(c, http.StatusConflict, "No session running")
		return
	}
	if err != nil {
		h.fail(c, err, "Failed to save study session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Study log updated!",
		"log":      receipt.Entry,
		"archived": receipt.Archived,
		"partial":  receipt.Partial,
	})
}

func (h *SessionHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, studylog.ErrInvalidData) {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}
	h.logger.ErrorContext(c.Request.Context(), msg, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, msg)
}
