package api

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyroom/internal/session"
	"studyroom/internal/studylog"
)

// StudyHandler serves the recent window and the archive.
type StudyHandler struct {
	ctrl   *session.Controller
	logger *slog.Logger
}

func NewStudyHandler(ctrl *session.Controller, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{ctrl: ctrl, logger: logger}
}

// maxDurationSeconds bounds posted durations so the float to int conversion
// is always defined.
const maxDurationSeconds = math.MaxInt32

type createLogReq struct {
	UserID   string   `json:"userId"`
	Duration *float64 `json:"duration"`
}

func (h *StudyHandler) ListLogs(c *gin.Context) {
	summary, err := h.ctrl.Summary(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Error fetching study logs")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *StudyHandler) CreateLog(c *gin.Context) {
	var req createLogReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Duration == nil {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}
	if d := *req.Duration; math.IsNaN(d) || d < 0 || d > maxDurationSeconds {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}

	receipt, err := h.ctrl.Record(c.Request.Context(), req.UserID, int(math.Floor(*req.Duration)))
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

func (h *StudyHandler) ListHistory(c *gin.Context) {
	history, err := h.ctrl.History(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *StudyHandler) DeleteHistory(c *gin.Context) {
	n, err := h.ctrl.ClearHistory(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err, "Failed to delete history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History deleted!", "deleted": n})
}

// fail maps validation errors to 400 and everything else to a generic 500.
func (h *StudyHandler) fail(c *gin.Context, err error, msg string) {
	if errors.Is(err, studylog.ErrInvalidData) {
		respondError(c, http.StatusBadRequest, "Invalid data")
		return
	}
	h.logger.ErrorContext(c.Request.Context(), msg, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, msg)
}
