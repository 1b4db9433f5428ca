// Package api exposes study logs, timers, and the assistant over HTTP.
package api

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"studyroom/internal/session"
)

// Assistant is the text and speech collaborator behind the AI routes.
type Assistant interface {
	Plan(ctx context.Context, topic string) (string, error)
	Ask(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// SetupRouter configures the gin engine and registers every route.
func SetupRouter(mode string, ctrl *session.Controller, ai Assistant, logger *slog.Logger) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())

	api := r.Group("/api")

	studyHandler := NewStudyHandler(ctrl, logger)
	api.GET("/study-logs/:userId", studyHandler.ListLogs)
	api.POST("/study-log", studyHandler.CreateLog)
	api.GET("/study-history/:userId", studyHandler.ListHistory)
	api.DELETE("/study-history/:userId", studyHandler.DeleteHistory)

	sessionHandler := NewSessionHandler(ctrl, logger)
	api.GET("/session/:userId", sessionHandler.Status)
	api.POST("/session/:userId/start", sessionHandler.Start)
	api.POST("/session/:userId/stop", sessionHandler.Stop)

	aiHandler := NewAIHandler(ai, logger)
	api.POST("/study-plan", aiHandler.StudyPlan)
	api.POST("/ask-ai", aiHandler.Ask)
	api.POST("/summarize", aiHandler.Summarize)
	api.POST("/voice-to-text", aiHandler.VoiceToText)

	return r
}
