package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"studyroom/internal/api"
	"studyroom/internal/clock"
	"studyroom/internal/session"
	"studyroom/internal/studylog"
	"studyroom/internal/testsupport"
)

type fakeAssistant struct {
	err        error
	lastTopic  string
	lastUpload string
}

func (f *fakeAssistant) Plan(_ context.Context, topic string) (string, error) {
	f.lastTopic = topic
	return "Day 1: " + topic, f.err
}

func (f *fakeAssistant) Ask(_ context.Context, q string) (string, error) {
	return "answer to " + q, f.err
}

func (f *fakeAssistant) Summarize(_ context.Context, text string) (string, error) {
	return "tl;dr", f.err
}

func (f *fakeAssistant) Transcribe(_ context.Context, filename string, audio io.Reader) (string, error) {
	data, _ := io.ReadAll(audio)
	f.lastUpload = filename + ":" + string(data)
	return "hello", f.err
}

func newRouter(t *testing.T, ai *fakeAssistant) *gin.Engine {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	repo := testsupport.MustOpenStore(t, cfg)
	fixed := &clock.Fixed{T: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := studylog.NewEngine(repo, studylog.WithClock(fixed), studylog.WithLogger(logger))
	ctrl := session.New(repo, engine, session.WithClock(fixed), session.WithLogger(logger))
	return api.SetupRouter(gin.TestMode, ctrl, ai, logger)
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestStudyLogRotationOverHTTP(t *testing.T) {
	r := newRouter(t, &fakeAssistant{})

	for i := 1; i <= 9; i++ {
		rec, body := do(t, r, http.MethodPost, "/api/study-log", `{"userId":"u1","duration":`+strconv.Itoa(i*10)+`}`)
		if rec.Code != http.StatusOK || body["message"] != "Study log updated!" {
			t.Fatalf("post %d: %d %v", i, rec.Code, body)
		}
	}

	rec, body := do(t, r, http.MethodGet, "/api/study-logs/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	logs := body["logs"].([]any)
	if len(logs) != 7 || body["streak"].(float64) != 7 {
		t.Fatalf("expected 7 logs with streak 7, got %d / %v", len(logs), body["streak"])
	}
	first := logs[0].(map[string]any)
	if first["duration"].(float64) != 30 {
		t.Fatalf("expected oldest remaining duration 30, got %v", first["duration"])
	}

	rec, body = do(t, r, http.MethodGet, "/api/study-history/u1", "")
	history := body["history"].([]any)
	if rec.Code != http.StatusOK || len(history) != 2 {
		t.Fatalf("expected 2 archived, got %d %v", rec.Code, body)
	}
	if history[0].(map[string]any)["duration"].(float64) != 20 {
		t.Fatalf("expected newest archived first, got %v", history[0])
	}

	rec, body = do(t, r, http.MethodDelete, "/api/study-history/u1", "")
	if rec.Code != http.StatusOK || body["message"] != "History deleted!" {
		t.Fatalf("delete history: %d %v", rec.Code, body)
	}
	_, body = do(t, r, http.MethodGet, "/api/study-history/u1", "")
	if len(body["history"].([]any)) != 0 {
		t.Fatalf("expected empty history, got %v", body)
	}
}

func TestStudyLogRejectsInvalidData(t *testing.T) {
	r := newRouter(t, &fakeAssistant{})
	for _, payload := range []string{
		`{"duration":30}`,
		`{"userId":"u1"}`,
		`{"userId":"","duration":5}`,
		`{"userId":"u1","duration":-5}`,
		`{"userId":"u1","duration":1e300}`,
		`{"userId":"u1","duration":-1e300}`,
		`{"userId":"u1","duration":2147483648}`,
		`not json`,
	} {
		rec, body := do(t, r, http.MethodPost, "/api/study-log", payload)
		if rec.Code != http.StatusBadRequest || body["error"] != "Invalid data" {
			t.Fatalf("payload %s: expected 400 Invalid data, got %d %v", payload, rec.Code, body)
		}
	}
	_, body := do(t, r, http.MethodGet, "/api/study-logs/u1", "")
	if len(body["logs"].([]any)) != 0 || body["streak"].(float64) != 0 {
		t.Fatalf("invalid posts must not write, got %v", body)
	}
}

func TestStudyLogAcceptsZeroAndFractions(t *testing.T) {
	r := newRouter(t, &fakeAssistant{})
	rec, body := do(t, r, http.MethodPost, "/api/study-log", `{"userId":"u1","duration":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("zero duration: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodPost, "/api/study-log", `{"userId":"u1","duration":12.9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fractional duration: %d %v", rec.Code, body)
	}
	if body["log"].(map[string]any)["duration"].(float64) != 12 {
		t.Fatalf("expected floored duration, got %v", body["log"])
	}
}

func TestSessionEndpoints(t *testing.T) {
	r := newRouter(t, &fakeAssistant{})

	rec, body := do(t, r, http.MethodPost, "/api/session/u1/stop", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("stop while idle: expected 409, got %d %v", rec.Code, body)
	}

	rec, body = do(t, r, http.MethodPost, "/api/session/u1/start", "")
	if rec.Code != http.StatusOK || body["running"] != true {
		t.Fatalf("start: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodGet, "/api/session/u1", "")
	if rec.Code != http.StatusOK || body["running"] != true || body["elapsed"].(float64) != 0 {
		t.Fatalf("status: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodPost, "/api/session/u1/stop", "")
	if rec.Code != http.StatusOK || body["message"] != "Study log updated!" {
		t.Fatalf("stop: %d %v", rec.Code, body)
	}
	_, body = do(t, r, http.MethodGet, "/api/study-logs/u1", "")
	if len(body["logs"].([]any)) != 1 {
		t.Fatalf("expected stopped session recorded, got %v", body)
	}
}

func TestAIRoutes(t *testing.T) {
	ai := &fakeAssistant{}
	r := newRouter(t, ai)

	rec, body := do(t, r, http.MethodPost, "/api/study-plan", `{}`)
	if rec.Code != http.StatusBadRequest || body["error"] != "Topic is required" {
		t.Fatalf("missing topic: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodPost, "/api/study-plan", `{"topic":"graphs"}`)
	if rec.Code != http.StatusOK || body["plan"] != "Day 1: graphs" {
		t.Fatalf("plan: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodPost, "/api/ask-ai", `{"question":"why?"}`)
	if rec.Code != http.StatusOK || body["answer"] != "answer to why?" {
		t.Fatalf("ask: %d %v", rec.Code, body)
	}
	rec, body = do(t, r, http.MethodPost, "/api/summarize", `{"text":"long"}`)
	if rec.Code != http.StatusOK || body["summary"] != "tl;dr" {
		t.Fatalf("summarize: %d %v", rec.Code, body)
	}

	ai.err = errors.New("upstream 503 with secret details")
	for path, msg := range map[string]string{
		"/api/study-plan": "Failed to generate plan",
		"/api/ask-ai":     "Failed to get AI response",
		"/api/summarize":  "Failed to summarize",
	} {
		rec, body := do(t, r, http.MethodPost, path, `{"topic":"x","question":"x","text":"x"}`)
		if rec.Code != http.StatusInternalServerError || body["error"] != msg {
			t.Fatalf("%s: expected 500 %q, got %d %v", path, msg, rec.Code, body)
		}
	}
}

func TestVoiceToText(t *testing.T) {
	ai := &fakeAssistant{}
	r := newRouter(t, ai)

	rec, body := do(t, r, http.MethodPost, "/api/voice-to-text", "")
	if rec.Code != http.StatusBadRequest || body["error"] != "No file uploaded" {
		t.Fatalf("missing upload: %d %v", rec.Code, body)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("OggS"))
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/voice-to-text", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"text":"hello"`) {
		t.Fatalf("voice-to-text: %d %s", res.Code, res.Body.String())
	}
	if ai.lastUpload != "clip.webm:OggS" {
		t.Fatalf("unexpected upload %q", ai.lastUpload)
	}
}
