package assistant_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"studyroom/internal/assistant"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newClient(url string, retries int) *assistant.Client {
	return assistant.NewClient(assistant.Config{
		APIKey:           "secret",
		BaseURL:          url + "/chat/completions",
		TranscriptionURL: url + "/audio/transcriptions",
		Model:            "mistral-small",
		TranscribeModel:  "whisper-1",
		Timeout:          5 * time.Second,
		RetryMax:         retries,
	}, assistant.WithRetryWait(time.Millisecond, 5*time.Millisecond))
}

func TestPlanSendsPromptAndTrims(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  Day 1: limits  "}}]}`)
	}))
	defer srv.Close()

	plan, err := newClient(srv.URL, 0).Plan(t.Context(), "calculus")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan != "Day 1: limits" {
		t.Fatalf("unexpected plan %q", plan)
	}
	if got.Model != "mistral-small" || got.MaxTokens != 400 {
		t.Fatalf("unexpected request %#v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "Create a 7-day study plan for calculus." {
		t.Fatalf("unexpected prompt %#v", got.Messages)
	}
}

func TestSummarizeOmitsMaxTokens(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"short"}}]}`)
	}))
	defer srv.Close()

	summary, err := newClient(srv.URL, 0).Summarize(t.Context(), "a long chapter")
	if err != nil {
		t.Fatal(err)
	}
	if summary != "short" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if _, ok := raw["max_tokens"]; ok {
		t.Fatalf("summarize must not cap tokens, got %#v", raw)
	}
}

func TestAskRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"42"}}]}`)
	}))
	defer srv.Close()

	answer, err := newClient(srv.URL, 2).Ask(t.Context(), "meaning of life?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "42" || calls.Load() != 2 {
		t.Fatalf("answer=%q calls=%d", answer, calls.Load())
	}
}

func TestStatusErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"bad key"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 0).Ask(t.Context(), "hi")
	var statusErr *assistant.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 status error, got %v", err)
	}
}

func TestTranscribeUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF" || header.Filename != "note.webm" {
			t.Errorf("unexpected upload %q %q", data, header.Filename)
		}
		if r.FormValue("model") != "whisper-1" {
			t.Errorf("unexpected model %q", r.FormValue("model"))
		}
		_, _ = io.WriteString(w, `{"text":"review chapter three"}`)
	}))
	defer srv.Close()

	text, err := newClient(srv.URL, 0).Transcribe(t.Context(), "note.webm", strings.NewReader("RIFF"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "review chapter three" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestMissingKeyAndInput(t *testing.T) {
	c := assistant.NewClient(assistant.Config{})
	if _, err := c.Ask(t.Context(), "hi"); !errors.Is(err, assistant.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.Plan(t.Context(), "  "); !errors.Is(err, assistant.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
