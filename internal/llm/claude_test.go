package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestClaudeClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "claude-test" || req.MaxTokens != 100 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "summarize this" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"content":[{"type":"text","text":"  a summary  "}]}`)
	}))
	defer srv.Close()

	c := NewClaudeClient("test-key", srv.URL)
	defer c.Close()

	out, err := c.Complete(context.Background(), Request{
		Prompt: "summarize this", Model: "claude-test", MaxTokens: 100, Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a summary" {
		t.Errorf("got %q, want %q", out, "a summary")
	}
}

func TestClaudeClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	_, err := NewClaudeClient("k", srv.URL).Complete(context.Background(), Request{Prompt: "p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Provider != "anthropic" {
		t.Errorf("unexpected error fields: %+v", apiErr)
	}
}

func TestClaudeClient_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"content":[]}`)
	}))
	defer srv.Close()

	_, err := NewClaudeClient("k", srv.URL).Complete(context.Background(), Request{Prompt: "p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
}

type stubClient struct {
	out string
	err error
}

func (s stubClient) Complete(context.Context, Request) (string, error) {
	return s.out, s.err
}

func TestInstrumented_RecordsCalls(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ok := Instrument(stubClient{out: "fine"}, stats, log)
	if out, err := ok.Complete(context.Background(), Request{}); err != nil || out != "fine" {
		t.Fatalf("got %q, %v", out, err)
	}
	bad := Instrument(stubClient{err: &APIError{Provider: "x", StatusCode: 500}}, stats, log)
	if _, err := bad.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}

	snap := stats.Snapshot()
	if snap.Count != 2 || snap.Errors != 1 {
		t.Errorf("snapshot = %+v, want count=2 errors=1", snap)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "nope"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	c, err := New(context.Background(), Options{Provider: "anthropic", APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(*ClaudeClient); !ok {
		t.Errorf("expected *ClaudeClient, got %T", c)
	}
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{Provider: "openrouter", StatusCode: 502, Message: "bad gateway"}
	if got := err.Error(); got != "openrouter api status 502: bad gateway" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("dial tcp: refused")
	wrapped := &APIError{Provider: "gemini", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("APIError should unwrap to its cause")
	}
}

func TestAPIError_TruncatesByRune(t *testing.T) {
	msg := strings.Repeat("ত্রুটি", 100)
	err := &APIError{Provider: "anthropic", StatusCode: 400, Message: msg}
	got := err.Error()
	if !utf8.ValidString(got) {
		t.Fatalf("Error() is not valid UTF-8: %q", got)
	}
	body := strings.TrimPrefix(got, "anthropic api status 400: ")
	if n := utf8.RuneCountInString(strings.TrimSuffix(body, "...")); n != 200 {
		t.Errorf("message runes = %d, want 200", n)
	}
	if truncate("short", 200) != "short" {
		t.Error("short message should be unchanged")
	}
}
