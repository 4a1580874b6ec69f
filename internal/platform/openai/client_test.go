package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

func assistantBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{map[string]any{
				"type": "output_text",
				"text": text,
			}},
		}},
		"usage": map[string]any{"input_tokens": 12, "output_tokens": 30},
	})
	return string(b)
}

func newTestClient(t *testing.T, url string, retries int) Client {
	t.Helper()
	temp := 0.7
	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: url, Model: "test-model", MaxRetries: retries, Temperature: &temp})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

var schema = map[string]any{"type": "object"}

func TestGenerateJSON(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "ok", status: 200, body: assistantBody(`{"books":[]}`)},
		{name: "malformed json", status: 200, body: assistantBody(`{"books":`), wantErr: true},
		{name: "empty output", status: 200, body: `{"output":[]}`, wantErr: true},
		{name: "bad request", status: 400, body: `{"error":"nope"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != responsesPath {
					t.Errorf("path=%s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
					t.Errorf("auth header=%q", got)
				}
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			obj, err := newTestClient(t, srv.URL, 0).GenerateJSON(context.Background(), "sys", "user", "test_schema", schema)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", obj)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateJSON: %v", err)
			}
			if _, ok := obj["books"]; !ok {
				t.Fatalf("missing books key: %v", obj)
			}
		})
	}
}

func TestGenerateJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, assistantBody(`{"ok":true}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL, 1).GenerateJSON(context.Background(), "sys", "user", "s", schema); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls=%d want 2", calls.Load())
	}
}

func TestGenerateJSONDropsRejectedTemperature(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), `"temperature"`) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`)
			return
		}
		_, _ = io.WriteString(w, assistantBody(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	for i := 0; i < 2; i++ {
		if _, err := c.GenerateJSON(context.Background(), "sys", "user", "s", schema); err != nil {
			t.Fatalf("GenerateJSON #%d: %v", i, err)
		}
	}
	// first call: rejected + retried; second call omits temperature up front
	if calls.Load() != 3 {
		t.Fatalf("calls=%d want 3", calls.Load())
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
