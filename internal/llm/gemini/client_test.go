package gemini

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Temperature: 0.3,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestExtractReturnsText(t *testing.T) {
	var body string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"course_name\":\"Art\"}]"}]}}]}`))
	})

	out, err := c.Extract(context.Background(), "gemini-test", llm.ExtractRequest{FileName: "a.pdf", PDF: []byte("%PDF-1.7")})
	require.NoError(t, err)
	assert.Equal(t, `[{"course_name":"Art"}]`, out)
	assert.Contains(t, body, "inlineData")
	assert.Contains(t, body, "application/pdf")
	assert.Contains(t, body, "responseMimeType")
}

func TestExtractMapsAPIErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want int
	}{
		{"rate limited", 429, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, 429},
		{"bad request", 400, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`, 400},
		{"status only", 429, `{"error":{"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, 429},
		{"unauthenticated", 401, `{"error":{"code":401,"message":"key","status":"UNAUTHENTICATED"}}`, 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Extract(context.Background(), "gemini-test", llm.ExtractRequest{Content: "x"})
			var se *llm.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, se.Code)
			assert.Equal(t, ProviderName, se.Provider)
		})
	}
}

func TestExtractEmptyCandidatesIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Extract(context.Background(), "gemini-test", llm.ExtractRequest{Content: "x"})
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, nil)
	assert.Error(t, err)
}
