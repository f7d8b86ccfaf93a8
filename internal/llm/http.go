package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseBytes caps what is read from a provider. A schedule answer is a
// few kilobytes; anything near this size is not a usable completion.
const maxResponseBytes = 8 << 20

// JSONPoster posts JSON to one provider over HTTP.
type JSONPoster struct {
	Provider string
	Client   *http.Client
	Headers  map[string]string
	Logger   *slog.Logger
}

// Post sends body to url and returns the raw response. Non-2xx answers come
// back as *StatusError; transport failures are returned unwrapped so the
// cascade can tell them apart from provider refusals.
func (p JSONPoster) Post(ctx context.Context, url string, body any) ([]byte, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	callID := uuid.NewString()
	start := time.Now()
	log := logger.With("call_id", callID, "provider", p.Provider)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", p.Provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", p.Provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}
	log.Debug("llm.http.request", "url", url, "content_length", len(payload))

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("llm.http.send_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warn("llm.http.body_close_error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", p.Provider, err)
	}
	log.Info("llm.http.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"retry_after", resp.Header.Get("Retry-After"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Provider: p.Provider, Code: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
