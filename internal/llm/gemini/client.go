package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
)

const ProviderName = "gemini"

// Config for the Gemini client.
type Config struct {
	APIKey      string
	BaseURL     string // empty uses the public Gemini API endpoint
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.ScheduleExtractor with google.golang.org/genai.
type Client struct {
	cfg    Config
	genai  *genai.Client
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, genai: gc, logger: logger}, nil
}

func (c *Client) Provider() string { return ProviderName }

// Extract sends the instruction plus either the text or the inline PDF bytes.
func (c *Client) Extract(ctx context.Context, model string, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", ProviderName,
		"model", model,
		"text_len", len(req.Content),
		"has_pdf", req.HasPDF(),
	)

	parts := []*genai.Part{genai.NewPartFromText(llm.BuildUserPrompt(req))}
	if req.HasPDF() {
		parts = append(parts, genai.NewPartFromBytes(req.PDF, constants.MimePDF))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(llm.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		err = mapError(err)
		c.logger.Warn("llm.extract.http_error",
			"req_id", rid, "model", model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		c.logger.Warn("llm.extract.empty",
			"req_id", rid, "model", model,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: empty gemini response", llm.ErrMalformedResponse)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// grpcStatusCodes covers error bodies that name a status but omit the code.
var grpcStatusCodes = map[string]int{
	"INVALID_ARGUMENT":    http.StatusBadRequest,
	"FAILED_PRECONDITION": http.StatusBadRequest,
	"UNAUTHENTICATED":     http.StatusUnauthorized,
	"PERMISSION_DENIED":   http.StatusForbidden,
	"NOT_FOUND":           http.StatusNotFound,
	"RESOURCE_EXHAUSTED":  http.StatusTooManyRequests,
	"INTERNAL":            http.StatusInternalServerError,
	"UNAVAILABLE":         http.StatusServiceUnavailable,
}

func mapError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code := apiErr.Code
	if code == 0 {
		if c, ok := grpcStatusCodes[strings.ToUpper(apiErr.Status)]; ok {
			code = c
		} else {
			code = http.StatusInternalServerError
		}
	}
	return &llm.StatusError{Provider: ProviderName, Code: code, Body: apiErr.Message}
}
