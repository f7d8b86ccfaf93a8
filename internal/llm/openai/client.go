package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
)

// Extract implements llm.ScheduleExtractor over chat/completions. PDFs are
// attached as a file content part next to the instruction.
func (c *Client) Extract(ctx context.Context, model string, req llm.ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", ProviderName,
		"model", model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Content),
		"has_pdf", req.HasPDF(),
	)

	body := map[string]any{
		"model":       model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.SystemPrompt},
			{"role": "user", "content": userContent(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.poster.Post(ctx, endpoint, body)
	if err != nil {
		c.logger.Warn("llm.extract.http_error",
			"req_id", rid, "model", model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Warn("llm.extract.decode_error",
			"req_id", rid, "model", model, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: decode openai response: %v", llm.ErrMalformedResponse, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Warn("llm.extract.no_choices",
			"req_id", rid, "model", model, "raw", llm.TruncateForLog(string(raw), 256),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: no choices in openai response", llm.ErrMalformedResponse)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", llm.ErrMalformedResponse)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func userContent(req llm.ExtractRequest) any {
	prompt := llm.BuildUserPrompt(req)
	if !req.HasPDF() {
		return prompt
	}
	filename := req.FileName
	if filename == "" {
		filename = "schedule.pdf"
	}
	return []map[string]any{
		{"type": "text", "text": prompt},
		{"type": "file", "file": map[string]any{
			"filename":  filename,
			"file_data": llm.PDFDataURL(req.PDF),
		}},
	}
}
