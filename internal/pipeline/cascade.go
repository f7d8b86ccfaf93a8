package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
)

// DefaultCallTimeout bounds a single model invocation.
const DefaultCallTimeout = 30 * time.Second

// ErrCascadeExhausted is returned when every model failed softly.
var ErrCascadeExhausted = errors.New("all extraction models failed")

// Attempt records one soft failure.
type Attempt struct {
	Model string
	Err   error
}

// CascadeResult describes the first model whose output parsed into an array.
type CascadeResult struct {
	Model    string
	Classes  []entity.ParsedClass
	Dropped  int
	Attempts []Attempt
}

// Cascade tries the configured models in order, one call at a time, and stops
// at the first structurally valid answer.
type Cascade struct {
	extractor   llm.ScheduleExtractor
	models      []string
	callTimeout time.Duration
	logger      *slog.Logger
}

func NewCascade(extractor llm.ScheduleExtractor, models []string, callTimeout time.Duration, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Cascade{
		extractor:   extractor,
		models:      append([]string(nil), models...),
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// Models returns a copy of the cascade order.
func (c *Cascade) Models() []string { return append([]string(nil), c.models...) }

// Run returns ErrCascadeExhausted (with the attempts filled in) when no model
// succeeded, a hard *common.AppError for unexpected service statuses, and the
// context error when ctx ends.
func (c *Cascade) Run(ctx context.Context, req llm.ExtractRequest) (CascadeResult, error) {
	var res CascadeResult
	reqID := common.RequestIDFromContext(ctx)

	for i, model := range c.models {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		c.logger.Debug("cascade.attempt.start", "req_id", reqID, "model", model, "position", i+1, "of", len(c.models))

		classes, dropped, err := c.attempt(ctx, model, req)
		if err == nil {
			res.Model, res.Classes, res.Dropped = model, classes, dropped
			c.logger.Info("cascade.attempt.ok",
				"req_id", reqID,
				"model", model,
				"classes", len(classes),
				"dropped", dropped,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return res, nil
		}
		if hard := c.classify(ctx, model, err); hard != nil {
			c.logger.Error("cascade.attempt.hard_fail",
				"req_id", reqID, "model", model, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return res, hard
		}
		res.Attempts = append(res.Attempts, Attempt{Model: model, Err: err})
		c.logger.Warn("cascade.attempt.soft_fail",
			"req_id", reqID, "model", model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	c.logger.Warn("cascade.exhausted", "req_id", reqID, "models", len(c.models))
	return res, ErrCascadeExhausted
}

func (c *Cascade) attempt(ctx context.Context, model string, req llm.ExtractRequest) ([]entity.ParsedClass, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	raw, err := c.extractor.Extract(callCtx, model, req)
	if err != nil {
		return nil, 0, err
	}
	return llm.NormalizeResponse(raw)
}

// classify returns nil for soft failures and the error to surface otherwise.
func (c *Cascade) classify(ctx context.Context, model string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var se *llm.StatusError
	if errors.As(err, &se) {
		if se.RateLimited() || se.BadRequest() {
			return nil
		}
		return common.NewAppError(
			"EXTRACTION_FAILED",
			fmt.Sprintf("extraction service returned status %d for model %s", se.Code, model),
			fmt.Errorf("%w: %w", common.ErrExtraction, se),
		)
	}
	// Malformed payloads, normalizer failures, transport errors and the
	// per-call deadline all move on to the next model.
	return nil
}
