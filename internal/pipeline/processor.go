package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/extract"
	"github.com/joseph-ayodele/schedule-ingest/internal/heuristic"
	"github.com/joseph-ayodele/schedule-ingest/internal/llm"
	"github.com/joseph-ayodele/schedule-ingest/internal/repository"
)

// Warnings describing which strategy produced a result.
const (
	WarnNotConfigured = "AI extraction not configured; used heuristic parser"
	WarnDegraded      = "All AI models failed; used heuristic parser (reduced accuracy)"
	warnModelPrefix   = "Parsed with AI model: "
)

// ModelWarning is the warning recorded when model succeeded.
func ModelWarning(model string) string { return warnModelPrefix + model }

// Strategy reports which extraction strategy produced res.
func Strategy(res entity.ParseResult) string {
	for _, w := range res.Warnings {
		if strings.HasPrefix(w, warnModelPrefix) {
			return constants.StrategyAI
		}
	}
	return constants.StrategyHeuristic
}

// Config is the read-only extraction configuration injected at start-up.
type Config struct {
	HasCredential bool
	Models        []string
	CallTimeout   time.Duration
}

// Processor runs validation, the model cascade and the heuristic fallback.
type Processor struct {
	logger   *slog.Logger
	cascade *Cascade
	pdfText extract.TextExtractor
	sink    repository.ClassSink
}

// NewProcessor wires the pipeline. extractor may be nil, in which case every
// call goes to the heuristic parser; sink may be nil when nothing is saved.
func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	extractor llm.ScheduleExtractor,
	pdfText extract.TextExtractor,
	sink repository.ClassSink,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:  logger,
		pdfText: pdfText,
		sink:    sink,
	}
	if cfg.HasCredential && extractor != nil && len(cfg.Models) > 0 {
		p.cascade = NewCascade(extractor, cfg.Models, cfg.CallTimeout, logger)
	}
	return p
}

// ParseSchedule validates in and extracts its classes. Invalid input and hard
// extraction failures are returned as errors; everything else yields a result.
func (p *Processor) ParseSchedule(ctx context.Context, in RawInput) (entity.ParseResult, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()

	valid, err := ValidateInput(in)
	if err != nil {
		p.logger.Warn("pipeline.parse.invalid_input", "req_id", reqID, "error", err)
		return entity.ParseResult{}, err
	}

	p.logger.Info("pipeline.parse.start",
		"req_id", reqID,
		"schedule_id", common.ScheduleIDFromContext(ctx),
		"file", valid.FileName,
		"content_bytes", len(valid.FileContent),
		"pdf_bytes", len(valid.PDF),
	)
	res, err := p.parse(ctx, valid)
	if err != nil {
		p.logger.Error("pipeline.parse.failed", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ParseResult{}, err
	}
	p.logger.Info("pipeline.parse.ok",
		"req_id", reqID,
		"classes", len(res.Classes),
		"strategy", Strategy(res),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) parse(ctx context.Context, in ValidInput) (entity.ParseResult, error) {
	res := entity.NewParseResult()
	doc := in.Document()

	if p.cascade == nil {
		res.Classes = p.fallback(ctx, doc, &res)
		res.Warnings = append(res.Warnings, WarnNotConfigured)
		return res, nil
	}

	cres, err := p.cascade.Run(ctx, llm.ExtractRequest{
		FileName: in.FileName,
		Content:  in.FileContent,
		PDF:      in.PDF,
	})
	switch {
	case err == nil:
		res.Classes = append(res.Classes, cres.Classes...)
		res.Warnings = append(res.Warnings, ModelWarning(cres.Model))
		if cres.Dropped > 0 {
			p.logger.Info("pipeline.parse.dropped_records",
				"req_id", common.RequestIDFromContext(ctx), "model", cres.Model, "dropped", cres.Dropped)
		}
		return res, nil
	case errors.Is(err, ErrCascadeExhausted):
		p.logger.Warn("pipeline.parse.degraded",
			"req_id", common.RequestIDFromContext(ctx), "attempts", len(cres.Attempts))
		res.Classes = p.fallback(ctx, doc, &res)
		res.Warnings = append(res.Warnings, WarnDegraded)
		return res, nil
	default:
		return entity.ParseResult{}, err
	}
}

// fallback runs the heuristic parser on the uploaded text as is. A PDF upload
// without a text layer is read locally first.
func (p *Processor) fallback(ctx context.Context, doc extract.Document, res *entity.ParseResult) []entity.ParsedClass {
	text := doc.Content
	if strings.TrimSpace(text) == "" && doc.HasPDF() && p.pdfText != nil {
		tr, err := p.pdfText.Extract(ctx, doc)
		if err != nil {
			p.logger.Warn("pipeline.fallback.pdf_text_failed",
				"req_id", common.RequestIDFromContext(ctx), "file", doc.FileName, "error", err)
		} else {
			text = tr.Text
			res.Warnings = append(res.Warnings, tr.Warnings...)
		}
	}
	classes := heuristic.Parse(text)
	if classes == nil {
		classes = []entity.ParsedClass{}
	}
	return classes
}

// ImportSchedule parses in and replaces the classes stored under scheduleID
// with the result. It returns the result and the number of rows written.
func (p *Processor) ImportSchedule(ctx context.Context, scheduleID string, in RawInput) (entity.ParseResult, int, error) {
	if p.sink == nil {
		return entity.ParseResult{}, 0, common.NewAppError("PERSISTENCE_DISABLED", "no class store is configured", common.ErrInternal)
	}
	scheduleID = strings.TrimSpace(scheduleID)
	if err := common.NewValidator().Field("scheduleId", scheduleID, common.Required, common.MaxLength(128)).Err(); err != nil {
		return entity.ParseResult{}, 0, err
	}
	ctx = common.WithScheduleID(ctx, scheduleID)

	res, err := p.ParseSchedule(ctx, in)
	if err != nil {
		return entity.ParseResult{}, 0, err
	}
	n, err := p.sink.SaveClasses(ctx, scheduleID, slices.Clone(res.Classes))
	if err != nil {
		return res, 0, common.NewAppError("SAVE_FAILED", "could not save parsed classes", errors.Join(common.ErrDatabase, err))
	}
	p.logger.Info("pipeline.import.saved", "schedule_id", scheduleID, "rows", n)
	return res, n, nil
}

// ListClasses returns the classes stored under scheduleID.
func (p *Processor) ListClasses(ctx context.Context, scheduleID string) ([]entity.SavedClass, error) {
	if p.sink == nil {
		return nil, common.NewAppError("PERSISTENCE_DISABLED", "no class store is configured", common.ErrInternal)
	}
	return p.sink.ListClasses(ctx, scheduleID)
}
