package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

// ClassSink stores accepted class records per schedule.
type ClassSink interface {
	// SaveClasses replaces every class stored under scheduleID, keeping the
	// order of classes, and returns the number of rows written.
	SaveClasses(ctx context.Context, scheduleID string, classes []entity.ParsedClass) (int, error)
	ListClasses(ctx context.Context, scheduleID string) ([]entity.SavedClass, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenSink opens the sink selected by cfg.Driver. An empty driver means no
// persistence and returns a nil sink.
func OpenSink(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (ClassSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "":
		logger.Info("persistence disabled")
		return nil, nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN, logger)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// checkSave rejects records that would violate the class invariant. The
// normalizer and heuristic parser never produce them; this guards direct
// callers of the sink.
func checkSave(scheduleID string, classes []entity.ParsedClass) error {
	if scheduleID == "" {
		return common.NewAppError("INVALID_INPUT", "schedule id is required", common.ErrInvalidInput)
	}
	for i, c := range classes {
		if c.CourseName == "" || c.StartTime == "" || c.EndTime == "" || len(c.DaysOfWeek) == 0 {
			return common.NewAppError("INVALID_INPUT", fmt.Sprintf("class %d is incomplete", i), common.ErrInvalidInput)
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func newRowID() uuid.UUID { return uuid.New() }
