package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/schedule-ingest/internal/common"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS classes (
	id           uuid PRIMARY KEY,
	schedule_id  text NOT NULL,
	position     integer NOT NULL,
	course_name  text NOT NULL,
	course_code  text,
	professor    text,
	room_number  text,
	building     text,
	floor        text,
	start_time   text NOT NULL,
	end_time     text NOT NULL,
	days_of_week text[] NOT NULL,
	notes        text,
	created_at   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS classes_schedule_idx ON classes (schedule_id, position);`

type postgresSink struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects, ensures the schema exists and returns the sink.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (ClassSink, error) {
	pool, err := OpenPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &postgresSink{pool: pool, logger: logger}, nil
}

func (s *postgresSink) SaveClasses(ctx context.Context, scheduleID string, classes []entity.ParsedClass) (int, error) {
	if err := checkSave(scheduleID, classes); err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM classes WHERE schedule_id = $1`, scheduleID); err != nil {
		s.logger.Error("failed to clear schedule", "schedule_id", scheduleID, "error", err)
		return 0, err
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i, c := range classes {
		batch.Queue(`INSERT INTO classes
			(id, schedule_id, position, course_name, course_code, professor, room_number, building, floor,
			 start_time, end_time, days_of_week, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			newRowID(), scheduleID, i, c.CourseName,
			nullable(c.CourseCode), nullable(c.Professor), nullable(c.RoomNumber), nullable(c.Building), nullable(c.Floor),
			c.StartTime, c.EndTime, c.DaysOfWeek, nullable(c.Notes), now,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		s.logger.Error("failed to insert classes", "schedule_id", scheduleID, "error", err)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(classes), nil
}

func (s *postgresSink) ListClasses(ctx context.Context, scheduleID string) ([]entity.SavedClass, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, schedule_id, course_name, course_code, professor, room_number,
		building, floor, start_time, end_time, days_of_week, notes, created_at
		FROM classes WHERE schedule_id = $1 ORDER BY position`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.SavedClass{}
	for rows.Next() {
		var (
			sc                                       entity.SavedClass
			code, prof, room, building, floor, notes *string
		)
		if err := rows.Scan(&sc.ID, &sc.ScheduleID, &sc.CourseName, &code, &prof, &room,
			&building, &floor, &sc.StartTime, &sc.EndTime, &sc.DaysOfWeek, &notes, &sc.CreatedAt); err != nil {
			return nil, err
		}
		sc.CourseCode, sc.Professor, sc.RoomNumber = deref(code), deref(prof), deref(room)
		sc.Building, sc.Floor, sc.Notes = deref(building), deref(floor), deref(notes)
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *postgresSink) Ping(ctx context.Context) error {
	return HealthCheck(ctx, s.pool, 3*time.Second, s.logger)
}

func (s *postgresSink) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}
