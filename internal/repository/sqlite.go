package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS classes (
	id           TEXT PRIMARY KEY,
	schedule_id  TEXT NOT NULL,
	position     INTEGER NOT NULL,
	course_name  TEXT NOT NULL,
	course_code  TEXT,
	professor    TEXT,
	room_number  TEXT,
	building     TEXT,
	floor        TEXT,
	start_time   TEXT NOT NULL,
	end_time     TEXT NOT NULL,
	days_of_week TEXT NOT NULL,
	notes        TEXT,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS classes_schedule_idx ON classes (schedule_id, position);`

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
}

type sqliteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory store held on a single connection.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (ClassSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	for _, p := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("opened sqlite store", "path", path)
	return &sqliteSink{db: db, logger: logger}, nil
}

func (s *sqliteSink) SaveClasses(ctx context.Context, scheduleID string, classes []entity.ParsedClass) (int, error) {
	if err := checkSave(scheduleID, classes); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE schedule_id = ?`, scheduleID); err != nil {
		s.logger.Error("failed to clear schedule", "schedule_id", scheduleID, "error", err)
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO classes
		(id, schedule_id, position, course_name, course_code, professor, room_number, building, floor,
		 start_time, end_time, days_of_week, notes, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, c := range classes {
		days, err := json.Marshal(c.DaysOfWeek)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx,
			newRowID().String(), scheduleID, i, c.CourseName,
			nullable(c.CourseCode), nullable(c.Professor), nullable(c.RoomNumber), nullable(c.Building), nullable(c.Floor),
			c.StartTime, c.EndTime, string(days), nullable(c.Notes), now,
		); err != nil {
			s.logger.Error("failed to insert class", "schedule_id", scheduleID, "position", i, "error", err)
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(classes), nil
}

func (s *sqliteSink) ListClasses(ctx context.Context, scheduleID string) ([]entity.SavedClass, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, schedule_id, course_name, course_code, professor, room_number,
		building, floor, start_time, end_time, days_of_week, notes, created_at
		FROM classes WHERE schedule_id = ? ORDER BY position`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.SavedClass{}
	for rows.Next() {
		var (
			sc                                       entity.SavedClass
			id, days, created                        string
			code, prof, room, building, floor, notes sql.NullString
		)
		if err := rows.Scan(&id, &sc.ScheduleID, &sc.CourseName, &code, &prof, &room,
			&building, &floor, &sc.StartTime, &sc.EndTime, &days, &notes, &created); err != nil {
			return nil, err
		}
		if sc.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("row id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(days), &sc.DaysOfWeek); err != nil {
			return nil, fmt.Errorf("days_of_week: %w", err)
		}
		if sc.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
		sc.CourseCode, sc.Professor, sc.RoomNumber = code.String, prof.String, room.String
		sc.Building, sc.Floor, sc.Notes = building.String, floor.String, notes.String
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *sqliteSink) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteSink) Close() error { return s.db.Close() }
