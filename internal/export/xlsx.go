package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
)

const (
	classesSheet = "Classes"
	weekSheet    = "Week"
)

// Service renders parsed classes as downloadable files.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, now: time.Now}
}

// ClassesXLSX returns a workbook with one row per class and a weekly grid.
func (s *Service) ClassesXLSX(ctx context.Context, classes []entity.ParsedClass) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", classesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(weekSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(classesSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Course",
		"Code",
		"Days",
		"Start",
		"End",
		"Professor",
		"Location",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(classesSheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(classesSheet, 1, 1, style)
	}

	for i, c := range classes {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(classesSheet, cell, v)
		}
		write(1, c.CourseName)
		write(2, c.CourseCode)
		write(3, strings.Join(c.DaysOfWeek, ", "))
		write(4, c.StartTime)
		write(5, c.EndTime)
		write(6, c.Professor)
		write(7, c.Location())
		write(8, truncate(c.Notes, 140))
	}

	_ = f.SetColWidth(classesSheet, "A", "A", 32) // course
	_ = f.SetColWidth(classesSheet, "B", "B", 12)
	_ = f.SetColWidth(classesSheet, "C", "C", 30) // days
	_ = f.SetColWidth(classesSheet, "D", "E", 8)
	_ = f.SetColWidth(classesSheet, "F", "G", 24)
	_ = f.SetColWidth(classesSheet, "H", "H", 48) // notes

	if err := writeWeekGrid(f, classes); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(classes),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// writeWeekGrid lays classes out with one column per weekday, earliest first.
func writeWeekGrid(f *excelize.File, classes []entity.ParsedClass) error {
	days := constants.AllWeekdays()
	for i, d := range days {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(weekSheet, cell, string(d)); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(weekSheet, col, col, 28)
	}

	ordered := append([]entity.ParsedClass(nil), classes...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartTime < ordered[j].StartTime })

	for i, d := range days {
		row := 2
		for _, c := range ordered {
			if !hasDay(c, d) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(weekSheet, cell, fmt.Sprintf("%s-%s %s", c.StartTime, c.EndTime, c.CourseName)); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func hasDay(c entity.ParsedClass, d constants.Weekday) bool {
	for _, s := range c.DaysOfWeek {
		if s == string(d) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
