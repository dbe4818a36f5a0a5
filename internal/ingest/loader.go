// Package ingest bulk-loads problems and attempts from CSV or Excel
// workbooks into the store.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/practice-coach/backend/internal/models"
	"github.com/practice-coach/backend/internal/platform/logger"
	"github.com/practice-coach/backend/internal/skills"
	"github.com/xuri/excelize/v2"
)

var (
	problemColumns = []string{"problem_id", "title", "difficulty", "concepts"}
	attemptColumns = []string{"user_id", "problem_id", "timestamp", "outcome", "attempts", "time_spent_minutes"}
)

// Writer is the write side of the store.
type Writer interface {
	UpsertProblem(ctx context.Context, p models.Problem) error
	InsertAttempt(ctx context.Context, a models.Attempt) error
}

// Result holds the outcome of one load.
type Result struct {
	Processed int
	Inserted  int
	Skipped   int
	Errors    []string
}

func (r *Result) fail(rowNum int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
}

type Loader struct {
	writer Writer
	sheet  string
	log    *logger.Logger
}

// NewLoader returns a Loader writing through w. sheet selects the workbook
// sheet for .xlsx input; empty means the first sheet.
func NewLoader(w Writer, sheet string, log *logger.Logger) *Loader {
	return &Loader{writer: w, sheet: sheet, log: log.With("component", "ingest")}
}

// LoadProblems upserts every problem row in path.
func (l *Loader) LoadProblems(ctx context.Context, path string) (*Result, error) {
	return l.load(ctx, path, problemColumns, func(rec map[string]string) error {
		p, err := ParseProblemRow(rec)
		if err != nil {
			return err
		}
		return l.writer.UpsertProblem(ctx, p)
	})
}

// LoadAttempts inserts every attempt row in path.
func (l *Loader) LoadAttempts(ctx context.Context, path string) (*Result, error) {
	return l.load(ctx, path, attemptColumns, func(rec map[string]string) error {
		a, err := ParseAttemptRow(rec)
		if err != nil {
			return err
		}
		return l.writer.InsertAttempt(ctx, a)
	})
}

func (l *Loader) load(ctx context.Context, path string, required []string, apply func(map[string]string) error) (*Result, error) {
	data, err := readRows(path, l.sheet)
	if err != nil {
		return nil, err
	}
	rows := data.rows
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}

	cols, err := mapHeader(rows[0], required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if data.serialDates {
		if i, ok := cols["timestamp"]; ok {
			convertSerialDates(rows[1:], i, data.date1904)
		}
	}

	result := &Result{Errors: make([]string, 0)}
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isBlank(row) {
			continue
		}

		rowNum := i + 2
		result.Processed++

		if err := apply(cols.record(row)); err != nil {
			result.fail(rowNum, err)
			continue
		}
		result.Inserted++
	}

	l.log.Info("file loaded",
		"path", path,
		"processed", result.Processed,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
	)
	return result, nil
}

// ── Row parsing ──────────────────────────────────────────

// ParseProblemRow converts a header-keyed row into a Problem. concepts must
// be a JSON array of strings.
func ParseProblemRow(rec map[string]string) (models.Problem, error) {
	id := rec["problem_id"]
	if id == "" {
		return models.Problem{}, errors.New("problem_id is required")
	}

	difficulty, err := strconv.Atoi(rec["difficulty"])
	if err != nil {
		return models.Problem{}, fmt.Errorf("difficulty %q is not an integer", rec["difficulty"])
	}

	concepts, err := skills.DecodeConcepts(rec["concepts"])
	if err != nil {
		return models.Problem{}, err
	}

	return models.Problem{
		ProblemID:  id,
		Title:      rec["title"],
		Difficulty: models.Difficulty(difficulty),
		Concepts:   concepts,
	}, nil
}

// ParseAttemptRow converts a header-keyed row into an Attempt. A blank
// time_spent_minutes reads as 0 and a blank attempts as 1.
func ParseAttemptRow(rec map[string]string) (models.Attempt, error) {
	if rec["user_id"] == "" || rec["problem_id"] == "" {
		return models.Attempt{}, errors.New("user_id and problem_id are required")
	}

	ts, err := skills.ParseTimestamp(rec["timestamp"])
	if err != nil {
		return models.Attempt{}, err
	}

	var passed bool
	switch rec["outcome"] {
	case "1":
		passed = true
	case "0":
	default:
		return models.Attempt{}, fmt.Errorf("outcome %q must be 0 or 1", rec["outcome"])
	}

	count, err := intOr(rec["attempts"], 1)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("attempts: %w", err)
	}
	minutes, err := intOr(rec["time_spent_minutes"], 0)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("time_spent_minutes: %w", err)
	}

	return models.Attempt{
		UserID:       rec["user_id"],
		ProblemID:    rec["problem_id"],
		Timestamp:    ts,
		Passed:       passed,
		AttemptCount: count,
		MinutesSpent: minutes,
	}, nil
}

func intOr(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return v, nil
}

// ── File reading ─────────────────────────────────────────

type header map[string]int

func mapHeader(row []string, required []string) (header, error) {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := h[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return h, nil
}

// record keys a row by column name. Excel drops trailing empty cells, so
// short rows read as blanks.
func (h header) record(row []string) map[string]string {
	rec := make(map[string]string, len(h))
	for name, i := range h {
		if i < len(row) {
			rec[name] = strings.TrimSpace(row[i])
		} else {
			rec[name] = ""
		}
	}
	return rec
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sheetData is a file's rows as text. Workbooks are read with raw cell
// values, so date cells hold Excel serial numbers (serialDates).
type sheetData struct {
	rows        [][]string
	serialDates bool
	date1904    bool
}

func readRows(path, sheet string) (sheetData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err := readCSV(path)
		return sheetData{rows: rows}, err
	case ".xlsx", ".xlsm":
		return readExcel(path, sheet)
	default:
		return sheetData{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// convertSerialDates rewrites numeric cells in column col as RFC3339
// timestamps. Text cells are left for ParseTimestamp.
func convertSerialDates(rows [][]string, col int, date1904 bool) {
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}
		ts, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			continue
		}
		row[col] = ts.Round(time.Millisecond).Format(time.RFC3339Nano)
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readExcel(path, sheet string) (sheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return sheetData{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheetData{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	data := sheetData{rows: rows, serialDates: true}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		data.date1904 = *props.Date1904
	}
	return data, nil
}
