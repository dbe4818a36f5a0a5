package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/practice-coach/backend/internal/models"
)

var (
	ErrMalformedConcepts = errors.New("malformed concepts")
	ErrBadTimestamp      = errors.New("bad timestamp")
)

// Layouts accepted for stored attempt timestamps. Values without a zone
// are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 attempt timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// DecodeConcepts decodes a JSON array of concept tags.
func DecodeConcepts(raw string) ([]string, error) {
	var concepts []string
	if err := json.Unmarshal([]byte(raw), &concepts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConcepts, err)
	}
	return concepts, nil
}

// EncodeConcepts is the inverse of DecodeConcepts. A nil slice encodes as [].
func EncodeConcepts(concepts []string) (string, error) {
	if concepts == nil {
		concepts = []string{}
	}
	b, err := json.Marshal(concepts)
	if err != nil {
		return "", fmt.Errorf("encode concepts: %w", err)
	}
	return string(b), nil
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type attemptRow struct {
	Concepts   string `db:"concepts"`
	Outcome    int    `db:"outcome"`
	Timestamp  string `db:"ts"`
	Difficulty int    `db:"difficulty"`
}

type problemRow struct {
	ProblemID  string `db:"problem_id"`
	Title      string `db:"title"`
	Difficulty int    `db:"difficulty"`
	Concepts   string `db:"concepts"`
}

func (r problemRow) toModel() (models.Problem, error) {
	concepts, err := DecodeConcepts(r.Concepts)
	if err != nil {
		return models.Problem{}, fmt.Errorf("problem %s: %w", r.ProblemID, err)
	}
	return models.Problem{
		ProblemID:  r.ProblemID,
		Title:      r.Title,
		Difficulty: models.Difficulty(r.Difficulty),
		Concepts:   concepts,
	}, nil
}

// ── Reads ───────────────────────────────────────────────

// FetchAttemptsWithConcepts returns every attempt of userID joined with its
// problem's concepts. Attempts on problems missing from the catalog are
// dropped by the join.
func (s *Store) FetchAttemptsWithConcepts(ctx context.Context, userID string) ([]models.AttemptRecord, error) {
	var rows []attemptRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT p.concepts, a.outcome, a.ts, p.difficulty
		 FROM attempts a
		 JOIN problems p ON a.problem_id = p.problem_id
		 WHERE a.user_id = ?
		 ORDER BY a.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch attempts: %w", err)
	}

	records := make([]models.AttemptRecord, 0, len(rows))
	for _, r := range rows {
		concepts, err := DecodeConcepts(r.Concepts)
		if err != nil {
			return nil, fmt.Errorf("fetch attempts: %w", err)
		}
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("fetch attempts: %w", err)
		}
		records = append(records, models.AttemptRecord{
			Concepts:   concepts,
			Passed:     r.Outcome == 1,
			Timestamp:  ts,
			Difficulty: models.Difficulty(r.Difficulty),
		})
	}
	return records, nil
}

// FetchUnattemptedProblems returns catalog problems userID has never
// attempted, ordered by problem_id.
func (s *Store) FetchUnattemptedProblems(ctx context.Context, userID string) ([]models.Problem, error) {
	var rows []problemRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT p.problem_id, p.title, p.difficulty, p.concepts
		 FROM problems p
		 WHERE p.problem_id NOT IN (SELECT DISTINCT problem_id FROM attempts WHERE user_id = ?)
		 ORDER BY p.problem_id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch unattempted problems: %w", err)
	}
	return toProblems(rows)
}

func (s *Store) ListProblems(ctx context.Context) ([]models.Problem, error) {
	var rows []problemRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT problem_id, title, difficulty, concepts FROM problems ORDER BY problem_id`)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return toProblems(rows)
}

func toProblems(rows []problemRow) ([]models.Problem, error) {
	problems := make([]models.Problem, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// ── Writes ──────────────────────────────────────────────

// UpsertProblem inserts p or replaces the stored problem with the same id.
// Attempts referencing the problem are left untouched.
func (s *Store) UpsertProblem(ctx context.Context, p models.Problem) error {
	concepts, err := EncodeConcepts(p.Concepts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO problems (problem_id, title, difficulty, concepts)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (problem_id)
		 DO UPDATE SET title = excluded.title, difficulty = excluded.difficulty,
		               concepts = excluded.concepts, updated_at = CURRENT_TIMESTAMP`),
		p.ProblemID, p.Title, int(p.Difficulty), concepts,
	)
	if err != nil {
		return fmt.Errorf("upsert problem %s: %w", p.ProblemID, err)
	}
	return nil
}

func (s *Store) InsertAttempt(ctx context.Context, a models.Attempt) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO attempts (user_id, problem_id, ts, outcome, attempts, minutes)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		a.UserID, a.ProblemID, a.Timestamp.UTC().Format(time.RFC3339), boolToOutcome(a.Passed), a.AttemptCount, a.MinutesSpent,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}
