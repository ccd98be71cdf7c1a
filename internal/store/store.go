package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/prepwise/prepwise/internal/report"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Store archives generated reports in Postgres.
type Store struct {
	DB *sql.DB
}

// NewWithDSN constructs the Store using an explicit Postgres DSN.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// SavedReport is one archived pipeline outcome.
type SavedReport struct {
	ID             string                   `json:"id"`
	Student        string                   `json:"student"`
	Score          int                      `json:"score"`
	TotalQuestions int                      `json:"total_questions"`
	Accuracy       float64                  `json:"accuracy"`
	ReportData     report.PerformanceReport `json:"report_data"`
	Analysis       string                   `json:"analysis"`
	Degraded       bool                     `json:"degraded"`
	CreatedAt      time.Time                `json:"created_at"`
}

// SaveReport persists one pipeline outcome and returns its ID.
func (s *Store) SaveReport(ctx context.Context, data report.PerformanceReport, resp report.ReportResponse) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal report data: %w", err)
	}
	id := uuid.NewString()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO reports (id, student, score, total_questions, accuracy, report_data, analysis, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		id, data.StudentName, data.Score, data.TotalQuestions, data.Accuracy, payload, resp.Analysis, resp.Degraded,
	)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}
	return id, nil
}

// GetReport fetches one archived report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (SavedReport, error) {
	var (
		out     SavedReport
		payload []byte
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, student, score, total_questions, accuracy, report_data, analysis, degraded, created_at
		FROM reports WHERE id = $1`, id,
	).Scan(&out.ID, &out.Student, &out.Score, &out.TotalQuestions, &out.Accuracy, &payload, &out.Analysis, &out.Degraded, &out.CreatedAt)
	if err == sql.ErrNoRows {
		return SavedReport{}, ErrNotFound
	}
	if err != nil {
		return SavedReport{}, fmt.Errorf("select report: %w", err)
	}
	if err := json.Unmarshal(payload, &out.ReportData); err != nil {
		return SavedReport{}, fmt.Errorf("unmarshal report data: %w", err)
	}
	return out, nil
}

// ListReports returns the most recent archived reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]SavedReport, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, student, score, total_questions, accuracy, report_data, analysis, degraded, created_at
		FROM reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []SavedReport
	for rows.Next() {
		var (
			r       SavedReport
			payload []byte
		)
		if err := rows.Scan(&r.ID, &r.Student, &r.Score, &r.TotalQuestions, &r.Accuracy, &payload, &r.Analysis, &r.Degraded, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &r.ReportData); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
