package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-session-engine/internal/domain"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	Token          string             `bun:"token,pk"`
	UserID         string             `bun:"user_id,notnull"`
	QuizID         string             `bun:"quiz_id"`
	Status         string             `bun:"status,notnull"`
	Cause          string             `bun:"cause,notnull"`
	TotalQuestions int                `bun:"total_questions"`
	CorrectAnswers int                `bun:"correct_answers"`
	Percentage     int                `bun:"percentage"`
	Report         domain.ScoreReport `bun:"report,type:jsonb"`
	StartedAt      time.Time          `bun:"started_at"`
	FinalizedAt    time.Time          `bun:"finalized_at"`
}

// ResultStore persists finalized results (grade history) with bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveResult inserts a result once per session token.
func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) error {
	row := toRow(result)
	if _, err := s.db.NewInsert().Model(&row).On("CONFLICT (token) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) ListResults(ctx context.Context, userID string) ([]domain.Result, error) {
	var rows []resultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("finalized_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}

	results := make([]domain.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.Result{
			Token:       row.Token,
			UserID:      row.UserID,
			QuizID:      row.QuizID,
			Status:      domain.SessionStatus(row.Status),
			Cause:       domain.FinalizeCause(row.Cause),
			StartedAt:   row.StartedAt,
			FinalizedAt: row.FinalizedAt,
			Report:      row.Report,
		})
	}
	return results, nil
}

func toRow(result domain.Result) resultRow {
	return resultRow{
		Token:          result.Token,
		UserID:         result.UserID,
		QuizID:         result.QuizID,
		Status:         string(result.Status),
		Cause:          string(result.Cause),
		TotalQuestions: result.Report.Total,
		CorrectAnswers: result.Report.Correct,
		Percentage:     result.Report.Percentage,
		Report:         result.Report,
		StartedAt:      result.StartedAt,
		FinalizedAt:    result.FinalizedAt,
	}
}
