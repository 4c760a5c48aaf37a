package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/models"
)

const (
	// Число колонок в multi-row INSERT; страница держит количество
	// placeholder'ов заведомо ниже лимита протокола (65535).
	insertColumns  = 7
	insertPageSize = 500
)

type AttemptRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkInsert(ctx context.Context, attempts []models.Attempt) (int64, error)
	GetDailyStatistics(ctx context.Context, date string) (*models.DailyStatistics, error)
}

type attemptRepository struct {
	*PostgresRepository
}

func NewAttemptRepository(db *sql.DB, logger zerolog.Logger) AttemptRepository {
	return &attemptRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// EnsureSchema идемпотентно создаёт таблицу и индексы, безопасно
// вызывать на каждом запуске.
func (r *attemptRepository) EnsureSchema(ctx context.Context) error {
	tableQuery := `
		CREATE TABLE IF NOT EXISTS grader_attempts (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			oauth_consumer_key VARCHAR(255),
			lis_result_sourcedid TEXT,
			lis_outcome_service_url TEXT,
			is_correct BOOLEAN,
			attempt_type VARCHAR(50) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			loaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`

	indexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_user_id ON grader_attempts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_created_at ON grader_attempts(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_type ON grader_attempts(attempt_type)`,
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tableQuery); err != nil {
		return err
	}

	for _, query := range indexQueries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Debug().Msg("Schema ensured")

	return nil
}

// BulkInsert грузит все записи в одной транзакции: либо легли все,
// либо ни одной.
func (r *attemptRepository) BulkInsert(ctx context.Context, attempts []models.Attempt) (int64, error) {
	if len(attempts) == 0 {
		return 0, nil
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(attempts); start += insertPageSize {
		end := start + insertPageSize
		if end > len(attempts) {
			end = len(attempts)
		}

		inserted, err := insertPage(ctx, tx, attempts[start:end])
		if err != nil {
			return 0, err
		}
		total += inserted
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return total, nil
}

func insertPage(ctx context.Context, tx *sql.Tx, attempts []models.Attempt) (int64, error) {
	placeholders := make([]string, 0, len(attempts))
	args := make([]any, 0, len(attempts)*insertColumns)

	for i, attempt := range attempts {
		base := i * insertColumns
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args,
			attempt.UserID,
			attempt.OAuthConsumerKey,
			attempt.LisResultSourcedID,
			attempt.LisOutcomeServiceURL,
			attempt.IsCorrect,
			attempt.AttemptType,
			attempt.CreatedAt,
		)
	}

	query := `
		INSERT INTO grader_attempts
		(user_id, oauth_consumer_key, lis_result_sourcedid, lis_outcome_service_url,
		 is_correct, attempt_type, created_at)
		VALUES ` + strings.Join(placeholders, ", ")

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// GetDailyStatistics считает агрегаты одним запросом. Если за дату
// нет ни одной записи, возвращает nil без ошибки.
func (r *attemptRepository) GetDailyStatistics(ctx context.Context, date string) (*models.DailyStatistics, error) {
	query := `
		SELECT
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE is_correct = true) as success,
			COUNT(*) FILTER (WHERE is_correct = false) as failed,
			COUNT(*) FILTER (WHERE is_correct IS NULL) as runs,
			COUNT(DISTINCT user_id) as users,
			COUNT(*) FILTER (WHERE attempt_type = 'run') as run_cnt,
			COUNT(*) FILTER (WHERE attempt_type = 'submit') as submit_cnt
		FROM grader_attempts
		WHERE DATE(created_at) = $1
		HAVING COUNT(*) > 0
	`

	stats := &models.DailyStatistics{Date: date}

	err := r.db.QueryRowContext(ctx, query, date).Scan(
		&stats.TotalAttempts,
		&stats.SuccessfulAttempts,
		&stats.FailedAttempts,
		&stats.RunAttempts,
		&stats.UniqueUsers,
		&stats.RunCount,
		&stats.SubmitCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Debug().Str("date", date).Msg("No attempts for the date")
			return nil, nil
		}
		return nil, err
	}

	rate := 0.0
	if stats.SubmitCount > 0 {
		rate = float64(stats.SuccessfulAttempts) / float64(stats.SubmitCount) * 100
	}
	stats.SuccessRate = math.Round(rate*100) / 100

	return stats, nil
}
