package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/repository"
	"github.com/ElenaPribylova/GRADER/internal/service/integration"
	"github.com/ElenaPribylova/GRADER/internal/service/validator"
)

// ETLService выполняет один проход: выгрузка попыток из статистического API,
// валидация, загрузка в Postgres и публикация дневной сводки.
type ETLService interface {
	Run(ctx context.Context, start, end string) error
}

type etlService struct {
	client      integration.StatisticsClient
	validator   *validator.Validator
	attemptRepo repository.AttemptRepository
	publishers  []integration.StatsPublisher
	logger      zerolog.Logger
}

func NewETLService(
	client integration.StatisticsClient,
	validator *validator.Validator,
	attemptRepo repository.AttemptRepository,
	publishers []integration.StatsPublisher,
	logger zerolog.Logger,
) ETLService {
	return &etlService{
		client:      client,
		validator:   validator,
		attemptRepo: attemptRepo,
		publishers:  publishers,
		logger:      logger,
	}
}

// Run обрабатывает окно [start, end]. Ненулевая ошибка возвращается только
// при сбое на стадии загрузки: до неё ничего не записано и перезапуск
// безопасен, после неё данные уже лежат в базе и терять их незачем.
func (s *etlService) Run(ctx context.Context, start, end string) error {
	// run_id связывает строки логов одного прохода.
	log := s.logger.With().Str("run_id", uuid.New().String()).Logger()

	log.Info().Str("start", start).Str("end", end).Msg("ETL run started")

	records, err := s.client.FetchAttempts(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch attempts")
		return nil
	}

	if len(records) == 0 {
		log.Info().Msg("No records in the window, nothing to do")
		return nil
	}

	attempts, rejected := s.validator.ProcessBatch(records)
	if len(attempts) == 0 {
		log.Warn().Int("rejected", rejected).Msg("All records rejected, nothing to load")
		return nil
	}

	if err := s.attemptRepo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	inserted, err := s.attemptRepo.BulkInsert(ctx, attempts)
	if err != nil {
		return fmt.Errorf("failed to load attempts: %w", err)
	}

	log.Info().
		Int64("inserted", inserted).
		Int("rejected", rejected).
		Msg("Attempts loaded")

	// Статистика считается по дате начала окна.
	statsDate := strings.SplitN(start, " ", 2)[0]

	stats, err := s.attemptRepo.GetDailyStatistics(ctx, statsDate)
	if err != nil {
		log.Error().Err(err).Str("date", statsDate).Msg("Failed to compute daily statistics")
		return nil
	}

	if stats == nil {
		log.Info().Str("date", statsDate).Msg("No statistics for the date, skipping publication")
		return nil
	}

	log.Info().
		Str("date", stats.Date).
		Int64("total_attempts", stats.TotalAttempts).
		Int64("successful_attempts", stats.SuccessfulAttempts).
		Int64("failed_attempts", stats.FailedAttempts).
		Int64("run_attempts", stats.RunAttempts).
		Int64("unique_users", stats.UniqueUsers).
		Int64("run_count", stats.RunCount).
		Int64("submit_count", stats.SubmitCount).
		Float64("success_rate", stats.SuccessRate).
		Msg("Daily statistics computed")

	for _, publisher := range s.publishers {
		if err := publisher.Publish(ctx, stats); err != nil {
			log.Error().
				Err(err).
				Str("publisher", publisher.Name()).
				Msg("Failed to publish statistics")
		}
	}

	return nil
}
