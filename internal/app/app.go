package app

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/config"
	"github.com/ElenaPribylova/GRADER/internal/repository"
	"github.com/ElenaPribylova/GRADER/internal/service"
	"github.com/ElenaPribylova/GRADER/internal/service/integration"
	"github.com/ElenaPribylova/GRADER/internal/service/validator"
	"github.com/ElenaPribylova/GRADER/internal/worker"
)

type App struct {
	logger    zerolog.Logger
	config    *config.Config
	db        *sql.DB
	etl       service.ETLService
	scheduler *worker.Scheduler
	rabbitmq  integration.RabbitMQClient
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	attemptRepo := repository.NewAttemptRepository(db, log)

	statsClient := integration.NewStatisticsClient(
		cfg.API.URL,
		cfg.API.Client,
		cfg.API.ClientKey,
		cfg.API.Timeout,
		log,
	)

	attemptValidator := validator.New(log)

	publishers := []integration.StatsPublisher{newSheetsPublisher(cfg, log)}

	var rabbitClient integration.RabbitMQClient
	if cfg.RabbitMQ.Enabled {
		var err error
		rabbitClient, err = integration.NewRabbitMQClient(
			cfg.RabbitMQ.URL,
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.RoutingKey,
			cfg.RabbitMQ.QueueName,
			log,
		)
		if err != nil {
			return nil, err
		}

		publishers = append(publishers, rabbitClient)
	}

	etl := service.NewETLService(
		statsClient,
		attemptValidator,
		attemptRepo,
		publishers,
		log,
	)

	scheduler := worker.NewScheduler(cfg.Schedule.Cron, etl, log)

	return &App{
		logger:    log,
		config:    cfg,
		db:        db,
		etl:       etl,
		scheduler: scheduler,
		rabbitmq:  rabbitClient,
	}, nil
}

// RunOnce обрабатывает одно окно, заданное конфигурацией.
func (a *App) RunOnce(ctx context.Context) error {
	return a.etl.Run(ctx, a.config.Window.Start, a.config.Window.End)
}

// RunScheduled держит процесс живым и гоняет ETL по cron-расписанию
// до отмены контекста.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return a.scheduler.Stop()
}

func (a *App) Shutdown() error {
	if a.rabbitmq != nil {
		if err := a.rabbitmq.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	return nil
}

// newSheetsPublisher выбирает реализацию по конфигурации: выключенная
// интеграция и отсутствующий файл credentials дают заглушку, а не
// ошибку.
func newSheetsPublisher(cfg *config.Config, log zerolog.Logger) integration.StatsPublisher {
	if !cfg.Sheets.Enabled {
		log.Info().Msg("Google Sheets publishing is disabled")
		return integration.NewNopPublisher()
	}

	if _, err := os.Stat(cfg.Sheets.CredentialsFile); err != nil {
		log.Warn().
			Str("file", cfg.Sheets.CredentialsFile).
			Msg("Credentials file not found, Google Sheets publishing disabled")
		return integration.NewNopPublisher()
	}

	return integration.NewSheetsPublisher(
		cfg.Sheets.CredentialsFile,
		cfg.Sheets.SpreadsheetName,
		cfg.Sheets.WorksheetName,
		log,
	)
}
