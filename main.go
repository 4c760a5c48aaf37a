package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ElenaPribylova/GRADER/internal/app"
	"github.com/ElenaPribylova/GRADER/internal/config"
	"github.com/ElenaPribylova/GRADER/internal/database"
	"github.com/ElenaPribylova/GRADER/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	// Инициализация логгера
	log := logger.New()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	// Дальше пишем и в stdout, и в ротируемый файл
	fileLog, logCloser := logger.NewWithFile(
		cfg.Logging.Level,
		cfg.Logging.Pretty,
		cfg.Logging.NoColor,
		cfg.Logging.Directory,
		cfg.Logging.RetentionDays,
		cfg.Logging.MaxSizeMB,
	)
	defer logCloser.Close()
	log = fileLog

	// Финальная строка пишется при любом исходе запуска
	defer func() {
		log.Info().Int("exit_code", code).Msg("ETL run ended")
	}()

	// Инициализация базы данных
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer db.Close()

	// Проверка соединения с БД
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		log.Error().Err(err).Msg("Failed to ping database")
		return 1
	}

	log.Info().Msg("Database connection established")

	application, err := app.New(cfg, log, db)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create application")
		return 1
	}
	defer application.Shutdown()

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	mode := "once"
	if len(args) > 0 {
		mode = args[0]
	}

	switch mode {
	case "once":
		if err := application.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("ETL run failed")
			return 1
		}
	case "schedule":
		if err := application.RunScheduled(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduler failed")
			return 1
		}
	default:
		log.Error().Str("mode", mode).Msg("Unknown mode, expected 'once' or 'schedule'")
		return 2
	}

	return 0
}
