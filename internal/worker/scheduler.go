package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/service"
)

// Формат границ окна, который понимает statistics API. Нули в дробной
// части не отбрасываются.
const windowLayout = "2006-01-02 15:04:05.000000"

// Scheduler запускает ETL по cron-расписанию. Каждый тик обрабатывает
// окно за предыдущие календарные сутки; если прошлый запуск ещё идёт,
// новый пропускается.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	etl    service.ETLService
	logger zerolog.Logger
}

func NewScheduler(spec string, etl service.ETLService, logger zerolog.Logger) *Scheduler {
	s := &Scheduler{
		spec:   spec,
		etl:    etl,
		logger: logger,
	}

	cronLogger := cron.PrintfLogger(&s.logger)
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	return s
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register cron job: %w", err)
	}

	s.cron.Start()

	s.logger.Info().Str("schedule", s.spec).Msg("Scheduler started")

	return nil
}

// Stop дожидается завершения уже запущенного прохода.
func (s *Scheduler) Stop() error {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.Info().Msg("Scheduler stopped")

	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start, end := PreviousDayWindow(time.Now())

	if err := s.etl.Run(ctx, start, end); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled ETL run failed")
	}
}

// PreviousDayWindow возвращает границы предыдущих календарных суток
// в строковом формате API.
func PreviousDayWindow(now time.Time) (string, string) {
	day := now.AddDate(0, 0, -1)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Microsecond)

	return start.Format(windowLayout), end.Format(windowLayout)
}
