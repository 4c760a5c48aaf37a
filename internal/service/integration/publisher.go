package integration

import (
	"context"

	"github.com/ElenaPribylova/GRADER/internal/models"
)

// StatsPublisher принимает одну строку дневной статистики. Публикация
// выполняется по принципу best effort: её ошибка логируется, но не
// влияет на исход запуска.
type StatsPublisher interface {
	Name() string
	Publish(ctx context.Context, stats *models.DailyStatistics) error
}

type nopPublisher struct{}

// NewNopPublisher возвращает заглушку для выключенной интеграции.
func NewNopPublisher() StatsPublisher {
	return nopPublisher{}
}

func (nopPublisher) Name() string {
	return "nop"
}

func (nopPublisher) Publish(ctx context.Context, stats *models.DailyStatistics) error {
	return nil
}
