package models

import "time"

// StatisticsComputedEvent — сообщение брокеру о готовой дневной сводке.
type StatisticsComputedEvent struct {
	Date               string  `json:"date"`
	TotalAttempts      int64   `json:"total_attempts"`
	SuccessfulAttempts int64   `json:"successful_attempts"`
	FailedAttempts     int64   `json:"failed_attempts"`
	RunAttempts        int64   `json:"run_attempts"`
	UniqueUsers        int64   `json:"unique_users"`
	RunCount           int64   `json:"run_count"`
	SubmitCount        int64   `json:"submit_count"`
	SuccessRate        float64 `json:"success_rate"`
	Timestamp          int64   `json:"timestamp"`
}

// NewStatisticsComputedEvent снимает слепок сводки с отметкой времени публикации.
func NewStatisticsComputedEvent(stats *DailyStatistics) *StatisticsComputedEvent {
	return &StatisticsComputedEvent{
		Date:               stats.Date,
		TotalAttempts:      stats.TotalAttempts,
		SuccessfulAttempts: stats.SuccessfulAttempts,
		FailedAttempts:     stats.FailedAttempts,
		RunAttempts:        stats.RunAttempts,
		UniqueUsers:        stats.UniqueUsers,
		RunCount:           stats.RunCount,
		SubmitCount:        stats.SubmitCount,
		SuccessRate:        stats.SuccessRate,
		Timestamp:          time.Now().Unix(),
	}
}
