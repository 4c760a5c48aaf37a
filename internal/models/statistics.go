package models

type DailyStatistics struct {
	Date               string  `json:"date" db:"date"`
	TotalAttempts      int64   `json:"total_attempts" db:"total_attempts"`
	SuccessfulAttempts int64   `json:"successful_attempts" db:"successful_attempts"`
	FailedAttempts     int64   `json:"failed_attempts" db:"failed_attempts"`
	RunAttempts        int64   `json:"run_attempts" db:"run_attempts"` // is_correct IS NULL
	UniqueUsers        int64   `json:"unique_users" db:"unique_users"`
	RunCount           int64   `json:"run_count" db:"run_count"`
	SubmitCount        int64   `json:"submit_count" db:"submit_count"`
	SuccessRate        float64 `json:"success_rate" db:"success_rate"`
}
