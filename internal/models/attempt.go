package models

import (
	"time"
)

// RawRecord — запись статистики в том виде, в котором её отдаёт API.
// Числовые значения приходят как json.Number (декодер работает с UseNumber).
type RawRecord map[string]any

type Attempt struct {
	UserID               string    `json:"user_id" db:"user_id"`
	OAuthConsumerKey     string    `json:"oauth_consumer_key" db:"oauth_consumer_key"`
	LisResultSourcedID   string    `json:"lis_result_sourcedid" db:"lis_result_sourcedid"`
	LisOutcomeServiceURL string    `json:"lis_outcome_service_url" db:"lis_outcome_service_url"`
	IsCorrect            *bool     `json:"is_correct" db:"is_correct"` // nil — попытка run, оценки нет
	AttemptType          string    `json:"attempt_type" db:"attempt_type"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

type AttemptType string

const (
	AttemptTypeRun    AttemptType = "run"
	AttemptTypeSubmit AttemptType = "submit"
)

func (at AttemptType) String() string {
	return string(at)
}

// IsValidAttemptType проверяет строку как есть: без трима и без
// приведения регистра.
func IsValidAttemptType(attemptType string) bool {
	switch AttemptType(attemptType) {
	case AttemptTypeRun, AttemptTypeSubmit:
		return true
	default:
		return false
	}
}
