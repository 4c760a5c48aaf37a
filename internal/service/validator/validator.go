package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/models"
)

const (
	fieldUserID         = "lti_user_id"
	fieldPassbackParams = "passback_params"
	fieldAttemptType    = "attempt_type"
	fieldCreatedAt      = "created_at"
	fieldIsCorrect      = "is_correct"
)

var requiredFields = []string{fieldUserID, fieldPassbackParams, fieldAttemptType, fieldCreatedAt}

const (
	// API отдаёт created_at с микросекундами либо без дробной части
	createdAtLayoutMicro   = "2006-01-02 15:04:05.999999"
	createdAtLayoutSeconds = "2006-01-02 15:04:05"
)

type Validator struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate нормализует одну сырую запись. Ненулевая ошибка — причина
// отбраковки; частично заполненный Attempt никогда не возвращается.
// Паника при обработке одной записи не должна ронять весь батч,
// поэтому превращается в отбраковку.
func (v *Validator) Validate(raw models.RawRecord) (attempt *models.Attempt, err error) {
	defer func() {
		if r := recover(); r != nil {
			attempt = nil
			err = fmt.Errorf("validation failure: %v", r)
		}
	}()

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("missing field: %s", field)
		}
	}

	userID := coerceString(raw[fieldUserID])
	if userID == "" {
		return nil, fmt.Errorf("missing field: %s", fieldUserID)
	}

	passback := v.decodePassback(raw[fieldPassbackParams])

	attemptType, ok := raw[fieldAttemptType].(string)
	if !ok || !models.IsValidAttemptType(attemptType) {
		return nil, fmt.Errorf("invalid attempt_type: %v", raw[fieldAttemptType])
	}

	isCorrect, err := coerceIsCorrect(raw[fieldIsCorrect])
	if err != nil {
		return nil, err
	}

	createdAt, err := parseCreatedAt(raw[fieldCreatedAt])
	if err != nil {
		return nil, err
	}

	return &models.Attempt{
		UserID:               userID,
		OAuthConsumerKey:     coerceString(passback["oauth_consumer_key"]),
		LisResultSourcedID:   coerceString(passback["lis_result_sourcedid"]),
		LisOutcomeServiceURL: coerceString(passback["lis_outcome_service_url"]),
		IsCorrect:            isCorrect,
		AttemptType:          attemptType,
		CreatedAt:            createdAt,
	}, nil
}

// ProcessBatch прогоняет валидатор по всем записям в исходном порядке.
// Отбракованные записи логируются и считаются, но не возвращаются.
func (v *Validator) ProcessBatch(records []models.RawRecord) ([]models.Attempt, int) {
	var accepted []models.Attempt
	rejected := 0

	for i, record := range records {
		attempt, err := v.Validate(record)
		if err != nil {
			v.logger.Warn().Int("index", i).Str("reason", err.Error()).Msg("Record rejected")
			rejected++
			continue
		}
		accepted = append(accepted, *attempt)
	}

	v.logger.Info().
		Int("accepted", len(accepted)).
		Int("rejected", rejected).
		Msg("Records processed")

	return accepted, rejected
}

// decodePassback никогда не бракует запись: битые passback_params — это
// предупреждение и пустой словарь, запись идёт дальше.
func (v *Validator) decodePassback(value any) map[string]any {
	if value == nil {
		return map[string]any{}
	}

	s, ok := value.(string)
	if !ok {
		v.logger.Warn().Interface("passback_params", value).Msg("passback_params is not a string, treating as empty")
		return map[string]any{}
	}

	params, err := ParsePassbackParams(s)
	if err != nil {
		v.logger.Warn().Err(err).Str("passback_params", s).Msg("Failed to parse passback_params, treating as empty")
		return map[string]any{}
	}

	return params
}

func coerceString(value any) string {
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// coerceIsCorrect: отсутствие значения — это run без оценки (nil),
// целые числа приводятся по правилу 0 → false, иначе true.
// Дробные числа и прочие типы — брак.
func coerceIsCorrect(value any) (*bool, error) {
	switch val := value.(type) {
	case nil:
		return nil, nil
	case bool:
		return &val, nil
	case json.Number:
		n, err := strconv.ParseInt(val.String(), 10, 64)
		if err != nil {
			return nil, errors.New("invalid is_correct type")
		}
		result := n != 0
		return &result, nil
	case int:
		result := val != 0
		return &result, nil
	case int64:
		result := val != 0
		return &result, nil
	default:
		return nil, errors.New("invalid is_correct type")
	}
}

func parseCreatedAt(value any) (time.Time, error) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date format: %v", value)
	}

	if ts, err := time.Parse(createdAtLayoutMicro, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(createdAtLayoutSeconds, s); err == nil {
		return ts, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s", s)
}
