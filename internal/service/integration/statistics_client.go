package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ElenaPribylova/GRADER/internal/models"
)

type StatisticsClient interface {
	FetchAttempts(ctx context.Context, start, end string) ([]models.RawRecord, error)
}

type statisticsClient struct {
	baseURL   string
	client    string
	clientKey string
	http      *http.Client
	logger    zerolog.Logger
}

func NewStatisticsClient(baseURL, client, clientKey string, timeout time.Duration, logger zerolog.Logger) StatisticsClient {
	return &statisticsClient{
		baseURL:   baseURL,
		client:    client,
		clientKey: clientKey,
		http: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchAttempts забирает сырые записи за окно [start, end] одним
// синхронным вызовом, без ретраев.
func (c *statisticsClient) FetchAttempts(ctx context.Context, start, end string) ([]models.RawRecord, error) {
	params := url.Values{}
	params.Set("client", c.client)
	params.Set("client_key", c.clientKey)
	params.Set("start", start)
	params.Set("end", end)

	requestURL := c.baseURL + "?" + params.Encode()

	c.logger.Info().Str("start", start).Str("end", end).Msg("Fetching attempts from statistics API")

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("statistics API returned status %d: %s", resp.StatusCode, string(body))
	}

	// UseNumber сохраняет разницу между целыми и дробными числами,
	// дальше от неё зависит приведение is_correct.
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var records []models.RawRecord
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info().Int("count", len(records)).Msg("Fetched attempts")

	return records, nil
}
