package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ElenaPribylova/GRADER/internal/models"
	"github.com/ElenaPribylova/GRADER/internal/service"
	"github.com/ElenaPribylova/GRADER/internal/service/integration"
	"github.com/ElenaPribylova/GRADER/internal/service/validator"
)

type fakeClient struct {
	records []models.RawRecord
	err     error
}

func (f *fakeClient) FetchAttempts(ctx context.Context, start, end string) ([]models.RawRecord, error) {
	return f.records, f.err
}

type fakeRepo struct {
	schemaErr error
	insertErr error
	statsErr  error
	stats     *models.DailyStatistics

	schemaCalls int
	inserted    []models.Attempt
	statsDates  []string
}

func (f *fakeRepo) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	return f.schemaErr
}

func (f *fakeRepo) BulkInsert(ctx context.Context, attempts []models.Attempt) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.inserted = append(f.inserted, attempts...)
	return int64(len(attempts)), nil
}

func (f *fakeRepo) GetDailyStatistics(ctx context.Context, date string) (*models.DailyStatistics, error) {
	f.statsDates = append(f.statsDates, date)
	return f.stats, f.statsErr
}

type fakePublisher struct {
	name      string
	published []*models.DailyStatistics
	err       error
}

func (f *fakePublisher) Name() string {
	return f.name
}

func (f *fakePublisher) Publish(ctx context.Context, stats *models.DailyStatistics) error {
	f.published = append(f.published, stats)
	return f.err
}

func rawRecord(userID, attemptType string) models.RawRecord {
	return models.RawRecord{
		"lti_user_id":     userID,
		"passback_params": "{'oauth_consumer_key': 'ckey'}",
		"attempt_type":    attemptType,
		"created_at":      "2023-05-31 10:00:00.123456",
	}
}

func newService(client *fakeClient, repo *fakeRepo, publishers ...integration.StatsPublisher) service.ETLService {
	return service.NewETLService(client, validator.New(zerolog.Nop()), repo, publishers, zerolog.Nop())
}

func TestRun(t *testing.T) {
	t.Parallel()

	window := []string{"2023-05-31 00:00:00.000000", "2023-05-31 23:59:59.999999"}
	stats := &models.DailyStatistics{
		Date:               "2023-05-31",
		TotalAttempts:      3,
		SuccessfulAttempts: 1,
		SubmitCount:        1,
		SuccessRate:        100.0,
	}

	t.Run("Happy path loads records and publishes statistics", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{
			rawRecord("user-a", "run"),
			rawRecord("user-b", "submit"),
		}}
		repo := &fakeRepo{stats: stats}
		publisher := &fakePublisher{name: "sheets"}

		err := newService(client, repo, publisher).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)

		require.Equal(t, 1, repo.schemaCalls)
		require.Len(t, repo.inserted, 2)
		require.Equal(t, []string{"2023-05-31"}, repo.statsDates)
		require.Len(t, publisher.published, 1)
		require.Equal(t, stats, publisher.published[0])
	})

	t.Run("Fetch failure ends the run without touching the store", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{err: errors.New("connection refused")}
		repo := &fakeRepo{}
		publisher := &fakePublisher{}

		err := newService(client, repo, publisher).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)

		require.Zero(t, repo.schemaCalls)
		require.Empty(t, repo.inserted)
		require.Empty(t, publisher.published)
	})

	t.Run("Empty fetch is a valid outcome", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{}
		repo := &fakeRepo{}

		err := newService(client, repo, &fakePublisher{}).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)
		require.Zero(t, repo.schemaCalls)
	})

	t.Run("Run stops when every record is rejected", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{
			rawRecord("user-a", "practice"),
			rawRecord("", "run"),
		}}
		repo := &fakeRepo{}

		err := newService(client, repo, &fakePublisher{}).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)
		require.Zero(t, repo.schemaCalls)
		require.Empty(t, repo.inserted)
	})

	t.Run("Schema failure is fatal", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{rawRecord("user-a", "run")}}
		repo := &fakeRepo{schemaErr: errors.New("permission denied")}

		err := newService(client, repo, &fakePublisher{}).Run(context.Background(), window[0], window[1])
		require.Error(t, err)
		require.Empty(t, repo.inserted)
	})

	t.Run("Load failure is fatal", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{rawRecord("user-a", "run")}}
		repo := &fakeRepo{insertErr: errors.New("deadlock detected")}
		publisher := &fakePublisher{}

		err := newService(client, repo, publisher).Run(context.Background(), window[0], window[1])
		require.Error(t, err)
		require.Empty(t, publisher.published)
	})

	t.Run("Aggregate failure does not fail the run", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{rawRecord("user-a", "run")}}
		repo := &fakeRepo{statsErr: errors.New("timeout")}
		publisher := &fakePublisher{}

		err := newService(client, repo, publisher).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)
		require.Empty(t, publisher.published)
	})

	t.Run("Missing statistics skips publish", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{rawRecord("user-a", "run")}}
		repo := &fakeRepo{}
		publisher := &fakePublisher{}

		err := newService(client, repo, publisher).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)
		require.Empty(t, publisher.published)
	})

	t.Run("Publish failure does not stop the remaining publishers", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{records: []models.RawRecord{rawRecord("user-a", "submit")}}
		repo := &fakeRepo{stats: stats}
		sheets := &fakePublisher{name: "sheets", err: errors.New("quota exceeded")}
		broker := &fakePublisher{name: "broker"}

		err := newService(client, repo, sheets, broker).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)

		require.Len(t, sheets.published, 1)
		require.Len(t, broker.published, 1)
		require.Equal(t, stats, broker.published[0])
	})

	t.Run("Mixed batch loads only the valid records", func(t *testing.T) {
		t.Parallel()

		missingField := rawRecord("user-b", "run")
		delete(missingField, "created_at")

		client := &fakeClient{records: []models.RawRecord{
			missingField,
			rawRecord("user-c", "practice"),
			rawRecord("user-a", "submit"),
		}}
		repo := &fakeRepo{}

		err := newService(client, repo, &fakePublisher{}).Run(context.Background(), window[0], window[1])
		require.NoError(t, err)

		require.Len(t, repo.inserted, 1)
		require.Equal(t, "user-a", repo.inserted[0].UserID)
	})
}
