package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElenaPribylova/GRADER/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "https://b2b.itresume.ru/api/statistics", cfg.API.URL)
	require.Equal(t, "Skillfactory", cfg.API.Client)
	require.Equal(t, "M2MGWS", cfg.API.ClientKey)

	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "grader_db", cfg.Database.Name)

	require.Equal(t, "2023-05-31 00:00:00.000000", cfg.Window.Start)
	require.Equal(t, "2023-05-31 23:59:59.999999", cfg.Window.End)

	require.False(t, cfg.Sheets.Enabled)
	require.Equal(t, "Grader Statistics", cfg.Sheets.SpreadsheetName)
	require.Equal(t, "Daily Statistics", cfg.Sheets.WorksheetName)

	require.False(t, cfg.RabbitMQ.Enabled)
	require.Equal(t, "0 3 * * *", cfg.Schedule.Cron)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 3, cfg.Logging.RetentionDays)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("WINDOW_START", "2024-01-01 00:00:00.000000")
	t.Setenv("SHEETS_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "2024-01-01 00:00:00.000000", cfg.Window.Start)
	require.True(t, cfg.Sheets.Enabled)
}
