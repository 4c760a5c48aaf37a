package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func New() zerolog.Logger {
	// Настройка output
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return logger.Level(zerolog.InfoLevel)
}

func NewWithConfig(level string, pretty, noColor bool) zerolog.Logger {
	var log zerolog.Logger

	if pretty {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		}
		log = zerolog.New(output).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return log.Level(parseLevel(level))
}

// NewWithFile пишет одновременно в stdout и в ротируемый файл
// <dir>/etl.log. Старые файлы удаляются через retentionDays дней.
func NewWithFile(level string, pretty, noColor bool, dir string, retentionDays, maxSizeMB int) (zerolog.Logger, io.Closer) {
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "etl.log"),
		MaxSize:    maxSizeMB,
		MaxAge:     retentionDays,
		MaxBackups: retentionDays,
	}

	var console io.Writer = os.Stdout
	if pretty {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		}
	}

	output := zerolog.MultiLevelWriter(console, fileWriter)
	log := zerolog.New(output).With().Timestamp().Logger()

	return log.Level(parseLevel(level)), fileWriter
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
