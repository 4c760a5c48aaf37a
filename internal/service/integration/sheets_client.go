package integration

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ElenaPribylova/GRADER/internal/models"
)

// Заголовок пишется один раз при создании листа.
var worksheetHeader = []any{
	"Дата", "Всего попыток", "Успешных", "Неуспешных",
	"Run попыток", "Уникальных пользователей",
	"Run count", "Submit count", "Success Rate %",
}

type sheetsPublisher struct {
	credentialsFile string
	spreadsheetName string
	worksheetName   string
	logger          zerolog.Logger
}

func NewSheetsPublisher(credentialsFile, spreadsheetName, worksheetName string, logger zerolog.Logger) StatsPublisher {
	return &sheetsPublisher{
		credentialsFile: credentialsFile,
		spreadsheetName: spreadsheetName,
		worksheetName:   worksheetName,
		logger:          logger,
	}
}

func (p *sheetsPublisher) Name() string {
	return "google_sheets"
}

func (p *sheetsPublisher) Publish(ctx context.Context, stats *models.DailyStatistics) error {
	credentials, err := os.ReadFile(p.credentialsFile)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}

	httpClient := jwtConfig.Client(ctx)

	sheetsService, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create drive service: %w", err)
	}

	spreadsheetID, err := p.findOrCreateSpreadsheet(ctx, driveService, sheetsService)
	if err != nil {
		return err
	}

	if err := p.ensureWorksheet(ctx, sheetsService, spreadsheetID); err != nil {
		return err
	}

	row := []any{
		stats.Date,
		stats.TotalAttempts,
		stats.SuccessfulAttempts,
		stats.FailedAttempts,
		stats.RunAttempts,
		stats.UniqueUsers,
		stats.RunCount,
		stats.SubmitCount,
		stats.SuccessRate,
	}

	if err := p.appendRow(ctx, sheetsService, spreadsheetID, row); err != nil {
		return fmt.Errorf("failed to append statistics row: %w", err)
	}

	p.logger.Info().
		Str("spreadsheet", p.spreadsheetName).
		Str("date", stats.Date).
		Msg("Statistics uploaded to Google Sheets")

	return nil
}

func (p *sheetsPublisher) findOrCreateSpreadsheet(ctx context.Context, driveService *drive.Service, sheetsService *sheets.Service) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		p.spreadsheetName,
	)

	list, err := driveService.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for spreadsheet: %w", err)
	}

	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	created, err := sheetsService.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: p.spreadsheetName},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	p.logger.Info().Str("spreadsheet", p.spreadsheetName).Msg("Created new spreadsheet")

	return created.SpreadsheetId, nil
}

func (p *sheetsPublisher) ensureWorksheet(ctx context.Context, sheetsService *sheets.Service, spreadsheetID string) error {
	spreadsheet, err := sheetsService.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == p.worksheetName {
			return nil
		}
	}

	_, err = sheetsService.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: p.worksheetName,
						GridProperties: &sheets.GridProperties{
							RowCount:    1000,
							ColumnCount: 10,
						},
					},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	if err := p.appendRow(ctx, sheetsService, spreadsheetID, worksheetHeader); err != nil {
		return fmt.Errorf("failed to append header row: %w", err)
	}

	p.logger.Info().Str("worksheet", p.worksheetName).Msg("Created worksheet with header")

	return nil
}

func (p *sheetsPublisher) appendRow(ctx context.Context, sheetsService *sheets.Service, spreadsheetID string, row []any) error {
	_, err := sheetsService.Spreadsheets.Values.Append(spreadsheetID, p.worksheetName, &sheets.ValueRange{
		Values: [][]any{row},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	return err
}
