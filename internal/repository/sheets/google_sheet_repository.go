package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/elmolle/eggtrack/internal/config"
	"github.com/elmolle/eggtrack/internal/domain/models"
)

const reportRange = "Reportes!A:M"

// Repository defines the export operations supported by the Google Sheets adapter.
type Repository interface {
	AppendSummaryRow(ctx context.Context, summary models.ShedSummary) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendSummaryRow appends one shed summary as a row in the report sheet:
// range, shed, one column per category, total.
func (r *GoogleSheetRepository) AppendSummaryRow(ctx context.Context, summary models.ShedSummary) error {
	values := make([]interface{}, 0, len(models.EggKeys)+4)
	values = append(values, summary.StartDate, summary.EndDate, summary.ShedID)
	for _, k := range models.EggKeys {
		values = append(values, summary.Totals[k])
	}
	values = append(values, summary.Total)

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, reportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append summary row for shed %s: %w", summary.ShedID, err)
	}

	r.logger.Debug("summary row appended to sheet", zap.String("shed_id", summary.ShedID), zap.String("end_date", summary.EndDate))
	return nil
}
