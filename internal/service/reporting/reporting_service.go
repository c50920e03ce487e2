package reporting

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/repository/mongodb"
)

const exportSheet = "Registro"

// Service aggregates egg records into per-shed summaries and exports.
type Service struct {
	records mongodb.EggRecordRepository
	logger  *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(records mongodb.EggRecordRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{records: records, logger: logger}
}

// RangeSummary totals every category for one shed over an inclusive date range.
func (s *Service) RangeSummary(ctx context.Context, farmID, shedID, startDate, endDate string) (*models.ShedSummary, error) {
	records, err := s.records.ListByDateRange(ctx, farmID, shedID, startDate, endDate, false)
	if err != nil {
		return nil, fmt.Errorf("load records for summary: %w", err)
	}

	totals := models.EmptyCounts()
	for _, record := range records {
		for _, k := range models.EggKeys {
			totals[k] += record.Counts[k]
		}
	}

	meta := models.DeriveSectorMeta(shedID)

	return &models.ShedSummary{
		FarmID:    farmID,
		ShedID:    shedID,
		ShedLabel: meta.Label,
		StartDate: startDate,
		EndDate:   endDate,
		Totals:    totals,
		Total:     totals.Total(),
		Days:      len(records),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// WindowSummary totals the n calendar days ending at endDate inclusive.
func (s *Service) WindowSummary(ctx context.Context, farmID, shedID, endDate string, days int) (*models.ShedSummary, error) {
	startDate, err := mongodb.WindowStart(endDate, days)
	if err != nil {
		return nil, err
	}
	return s.RangeSummary(ctx, farmID, shedID, startDate, endDate)
}

// FormatSummary renders a summary as a short text block for notifications
// and logs.
func FormatSummary(summary *models.ShedSummary) string {
	if summary.Days == 0 {
		return fmt.Sprintf("%s (%s-%s): sin registros.", summary.ShedLabel, summary.StartDate, summary.EndDate)
	}
	return fmt.Sprintf("%s (%s-%s): %d huevos en %d días.", summary.ShedLabel, summary.StartDate, summary.EndDate, summary.Total, summary.Days)
}

// ExportRangeXLSX builds a spreadsheet of one shed's records over an
// inclusive date range: one row per day, one column per category, plus the
// daily total and notes.
func (s *Service) ExportRangeXLSX(ctx context.Context, farmID, shedID, startDate, endDate string) ([]byte, error) {
	records, err := s.records.ListByDateRange(ctx, farmID, shedID, startDate, endDate, false)
	if err != nil {
		return nil, fmt.Errorf("load records for export: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create export sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := []interface{}{"Fecha", "Galpón"}
	for _, k := range models.EggKeys {
		header = append(header, models.EggKeyLabels[k])
	}
	header = append(header, "Total", "Notas")
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for i, record := range records {
		row := []interface{}{record.Date, record.ShedLabel}
		for _, k := range models.EggKeys {
			row = append(row, record.Counts[k])
		}
		row = append(row, record.Counts.Total(), record.Notes)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("export row coordinates: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write export row %s: %w", record.Date, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize export: %w", err)
	}

	s.logger.Debug("export generated",
		zap.String("shed_id", shedID),
		zap.Int("rows", len(records)))
	return buf.Bytes(), nil
}
