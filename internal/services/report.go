package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/repositories"
	"lead-system/pkg/constants"
	apperrors "lead-system/pkg/errors"
	"lead-system/pkg/utils"
)

type StateSummaryDTO struct {
	State  string `json:"state"`
	Urgent uint64 `json:"urgent"`
	Total  uint64 `json:"total"`
}

type ReportServiceInterface interface {
	StateSummary(ctx context.Context, centreID uint64) ([]StateSummaryDTO, error)
	ExportRecords(ctx context.Context, filter dto.RecordFilter) ([]byte, error)
}

type ReportService struct {
	reportRepo    repositories.ReportRepositoryInterface
	recordService RecordServiceInterface
	logger        *zap.Logger
}

func NewReportService(
	reportRepo repositories.ReportRepositoryInterface,
	recordService RecordServiceInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{
		reportRepo:    reportRepo,
		recordService: recordService,
		logger:        logger,
	}
}

func (s *ReportService) requireExport(ctx context.Context) error {
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return err
	}
	if role == constants.RoleAdmin {
		return nil
	}
	if utils.GetCapabilitiesFromCtx(ctx)[constants.CapRecordsExport] {
		return nil
	}
	return apperrors.ErrForbidden
}

func (s *ReportService) StateSummary(ctx context.Context, centreID uint64) ([]StateSummaryDTO, error) {
	if err := s.requireExport(ctx); err != nil {
		return nil, err
	}
	counts, err := s.reportRepo.StateCounts(ctx, centreID)
	if err != nil {
		return nil, err
	}
	out := make([]StateSummaryDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, StateSummaryDTO{State: c.State, Urgent: c.Urgent, Total: c.Total})
	}
	return out, nil
}

// ExportRecords writes the filtered record list into an xlsx workbook with a
// per-state summary sheet.
func (s *ReportService) ExportRecords(ctx context.Context, filter dto.RecordFilter) ([]byte, error) {
	if err := s.requireExport(ctx); err != nil {
		return nil, err
	}

	records, _, err := s.recordService.GetRecords(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.reportRepo.StateCounts(ctx, filter.CentreID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const recordsSheet = "Records"
	f.SetSheetName(f.GetSheetName(0), recordsSheet)

	headers := []string{"Token", "State", "Sub-state", "Product", "Client", "Phone", "Appointment", "Urgent", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(recordsSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write export header: %w", err)
		}
	}
	for row, rec := range records {
		subState := ""
		if rec.SubState != nil {
			subState = *rec.SubState
		}
		appointment := ""
		if rec.AppointmentAt != nil {
			appointment = rec.AppointmentAt.Format(utils.DateTimeLayout)
		}
		values := []interface{}{
			rec.Token, rec.State, subState, rec.ProductType,
			rec.ClientName, rec.ClientPhone, appointment, rec.IsUrgent, rec.CreatedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(recordsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetCellValue(summarySheet, "A1", "State")
	f.SetCellValue(summarySheet, "B1", "Urgent")
	f.SetCellValue(summarySheet, "C1", "Total")
	for i, c := range counts {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), c.State)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), c.Urgent)
		f.SetCellValue(summarySheet, fmt.Sprintf("C%d", i+2), c.Total)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("failed to serialize records export", zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}
	return buf.Bytes(), nil
}
