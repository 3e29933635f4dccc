package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/internal/services"
	"lead-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) StateSummary(ctx echo.Context) error {
	centreID, _ := strconv.ParseUint(ctx.QueryParam("centre_id"), 10, 64)

	summary, err := c.reportService.StateSummary(ctx.Request().Context(), centreID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, summary, "state summary", http.StatusOK)
}

func (c *ReportController) ExportRecords(ctx echo.Context) error {
	filter := parseRecordFilter(ctx.Request().URL.Query())

	content, err := c.reportService.ExportRecords(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("records export failed", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}

	filename := fmt.Sprintf("records_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
