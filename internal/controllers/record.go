package controllers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/services"
	"lead-system/pkg/utils"
)

type RecordController struct {
	recordService     services.RecordServiceInterface
	transitionService services.RecordTransitionServiceInterface
	logger            *zap.Logger
}

func NewRecordController(
	recordService services.RecordServiceInterface,
	transitionService services.RecordTransitionServiceInterface,
	logger *zap.Logger,
) *RecordController {
	return &RecordController{
		recordService:     recordService,
		transitionService: transitionService,
		logger:            logger,
	}
}

func parseRecordFilter(query url.Values) dto.RecordFilter {
	filter := dto.RecordFilter{State: query.Get("state")}
	if v, err := strconv.ParseUint(query.Get("centre_id"), 10, 64); err == nil {
		filter.CentreID = v
	}
	if v, err := strconv.ParseUint(query.Get("commercial_id"), 10, 64); err == nil {
		filter.CommercialID = v
	}
	if v, err := strconv.ParseBool(query.Get("urgent")); err == nil {
		filter.UrgentOnly = v
	}
	if v, err := strconv.ParseUint(query.Get("limit"), 10, 64); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.ParseUint(query.Get("offset"), 10, 64); err == nil {
		filter.Offset = v
	}
	return filter
}

func (c *RecordController) GetRecords(ctx echo.Context) error {
	filter := parseRecordFilter(ctx.Request().URL.Query())

	records, total, err := c.recordService.GetRecords(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list records", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, records, "records listed", http.StatusOK, total)
}

func (c *RecordController) FindRecord(ctx echo.Context) error {
	record, err := c.recordService.FindRecord(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, record, "record found", http.StatusOK)
}

func (c *RecordController) GetHistory(ctx echo.Context) error {
	history, err := c.recordService.GetHistory(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, history, "history listed", http.StatusOK)
}

// SubmitTransition is the single write entry point for a record's state. The
// response tells the caller whether the change was applied or queued for
// approval.
func (c *RecordController) SubmitTransition(ctx echo.Context) error {
	var payload dto.SubmitTransitionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	outcome, err := c.transitionService.SubmitTransition(ctx.Request().Context(), ctx.Param("token"), payload)
	if err != nil {
		c.logger.Warn("transition rejected",
			zap.String("token", ctx.Param("token")),
			zap.String("target", payload.TargetState),
			zap.Error(err),
		)
		return utils.ErrorResponse(ctx, err)
	}

	code := http.StatusOK
	if outcome.Status == "QUEUED" {
		code = http.StatusAccepted
	}
	return utils.SuccessResponse(ctx, outcome, "transition processed", code)
}
