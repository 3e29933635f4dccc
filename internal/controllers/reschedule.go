package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/services"
	"lead-system/pkg/utils"
)

type RescheduleController struct {
	rescheduleService services.RescheduleServiceInterface
	logger            *zap.Logger
}

func NewRescheduleController(
	rescheduleService services.RescheduleServiceInterface,
	logger *zap.Logger,
) *RescheduleController {
	return &RescheduleController{rescheduleService: rescheduleService, logger: logger}
}

func (c *RescheduleController) Propose(ctx echo.Context) error {
	var payload dto.ProposeRescheduleDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	req, err := c.rescheduleService.Propose(ctx.Request().Context(), ctx.Param("token"), payload)
	if err != nil {
		c.logger.Warn("reschedule proposal rejected",
			zap.String("token", ctx.Param("token")), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, req, "reschedule request created", http.StatusCreated)
}

func (c *RescheduleController) Acknowledge(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid reschedule request id"))
	}
	if err := c.rescheduleService.Acknowledge(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "reschedule request acknowledged", http.StatusOK)
}

func (c *RescheduleController) ListInbox(ctx echo.Context) error {
	pendingOnly := true
	if v, err := strconv.ParseBool(ctx.QueryParam("pending_only")); err == nil {
		pendingOnly = v
	}
	reqs, err := c.rescheduleService.ListInbox(ctx.Request().Context(), pendingOnly)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, reqs, "reschedule inbox listed", http.StatusOK)
}

func (c *RescheduleController) ListByRecord(ctx echo.Context) error {
	reqs, err := c.rescheduleService.ListByRecord(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, reqs, "reschedule requests listed", http.StatusOK)
}
