package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lead-system/internal/dto"
	"lead-system/internal/services"
	"lead-system/pkg/utils"
)

type PendingChangeController struct {
	pendingService services.PendingChangeServiceInterface
	logger         *zap.Logger
}

func NewPendingChangeController(
	pendingService services.PendingChangeServiceInterface,
	logger *zap.Logger,
) *PendingChangeController {
	return &PendingChangeController{pendingService: pendingService, logger: logger}
}

func parsePendingID(ctx echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid pending change id")
	}
	return id, nil
}

func (c *PendingChangeController) ListByStatus(ctx echo.Context) error {
	status := ctx.QueryParam("status")
	if status == "" {
		status = "PENDING"
	}
	limit, _ := strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)

	changes, total, err := c.pendingService.ListByStatus(ctx.Request().Context(), status, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, changes, "pending changes listed", http.StatusOK, total)
}

func (c *PendingChangeController) ListByRecord(ctx echo.Context) error {
	changes, err := c.pendingService.ListByRecord(ctx.Request().Context(), ctx.Param("token"))
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, changes, "pending changes listed", http.StatusOK)
}

func (c *PendingChangeController) Edit(ctx echo.Context) error {
	id, err := parsePendingID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.EditPendingChangeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	edited, err := c.pendingService.Edit(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, edited, "pending change updated", http.StatusOK)
}

func (c *PendingChangeController) Approve(ctx echo.Context) error {
	return c.decide(ctx, c.pendingService.Approve, "pending change approved")
}

func (c *PendingChangeController) Reject(ctx echo.Context) error {
	return c.decide(ctx, c.pendingService.Reject, "pending change rejected")
}

func (c *PendingChangeController) decide(
	ctx echo.Context,
	fn func(ctx context.Context, id uuid.UUID, data dto.DecidePendingChangeDTO) (*dto.DecisionOutcomeDTO, error),
	message string,
) error {
	id, err := parsePendingID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	var payload dto.DecidePendingChangeDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "malformed request body"))
	}

	outcome, err := fn(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Warn("pending change decision failed", zap.String("id", id.String()), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, outcome, message, http.StatusOK)
}
