package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"lead-system/internal/services"
	"lead-system/pkg/utils"
)

type CentreController struct {
	centreService services.CentreServiceInterface
}

func NewCentreController(centreService services.CentreServiceInterface) *CentreController {
	return &CentreController{centreService: centreService}
}

func (c *CentreController) GetCentres(ctx echo.Context) error {
	centres, err := c.centreService.GetCentres(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, centres, "centres listed", http.StatusOK)
}

func (c *CentreController) FindCentre(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid centre id"))
	}
	centre, err := c.centreService.FindCentre(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, centre, "centre found", http.StatusOK)
}
