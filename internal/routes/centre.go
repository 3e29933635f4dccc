package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runCentreRouter(secureGroup *echo.Group, ctrl *controllers.CentreController) {
	centres := secureGroup.Group("/centres")
	{
		centres.GET("", ctrl.GetCentres)
		centres.GET("/:id", ctrl.FindCentre)
	}
}
