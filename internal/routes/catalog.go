package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runCatalogRouter(secureGroup *echo.Group, ctrl *controllers.CatalogController) {
	secureGroup.GET("/catalog/states", ctrl.GetCatalog)
}
