package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runAuthRouter(api *echo.Group, ctrl *controllers.AuthController) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", ctrl.Login)
		auth.POST("/refresh", ctrl.RefreshToken)
	}
}
