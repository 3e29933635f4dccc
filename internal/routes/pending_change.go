package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runPendingChangeRouter(secureGroup *echo.Group, ctrl *controllers.PendingChangeController) {
	pending := secureGroup.Group("/pending-changes")
	{
		pending.GET("", ctrl.ListByStatus)
		pending.PUT("/:id", ctrl.Edit)
		pending.POST("/:id/approve", ctrl.Approve)
		pending.POST("/:id/reject", ctrl.Reject)
	}
}
