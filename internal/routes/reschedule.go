package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runRescheduleRouter(secureGroup *echo.Group, ctrl *controllers.RescheduleController) {
	reschedule := secureGroup.Group("/reschedule-requests")
	{
		reschedule.GET("/inbox", ctrl.ListInbox)
		reschedule.POST("/:id/acknowledge", ctrl.Acknowledge)
	}
}
