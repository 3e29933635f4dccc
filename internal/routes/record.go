package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runRecordRouter(
	secureGroup *echo.Group,
	recordCtrl *controllers.RecordController,
	pendingCtrl *controllers.PendingChangeController,
	rescheduleCtrl *controllers.RescheduleController,
) {
	records := secureGroup.Group("/records")
	{
		records.GET("", recordCtrl.GetRecords)
		records.GET("/:token", recordCtrl.FindRecord)
		records.GET("/:token/history", recordCtrl.GetHistory)
		records.POST("/:token/transitions", recordCtrl.SubmitTransition)
		records.GET("/:token/pending-changes", pendingCtrl.ListByRecord)
		records.POST("/:token/reschedule-requests", rescheduleCtrl.Propose)
		records.GET("/:token/reschedule-requests", rescheduleCtrl.ListByRecord)
	}
}
