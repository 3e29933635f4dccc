package routes

import (
	"github.com/labstack/echo/v4"

	"lead-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController) {
	reports := secureGroup.Group("/reports")
	{
		reports.GET("/state-summary", ctrl.StateSummary)
		reports.GET("/records/export", ctrl.ExportRecords)
	}
}
