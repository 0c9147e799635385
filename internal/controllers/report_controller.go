package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/services"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

func (rc *ReportController) Dashboard(c *gin.Context) {
	dashboard, err := rc.reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, "report_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dashboard,
	})
}
