package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/services"
)

type CenterController struct {
	reports *services.ReportService
}

func NewCenterController(reports *services.ReportService) *CenterController {
	return &CenterController{reports: reports}
}

// Directory lists centers matching ?search= and ?status=.
func (cc *CenterController) Directory(c *gin.Context) {
	centers, err := cc.reports.Directory(c.Request.Context(), c.Query("search"), c.DefaultQuery("status", "all"))
	if err != nil {
		respondError(c, "center_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"centers": centers,
		"total":   len(centers),
	})
}

func (cc *CenterController) Report(c *gin.Context) {
	report, err := cc.reports.CenterReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "center_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
