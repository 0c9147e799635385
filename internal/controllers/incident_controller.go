package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/services"
)

type IncidentController struct {
	reports   *services.ReportService
	incidents *services.IncidentService
}

func NewIncidentController(reports *services.ReportService, incidents *services.IncidentService) *IncidentController {
	return &IncidentController{reports: reports, incidents: incidents}
}

// ListIncidents accepts ?filter=all|active|closed.
func (ic *IncidentController) ListIncidents(c *gin.Context) {
	list, err := ic.reports.ListIncidents(c.Request.Context(), c.DefaultQuery("filter", "all"))
	if err != nil {
		respondError(c, "incident_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"incidents": list.Incidents,
		"showing":   list.Showing,
		"total":     list.Total,
	})
}

func (ic *IncidentController) GetIncident(c *gin.Context) {
	details, err := ic.reports.IncidentDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "incident_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

func (ic *IncidentController) CreateIncident(c *gin.Context) {
	var req services.IncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
			"errors":  err.Error(),
		})
		return
	}

	incident, err := ic.incidents.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, "incident_controller", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    incident,
	})
}

func (ic *IncidentController) UpdateIncident(c *gin.Context) {
	var req services.IncidentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request data",
		})
		return
	}

	incident, err := ic.incidents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, "incident_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    incident,
	})
}
