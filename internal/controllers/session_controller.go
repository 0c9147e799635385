package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/middleware"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

// SessionController exposes the report wizard over HTTP. Every mutating
// route answers with the session view after the change.
type SessionController struct {
	sessions *services.SessionManager
}

func NewSessionController(sessions *services.SessionManager) *SessionController {
	return &SessionController{sessions: sessions}
}

type OpenSessionRequest struct {
	IncidentID string `json:"incidentId" binding:"required"`
	CenterID   string `json:"centerId"`
}

type SelectCenterRequest struct {
	CenterID *string `json:"centerId"`
}

type FacilityRequest struct {
	Status models.FacilityStatus `json:"status" binding:"required"`
	Notes  string                `json:"notes"`
}

func (sc *SessionController) session(c *gin.Context) (*services.ReportSession, bool) {
	s, err := sc.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, "session_controller", err)
		return nil, false
	}
	return s, true
}

func (sc *SessionController) reply(c *gin.Context, view services.SessionView, err error) {
	if err != nil {
		respondError(c, "session_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": view,
	})
}

func (sc *SessionController) Open(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	userID := ""
	if claims, ok := middleware.CurrentIdentity(c); ok {
		userID = claims.UserID
	}

	s, err := sc.sessions.Open(c.Request.Context(), req.IncidentID, req.CenterID, userID)
	if err != nil {
		respondError(c, "session_controller", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": s.View(),
	})
}

func (sc *SessionController) Get(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		sc.reply(c, s.View(), nil)
	}
}

// Discard drops the session together with any saved draft.
func (sc *SessionController) Discard(c *gin.Context) {
	if err := sc.sessions.Discard(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "session_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session discarded",
	})
}

// Cancel throws away the draft under edit and keeps the session open.
func (sc *SessionController) Cancel(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		sc.reply(c, s.Cancel(), nil)
	}
}

// SelectCenter takes {"centerId": null} to register a new center.
func (sc *SessionController) SelectCenter(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var req SelectCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	centerID := ""
	if req.CenterID != nil {
		centerID = *req.CenterID
	}
	view, err := s.SelectCenter(c.Request.Context(), centerID)
	sc.reply(c, view, err)
}

func (sc *SessionController) UpdateCenterDetails(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var details services.CenterDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.UpdateCenterDetails(details)
	sc.reply(c, view, err)
}

// UpdateSection replaces one section of the draft. An unknown section is
// not an error; the response reports applied=false.
func (sc *SessionController) UpdateSection(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}

	section := models.Section(c.Param("section"))
	value, err := decodeSection(section, s.View().Schema, raw)
	if err != nil {
		badRequest(c, err)
		return
	}
	if value == nil {
		logger.WithSession(s.ID(), s.IncidentID()).WithField("section", section).Warn("Ignoring update to unknown section")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"applied": false,
			"session": s.View(),
		})
		return
	}

	view, applied, err := s.UpdateSection(section, value)
	if err != nil {
		respondError(c, "session_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"applied": applied,
		"session": view,
	})
}

// decodeSection returns nil for sections the draft does not have. The
// demographics body is read under the session's schema.
func decodeSection(section models.Section, schema models.DemographicsSchema, raw []byte) (any, error) {
	var value any
	switch section {
	case models.SectionDemographics:
		if schema == models.SchemaCoarse {
			value = &models.CoarseHeadcount{}
		} else {
			value = &models.Demographics{}
		}
	case models.SectionFacilities:
		value = &models.Facilities{}
	case models.SectionSectoralGroups:
		value = &[]models.SectoralGroup{}
	case models.SectionMedia:
		value = &[]models.Media{}
	case models.SectionContactPersons:
		value = &[]models.ContactPerson{}
	default:
		return nil, nil
	}
	if err := json.Unmarshal(raw, value); err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *models.CoarseHeadcount:
		return *v, nil
	case *models.Demographics:
		return *v, nil
	case *models.Facilities:
		return *v, nil
	case *[]models.SectoralGroup:
		return *v, nil
	case *[]models.Media:
		return *v, nil
	case *[]models.ContactPerson:
		return *v, nil
	}
	return nil, errors.New("unsupported section")
}

func (sc *SessionController) AddContact(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var contact models.ContactPerson
	if err := c.ShouldBindJSON(&contact); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.AddContact(contact)
	sc.reply(c, view, err)
}

func (sc *SessionController) TogglePrimary(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.TogglePrimary(c.Param("contactId"))
		sc.reply(c, view, err)
	}
}

func (sc *SessionController) RemoveContact(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.RemoveContact(c.Param("contactId"))
		sc.reply(c, view, err)
	}
}

func (sc *SessionController) AddSectoralGroup(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var group models.SectoralGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.AddSectoralGroup(group)
	sc.reply(c, view, err)
}

func (sc *SessionController) UpdateSectoralGroup(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var group models.SectoralGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		badRequest(c, err)
		return
	}
	group.ID = c.Param("groupId")
	view, err := s.UpdateSectoralGroup(group)
	sc.reply(c, view, err)
}

func (sc *SessionController) RemoveSectoralGroup(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.RemoveSectoralGroup(c.Param("groupId"))
		sc.reply(c, view, err)
	}
}

func (sc *SessionController) AddMedia(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var media models.Media
	if err := c.ShouldBindJSON(&media); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.AddMedia(media)
	sc.reply(c, view, err)
}

func (sc *SessionController) RemoveMedia(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.RemoveMedia(c.Param("mediaId"))
		sc.reply(c, view, err)
	}
}

func (sc *SessionController) SetFacility(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	var req FacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := s.SetFacility(models.FacilityKind(c.Param("kind")), req.Status, req.Notes)
	sc.reply(c, view, err)
}

func (sc *SessionController) Next(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		sc.reply(c, s.Next(), nil)
	}
}

func (sc *SessionController) Previous(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		sc.reply(c, s.Previous(), nil)
	}
}

func (sc *SessionController) GoTo(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.GoTo(models.Step(c.Param("step")))
		sc.reply(c, view, err)
	}
}

// SearchCenters backs the center selector.
func (sc *SessionController) SearchCenters(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	centers, err := s.SearchCenters(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, "session_controller", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"centers": centers,
	})
}

func (sc *SessionController) CommitToQueue(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.CommitToQueue()
		sc.reply(c, view, err)
	}
}

func (sc *SessionController) SaveDraft(c *gin.Context) {
	if s, ok := sc.session(c); ok {
		view, err := s.SaveDraft(c.Request.Context())
		sc.reply(c, view, err)
	}
}

// Resume works for live sessions and for sessions saved before a restart.
func (sc *SessionController) Resume(c *gin.Context) {
	s, err := sc.sessions.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "session_controller", err)
		return
	}
	sc.reply(c, s.View(), nil)
}

// Submit answers 502 when the store refused part of the batch; the body
// still lists what was submitted and what remains queued.
func (sc *SessionController) Submit(c *gin.Context) {
	s, ok := sc.session(c)
	if !ok {
		return
	}
	view, result, err := s.Submit(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrInvalidInput) {
			status = http.StatusUnprocessableEntity
		}
		logger.WithSession(s.ID(), s.IncidentID()).WithError(err).Warn("Submission stopped")
		c.JSON(status, gin.H{
			"success": false,
			"message": err.Error(),
			"result":  result,
			"session": view,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Report submitted",
		"result":  result,
		"session": view,
	})
}
