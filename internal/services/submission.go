package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
)

// CounterRefresher is notified after a batch lands in the store.
type CounterRefresher interface {
	RefreshIncident(ctx context.Context, incidentID string) error
}

type SubmittedItem struct {
	DraftID  string `json:"draftId"`
	CenterID string `json:"centerId"`
	Name     string `json:"name"`
	Created  bool   `json:"created"`
}

type FailedItem struct {
	DraftID string `json:"draftId"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// SubmissionResult reports a batch submission. Submission stops at the first
// failure; Remaining holds the failed draft and everything after it.
type SubmissionResult struct {
	Submitted []SubmittedItem `json:"submitted"`
	Failed    *FailedItem     `json:"failed,omitempty"`
	Remaining []models.Draft  `json:"remaining"`
}

func (r SubmissionResult) Complete() bool {
	return r.Failed == nil
}

// SubmissionCoordinator commits queued drafts to the center store and keeps
// saved drafts in the draft repository.
type SubmissionCoordinator struct {
	centers  CenterWriter
	drafts   DraftRepository
	counters CounterRefresher
	now      func() time.Time
}

// NewSubmissionCoordinator wires the coordinator. counters may be nil.
func NewSubmissionCoordinator(centers CenterWriter, drafts DraftRepository, counters CounterRefresher) *SubmissionCoordinator {
	return &SubmissionCoordinator{
		centers:  centers,
		drafts:   drafts,
		counters: counters,
		now:      time.Now,
	}
}

// SubmitAll creates or updates each queued center in queue order. A draft
// whose center has an id is an update; anything else is a create.
func (sc *SubmissionCoordinator) SubmitAll(ctx context.Context, queue []models.Draft, incidentID string) (SubmissionResult, error) {
	result := SubmissionResult{Submitted: []SubmittedItem{}, Remaining: []models.Draft{}}
	if len(queue) == 0 {
		return result, invalidInput("nothing to submit")
	}

	affected := []string{incidentID}
	for i, draft := range queue {
		previous := draft.Center.IncidentID
		center := sc.prepare(draft, incidentID)
		saved, err := sc.submitOne(ctx, draft, center)
		if err != nil {
			if len(result.Submitted) > 0 {
				sc.refreshCounters(ctx, affected)
			}
			result.Failed = &FailedItem{DraftID: draft.ID, Name: center.Name, Message: err.Error(), Err: err}
			for _, d := range queue[i:] {
				result.Remaining = append(result.Remaining, d.Clone())
			}
			logger.WithError(err, "submission").WithFields(map[string]interface{}{
				"incident_id": incidentID,
				"submitted":   len(result.Submitted),
				"remaining":   len(result.Remaining),
			}).Error("Batch submission stopped")
			return result, fmt.Errorf("failed to submit %q: %w", center.Name, err)
		}
		result.Submitted = append(result.Submitted, SubmittedItem{
			DraftID:  draft.ID,
			CenterID: saved.ID,
			Name:     saved.Name,
			Created:  !draft.IsExisting(),
		})
		logger.WithCenter(saved.ID, saved.Name).Info("Center submitted")
		if previous != nil && *previous != "" && !slices.Contains(affected, *previous) {
			affected = append(affected, *previous)
		}
	}

	sc.refreshCounters(ctx, affected)
	return result, nil
}

// refreshCounters recounts every incident that gained or lost a center.
func (sc *SubmissionCoordinator) refreshCounters(ctx context.Context, incidentIDs []string) {
	if sc.counters == nil {
		return
	}
	for _, id := range incidentIDs {
		if err := sc.counters.RefreshIncident(ctx, id); err != nil {
			logger.WithError(err, "submission").WithField("incident_id", id).Warn("Failed to refresh incident counters")
		}
	}
}

func (sc *SubmissionCoordinator) prepare(draft models.Draft, incidentID string) models.EvacuationCenter {
	center := draft.Center.Clone()
	id := incidentID
	center.IncidentID = &id
	center.LastUpdated = sc.now()
	if center.Schema == "" {
		center.Schema = draft.Schema
	}
	center.Facilities = center.Facilities.Normalize()
	return center
}

func (sc *SubmissionCoordinator) submitOne(ctx context.Context, draft models.Draft, center models.EvacuationCenter) (models.EvacuationCenter, error) {
	if err := center.Validate(); err != nil {
		return models.EvacuationCenter{}, invalidInput(err.Error())
	}
	if draft.IsExisting() {
		return sc.centers.UpdateCenter(ctx, center)
	}
	return sc.centers.CreateCenter(ctx, center)
}

// SaveDraft persists an in-progress session so it can be resumed later.
func (sc *SubmissionCoordinator) SaveDraft(ctx context.Context, stored models.StoredDraft) error {
	if sc.drafts == nil {
		return errors.New("draft persistence is not configured")
	}
	stored.UpdatedAt = sc.now()
	if err := sc.drafts.SaveDraft(ctx, stored); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	logger.WithSession(stored.SessionID, stored.IncidentID).Info("Draft saved")
	return nil
}

func (sc *SubmissionCoordinator) LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error) {
	if sc.drafts == nil {
		return models.StoredDraft{}, fmt.Errorf("draft %s: %w", sessionID, ErrNotFound)
	}
	return sc.drafts.LoadDraft(ctx, sessionID)
}

// DiscardDraft removes a saved draft. A missing draft is not an error.
func (sc *SubmissionCoordinator) DiscardDraft(ctx context.Context, sessionID string) error {
	if sc.drafts == nil {
		return nil
	}
	if err := sc.drafts.DeleteDraft(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
