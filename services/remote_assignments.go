package services

import (
	"fmt"
	"time"

	"mission-dispatch-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// completionReward is the fixed point award per completed assignment.
const completionReward = 10

// GetRandomAssignment picks one active assignment server-side, optionally
// narrowed by duration type. No uniformity guarantee beyond what the
// database's RANDOM() gives us. Returns nil (not an error) when nothing
// matches.
func (s *RemoteStore) GetRandomAssignment(durationType string) (*models.Assignment, error) {
	db := s.DB.Where("is_active = ?", true)
	if durationType != "" {
		db = db.Where("duration_type = ?", durationType)
	}

	var picks []models.Assignment
	if err := db.Order("RANDOM()").Limit(1).Find(&picks).Error; err != nil {
		return nil, remoteErr(err)
	}
	if len(picks) == 0 {
		return nil, nil
	}
	return &picks[0], nil
}

// GetAllAssignments returns active assignments matching every given filter,
// newest first. No match is an empty list, never an error.
func (s *RemoteStore) GetAllAssignments(filters AssignmentFilters) ([]models.Assignment, error) {
	db := s.DB.Where("is_active = ?", true)

	if filters.DurationType != "" {
		db = db.Where("duration_type = ?", filters.DurationType)
	}
	if filters.Classification != "" {
		db = db.Where("classification = ?", filters.Classification)
	}
	if filters.LocationType != "" {
		db = db.Where("location_type = ?", filters.LocationType)
	}

	assignments := make([]models.Assignment, 0)
	if err := db.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, remoteErr(err)
	}
	return assignments, nil
}

// CreateAssignment publishes a new catalog entry. The creator's username and
// location are stamped onto the record as a snapshot — later profile edits
// do not propagate.
func (s *RemoteStore) CreateAssignment(sess *Session, a *models.Assignment) (*models.Assignment, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: must be signed in to create assignments", ErrAuth)
	}
	if a.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	commanderName := "Anonymous"
	commanderLocation := "Unknown"
	if agent, err := s.LoadAgentProfile(sess); err == nil {
		commanderName = agent.Username
		if agent.LocationCity != nil && *agent.LocationCity != "" {
			commanderLocation = *agent.LocationCity
		}
	}

	a.ID = uuid.NewString()
	a.CreatedBy = sess.AgentID
	a.CommanderName = commanderName
	a.CommanderLocation = commanderLocation
	a.IsActive = true

	if err := s.DB.Create(a).Error; err != nil {
		return nil, remoteErr(err)
	}
	return a, nil
}

// ImportAssignment promotes an assignment created offline into the remote
// catalog. The local- id is replaced with a real uuid; creator snapshot and
// counters are carried over as-is. Used by the pending-flush worker only.
func (s *RemoteStore) ImportAssignment(a *models.Assignment) (*models.Assignment, error) {
	imported := *a
	imported.ID = uuid.NewString()
	if err := s.DB.Create(&imported).Error; err != nil {
		return nil, remoteErr(err)
	}
	return &imported, nil
}

// AcceptAssignment records that the session's agent took the assignment on.
// A nil session is satisfied by EnsureSession, which signs in anonymously —
// the returned session is the one the progress row was written under, and
// callers must keep it.
//
// Two writes, not one transaction: the progress insert, then an atomic
// times_accepted bump. The bump uses a column expression so concurrent
// accepts never lose updates. If the bump fails the progress row stays and
// ErrPartialWrite is returned alongside it.
func (s *RemoteStore) AcceptAssignment(sess *Session, assignmentID string) (*models.AssignmentProgress, *Session, error) {
	sess, err := s.EnsureSession(sess)
	if err != nil {
		return nil, nil, err
	}

	progress := &models.AssignmentProgress{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		AgentID:      sess.AgentID,
		Status:       models.ProgressAccepted,
	}
	if err := s.DB.Create(progress).Error; err != nil {
		return nil, sess, remoteErr(err)
	}

	if err := s.DB.Model(&models.Assignment{}).
		Where("id = ?", assignmentID).
		UpdateColumn("times_accepted", gorm.Expr("times_accepted + ?", 1)).Error; err != nil {
		return progress, sess, fmt.Errorf("%w: times_accepted bump: %v", ErrPartialWrite, err)
	}

	return progress, sess, nil
}

// CompleteAssignment transitions a progress row to completed and pays out
// the fixed reward. There is no already-completed guard: re-completing
// succeeds and awards again. That matches the current product behavior and
// is asserted by tests — a policy decision is pending before it can change.
func (s *RemoteStore) CompleteAssignment(sess *Session, progressID, notes string) (*models.AssignmentProgress, error) {
	var progress models.AssignmentProgress
	if err := s.DB.Where("id = ?", progressID).First(&progress).Error; err != nil {
		return nil, remoteErr(err)
	}

	now := time.Now()
	updates := map[string]any{
		"status":           models.ProgressCompleted,
		"completion_notes": notes,
		"completed_at":     now,
	}
	if err := s.DB.Model(&progress).Updates(updates).Error; err != nil {
		return nil, remoteErr(err)
	}
	progress.Status = models.ProgressCompleted
	progress.CompletionNotes = notes
	progress.CompletedAt = &now

	agentID := progress.AgentID
	if sess != nil {
		agentID = sess.AgentID
	}

	// Best-effort follow-ups, same non-transactional shape as accept.
	if err := s.DB.Model(&models.Assignment{}).
		Where("id = ?", progress.AssignmentID).
		UpdateColumn("times_completed", gorm.Expr("times_completed + ?", 1)).Error; err != nil {
		return &progress, fmt.Errorf("%w: times_completed bump: %v", ErrPartialWrite, err)
	}

	if err := s.DB.Model(&models.Agent{}).
		Where("id = ?", agentID).
		UpdateColumn("points", gorm.Expr("points + ?", completionReward)).Error; err != nil {
		return &progress, fmt.Errorf("%w: point award: %v", ErrPartialWrite, err)
	}

	return &progress, nil
}

// GetMyProgress lists the agent's progress rows, newest acceptance first,
// with the parent assignment preloaded. No session means no progress.
func (s *RemoteStore) GetMyProgress(sess *Session) ([]models.AssignmentProgress, error) {
	if sess == nil {
		return []models.AssignmentProgress{}, nil
	}

	progress := make([]models.AssignmentProgress, 0)
	err := s.DB.Where("agent_id = ?", sess.AgentID).
		Preload("Assignment").
		Order("accepted_at DESC").
		Find(&progress).Error
	if err != nil {
		return nil, remoteErr(err)
	}
	return progress, nil
}
