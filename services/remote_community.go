package services

import (
	"fmt"

	"mission-dispatch-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// makeSlug builds a URL slug from the human name plus a short id suffix so
// two entries with the same name never collide on the unique index.
func makeSlug(name, id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return slug.Make(name) + "-" + suffix
}

// GetMissions returns active missions, featured ones first.
func (s *RemoteStore) GetMissions() ([]models.Mission, error) {
	missions := make([]models.Mission, 0)
	err := s.DB.Where("is_active = ?", true).
		Order("is_featured DESC, created_at DESC").
		Find(&missions).Error
	if err != nil {
		return nil, remoteErr(err)
	}
	return missions, nil
}

func (s *RemoteStore) CreateMission(sess *Session, m *models.Mission) (*models.Mission, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: must be signed in to create missions", ErrAuth)
	}
	if m.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	m.ID = uuid.NewString()
	m.Slug = makeSlug(m.Title, m.ID)
	m.CreatedBy = sess.AgentID
	m.IsActive = true

	if err := s.DB.Create(m).Error; err != nil {
		return nil, remoteErr(err)
	}
	return m, nil
}

// JoinMission appends a membership row and bumps the mission's member count.
// Like AcceptAssignment, a missing session is satisfied by an anonymous one.
func (s *RemoteStore) JoinMission(sess *Session, missionID string) (*models.MissionProgress, *Session, error) {
	sess, err := s.EnsureSession(sess)
	if err != nil {
		return nil, nil, err
	}

	progress := &models.MissionProgress{
		ID:        uuid.NewString(),
		MissionID: missionID,
		AgentID:   sess.AgentID,
		Status:    models.ProgressActive,
	}
	if err := s.DB.Create(progress).Error; err != nil {
		return nil, sess, remoteErr(err)
	}

	if err := s.DB.Model(&models.Mission{}).
		Where("id = ?", missionID).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", 1)).Error; err != nil {
		return progress, sess, fmt.Errorf("%w: member_count bump: %v", ErrPartialWrite, err)
	}

	return progress, sess, nil
}

// GetTeams returns public teams, biggest first.
func (s *RemoteStore) GetTeams() ([]models.Team, error) {
	teams := make([]models.Team, 0)
	err := s.DB.Where("is_public = ?", true).
		Order("member_count DESC").
		Find(&teams).Error
	if err != nil {
		return nil, remoteErr(err)
	}
	return teams, nil
}

// CreateTeam inserts the team, then adds the creator as its leader-role
// member. The two writes are sequential, not transactional: if the member
// insert fails the team stays and ErrPartialWrite is returned with it.
func (s *RemoteStore) CreateTeam(sess *Session, t *models.Team) (*models.Team, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: must be signed in to create teams", ErrAuth)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	t.ID = uuid.NewString()
	t.Slug = makeSlug(t.Name, t.ID)
	t.LeaderID = sess.AgentID

	if err := s.DB.Create(t).Error; err != nil {
		return nil, remoteErr(err)
	}

	leader := &models.TeamMember{
		ID:      uuid.NewString(),
		TeamID:  t.ID,
		AgentID: sess.AgentID,
		Role:    models.RoleLeader,
	}
	if err := s.DB.Create(leader).Error; err != nil {
		return t, fmt.Errorf("%w: leader membership insert: %v", ErrPartialWrite, err)
	}

	return t, nil
}

// JoinTeam requires a real session — unlike assignments and missions there
// is no anonymous auto-signin here.
func (s *RemoteStore) JoinTeam(sess *Session, teamID string) (*models.TeamMember, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: must be signed in to join teams", ErrAuth)
	}

	member := &models.TeamMember{
		ID:      uuid.NewString(),
		TeamID:  teamID,
		AgentID: sess.AgentID,
		Role:    models.RoleMember,
	}
	if err := s.DB.Create(member).Error; err != nil {
		return nil, remoteErr(err)
	}

	if err := s.DB.Model(&models.Team{}).
		Where("id = ?", teamID).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", 1)).Error; err != nil {
		return member, fmt.Errorf("%w: member_count bump: %v", ErrPartialWrite, err)
	}

	return member, nil
}

func (s *RemoteStore) GetMyTeams(sess *Session) ([]models.TeamMember, error) {
	if sess == nil {
		return []models.TeamMember{}, nil
	}

	memberships := make([]models.TeamMember, 0)
	err := s.DB.Where("agent_id = ?", sess.AgentID).
		Preload("Team").
		Find(&memberships).Error
	if err != nil {
		return nil, remoteErr(err)
	}
	return memberships, nil
}
