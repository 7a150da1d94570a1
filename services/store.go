package services

import (
	"mission-dispatch-system/models"
)

// AssignmentFilters are AND-combined; zero values mean "no constraint".
type AssignmentFilters struct {
	DurationType   string `json:"duration_type,omitempty"`
	Classification string `json:"classification,omitempty"`
	LocationType   string `json:"location_type,omitempty"`
}

// LeaderboardEntry is the projection returned by GetLeaderboard — never the
// full agent record.
type LeaderboardEntry struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Points      int64  `json:"points"`
	Rank        string `json:"rank"`
}

// Stats are the four engagement counters shown on the landing page. Each one
// degrades to zero independently when its count query fails.
type Stats struct {
	TotalAssignments int64 `json:"total_assignments"`
	TotalAgents      int64 `json:"total_agents"`
	TotalCompletions int64 `json:"total_completions"`
	TotalTeams       int64 `json:"total_teams"`
}

// Store is the shared contract of the two backends. RemoteStore talks to the
// relational store through GORM; LocalStore reproduces the same shape over
// flat JSON collection files. The Facade is the only caller that sees both.
//
// Sessions are threaded explicitly: no implementation holds a mutable
// "current user". Operations that may mint a session (anonymous auto-signin
// on accept/join) return the session they acted under.
type Store interface {
	SignUp(email, password, username string) (*Session, *models.Agent, error)
	SignIn(email, password string) (*Session, *models.Agent, error)
	SignInAnonymously() (*Session, *models.Agent, error)
	SignOut(sess *Session) error
	LoadAgentProfile(sess *Session) (*models.Agent, error)
	UpdateAgentProfile(sess *Session, updates map[string]any) (*models.Agent, error)

	GetRandomAssignment(durationType string) (*models.Assignment, error)
	GetAllAssignments(filters AssignmentFilters) ([]models.Assignment, error)
	CreateAssignment(sess *Session, a *models.Assignment) (*models.Assignment, error)
	AcceptAssignment(sess *Session, assignmentID string) (*models.AssignmentProgress, *Session, error)
	CompleteAssignment(sess *Session, progressID, notes string) (*models.AssignmentProgress, error)
	GetMyProgress(sess *Session) ([]models.AssignmentProgress, error)

	GetMissions() ([]models.Mission, error)
	CreateMission(sess *Session, m *models.Mission) (*models.Mission, error)
	JoinMission(sess *Session, missionID string) (*models.MissionProgress, *Session, error)

	GetTeams() ([]models.Team, error)
	CreateTeam(sess *Session, t *models.Team) (*models.Team, error)
	JoinTeam(sess *Session, teamID string) (*models.TeamMember, error)
	GetMyTeams(sess *Session) ([]models.TeamMember, error)

	GetLeaderboard(limit int) ([]LeaderboardEntry, error)
	GetStats() (*Stats, error)
}
