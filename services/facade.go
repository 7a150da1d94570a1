package services

import (
	"errors"
	"log"

	"mission-dispatch-system/models"
)

// Facade is the one object callers talk to. Every operation tries the
// remote backend first when one is configured and silently falls through to
// the local store on connectivity-class failures. Callers only ever see a
// record, a list, or nil/empty — never which backend answered.
//
// Auth, not-found, validation and partial-write errors are real answers,
// not connectivity problems: they propagate and never trigger fallback.
type Facade struct {
	remote Store // nil when no remote connection is configured
	local  Store
}

// NewFacade wires the two backends. Pass a nil remote to run in pure
// local-fallback mode.
func NewFacade(remote, local Store) *Facade {
	return &Facade{remote: remote, local: local}
}

// Online reports whether a remote connection handle exists at all. It says
// nothing about whether the next call will succeed.
func (f *Facade) Online() bool {
	return f.remote != nil
}

func fallbackWorthy(err error) bool {
	switch {
	case errors.Is(err, ErrAuth),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrPartialWrite):
		return false
	}
	return true
}

// dispatch runs op against the remote backend, falling through to local
// when there is no remote or the remote failed with a connectivity-class
// error. This is the only place the remote-or-local decision lives.
func dispatch[T any](f *Facade, op func(Store) (T, error)) (T, error) {
	if f.remote != nil {
		v, err := op(f.remote)
		if err == nil || !fallbackWorthy(err) {
			return v, err
		}
		log.Printf("[FACADE] remote path failed, falling back to local: %v", err)
	}
	return op(f.local)
}

// dispatch2 is dispatch for operations that also thread a session back.
func dispatch2[T any](f *Facade, op func(Store) (T, *Session, error)) (T, *Session, error) {
	if f.remote != nil {
		v, sess, err := op(f.remote)
		if err == nil || !fallbackWorthy(err) {
			return v, sess, err
		}
		log.Printf("[FACADE] remote path failed, falling back to local: %v", err)
	}
	return op(f.local)
}

// dispatchAuth is dispatch for the sign-in family, which returns a session
// alongside the agent it belongs to.
func dispatchAuth(f *Facade, op func(Store) (*Session, *models.Agent, error)) (*Session, *models.Agent, error) {
	if f.remote != nil {
		sess, agent, err := op(f.remote)
		if err == nil || !fallbackWorthy(err) {
			return sess, agent, err
		}
		log.Printf("[FACADE] remote path failed, falling back to local: %v", err)
	}
	return op(f.local)
}

func (f *Facade) SignUp(email, password, username string) (*Session, *models.Agent, error) {
	return dispatchAuth(f, func(s Store) (*Session, *models.Agent, error) {
		return s.SignUp(email, password, username)
	})
}

func (f *Facade) SignIn(email, password string) (*Session, *models.Agent, error) {
	return dispatchAuth(f, func(s Store) (*Session, *models.Agent, error) {
		return s.SignIn(email, password)
	})
}

func (f *Facade) SignInAnonymously() (*Session, *models.Agent, error) {
	return dispatchAuth(f, func(s Store) (*Session, *models.Agent, error) {
		return s.SignInAnonymously()
	})
}

func (f *Facade) SignOut(sess *Session) error {
	_, err := dispatch(f, func(s Store) (struct{}, error) {
		return struct{}{}, s.SignOut(sess)
	})
	return err
}

func (f *Facade) LoadAgentProfile(sess *Session) (*models.Agent, error) {
	return dispatch(f, func(s Store) (*models.Agent, error) {
		return s.LoadAgentProfile(sess)
	})
}

func (f *Facade) UpdateAgentProfile(sess *Session, updates map[string]any) (*models.Agent, error) {
	return dispatch(f, func(s Store) (*models.Agent, error) {
		return s.UpdateAgentProfile(sess, updates)
	})
}

func (f *Facade) GetRandomAssignment(durationType string) (*models.Assignment, error) {
	return dispatch(f, func(s Store) (*models.Assignment, error) {
		return s.GetRandomAssignment(durationType)
	})
}

func (f *Facade) GetAllAssignments(filters AssignmentFilters) ([]models.Assignment, error) {
	return dispatch(f, func(s Store) ([]models.Assignment, error) {
		return s.GetAllAssignments(filters)
	})
}

func (f *Facade) CreateAssignment(sess *Session, a *models.Assignment) (*models.Assignment, error) {
	return dispatch(f, func(s Store) (*models.Assignment, error) {
		return s.CreateAssignment(sess, a)
	})
}

func (f *Facade) AcceptAssignment(sess *Session, assignmentID string) (*models.AssignmentProgress, *Session, error) {
	return dispatch2(f, func(s Store) (*models.AssignmentProgress, *Session, error) {
		return s.AcceptAssignment(sess, assignmentID)
	})
}

func (f *Facade) CompleteAssignment(sess *Session, progressID, notes string) (*models.AssignmentProgress, error) {
	return dispatch(f, func(s Store) (*models.AssignmentProgress, error) {
		return s.CompleteAssignment(sess, progressID, notes)
	})
}

func (f *Facade) GetMyProgress(sess *Session) ([]models.AssignmentProgress, error) {
	return dispatch(f, func(s Store) ([]models.AssignmentProgress, error) {
		return s.GetMyProgress(sess)
	})
}

func (f *Facade) GetMissions() ([]models.Mission, error) {
	return dispatch(f, func(s Store) ([]models.Mission, error) {
		return s.GetMissions()
	})
}

func (f *Facade) CreateMission(sess *Session, m *models.Mission) (*models.Mission, error) {
	return dispatch(f, func(s Store) (*models.Mission, error) {
		return s.CreateMission(sess, m)
	})
}

func (f *Facade) JoinMission(sess *Session, missionID string) (*models.MissionProgress, *Session, error) {
	return dispatch2(f, func(s Store) (*models.MissionProgress, *Session, error) {
		return s.JoinMission(sess, missionID)
	})
}

func (f *Facade) GetTeams() ([]models.Team, error) {
	return dispatch(f, func(s Store) ([]models.Team, error) {
		return s.GetTeams()
	})
}

func (f *Facade) CreateTeam(sess *Session, t *models.Team) (*models.Team, error) {
	return dispatch(f, func(s Store) (*models.Team, error) {
		return s.CreateTeam(sess, t)
	})
}

func (f *Facade) JoinTeam(sess *Session, teamID string) (*models.TeamMember, error) {
	return dispatch(f, func(s Store) (*models.TeamMember, error) {
		return s.JoinTeam(sess, teamID)
	})
}

func (f *Facade) GetMyTeams(sess *Session) ([]models.TeamMember, error) {
	return dispatch(f, func(s Store) ([]models.TeamMember, error) {
		return s.GetMyTeams(sess)
	})
}

func (f *Facade) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	return dispatch(f, func(s Store) ([]LeaderboardEntry, error) {
		return s.GetLeaderboard(limit)
	})
}

func (f *Facade) GetStats() (*Stats, error) {
	return dispatch(f, func(s Store) (*Stats, error) {
		return s.GetStats()
	})
}
