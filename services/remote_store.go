package services

import (
	"errors"
	"fmt"
	"log"

	"mission-dispatch-system/models"

	"gorm.io/gorm"
)

// RemoteStore is the primary backend: the relational collection store plus
// the external identity provider. It implements Store.
type RemoteStore struct {
	DB       *gorm.DB
	Provider IdentityProvider
}

func NewRemoteStore(db *gorm.DB, provider IdentityProvider) *RemoteStore {
	return &RemoteStore{DB: db, Provider: provider}
}

// remoteErr maps a raw DB error onto the store taxonomy. Record-not-found
// keeps its meaning; anything else is treated as a connectivity-class
// failure so the facade can fall through to local storage.
func remoteErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrNoConnection, err)
}

// SignUp registers the credentials with the identity provider and mirrors
// the resulting identity into the agents table. When the provider rejects
// the credentials no agent row is created.
func (s *RemoteStore) SignUp(email, password, username string) (*Session, *models.Agent, error) {
	if email == "" || password == "" || username == "" {
		return nil, nil, fmt.Errorf("%w: email, password and username are required", ErrValidation)
	}

	userID, err := s.Provider.Register(email, password)
	if err != nil {
		return nil, nil, err
	}

	agent := &models.Agent{
		ID:          userID,
		Email:       &email,
		Username:    username,
		DisplayName: username,
		Rank:        "recruit",
	}
	if err := s.DB.Create(agent).Error; err != nil {
		return nil, nil, remoteErr(err)
	}

	sess := &Session{AgentID: userID, Email: email, Username: username}
	return sess, agent, nil
}

// SignIn authenticates against the provider, then loads the existing agent
// profile. The profile is never mutated on failure.
func (s *RemoteStore) SignIn(email, password string) (*Session, *models.Agent, error) {
	userID, err := s.Provider.Authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}

	var agent models.Agent
	if err := s.DB.Where("id = ?", userID).First(&agent).Error; err != nil {
		return nil, nil, remoteErr(err)
	}

	sess := &Session{AgentID: agent.ID, Email: email, Username: agent.Username}
	return sess, &agent, nil
}

// SignInAnonymously mints a random callsign and creates a full agent record
// for it. The callsign is not checked for collisions.
func (s *RemoteStore) SignInAnonymously() (*Session, *models.Agent, error) {
	username := randomCallsign()

	userID, err := s.Provider.RegisterAnonymous()
	if err != nil {
		return nil, nil, err
	}

	agent := &models.Agent{
		ID:          userID,
		Username:    username,
		DisplayName: username,
		Rank:        "recruit",
		IsAnonymous: true,
	}
	if err := s.DB.Create(agent).Error; err != nil {
		return nil, nil, remoteErr(err)
	}

	sess := &Session{AgentID: userID, Username: username, Anonymous: true}
	return sess, agent, nil
}

// SignOut is idempotent: sessions are plain values, there is nothing
// server-side to tear down here.
func (s *RemoteStore) SignOut(_ *Session) error {
	return nil
}

// EnsureSession returns the given session unchanged, or mints an anonymous
// one when none exists. AcceptAssignment and JoinMission call this on the
// caller's behalf — a side effect the caller did not ask for, kept from the
// original behavior but made an explicit, named step.
func (s *RemoteStore) EnsureSession(sess *Session) (*Session, error) {
	if sess != nil {
		return sess, nil
	}

	newSess, _, err := s.SignInAnonymously()
	if err != nil {
		return nil, err
	}

	log.Printf("[SESSION] anonymous session created on demand: %s", newSess.Username)
	return newSess, nil
}

func (s *RemoteStore) LoadAgentProfile(sess *Session) (*models.Agent, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no active session", ErrAuth)
	}

	var agent models.Agent
	if err := s.DB.Where("id = ?", sess.AgentID).First(&agent).Error; err != nil {
		return nil, remoteErr(err)
	}
	return &agent, nil
}

// profile fields a caller may set through UpdateAgentProfile. Points and
// rank move only through completion awards.
var updatableAgentFields = map[string]bool{
	"username":      true,
	"display_name":  true,
	"location_city": true,
	"email":         true,
}

// UpdateAgentProfile applies the given field updates with upsert semantics:
// a missing row (possible after a provider-side identity import) is created
// rather than erroring.
func (s *RemoteStore) UpdateAgentProfile(sess *Session, updates map[string]any) (*models.Agent, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no active session", ErrAuth)
	}

	for field := range updates {
		if !updatableAgentFields[field] {
			return nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, field)
		}
	}

	var agent models.Agent
	err := s.DB.Where("id = ?", sess.AgentID).First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		agent = models.Agent{
			ID:          sess.AgentID,
			Username:    sess.Username,
			DisplayName: sess.Username,
			Rank:        "recruit",
			IsAnonymous: sess.Anonymous,
		}
		if err := s.DB.Create(&agent).Error; err != nil {
			return nil, remoteErr(err)
		}
	} else if err != nil {
		return nil, remoteErr(err)
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&agent).Updates(updates).Error; err != nil {
			return nil, remoteErr(err)
		}
	}

	if err := s.DB.Where("id = ?", sess.AgentID).First(&agent).Error; err != nil {
		return nil, remoteErr(err)
	}
	return &agent, nil
}
