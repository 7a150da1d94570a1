package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mission-dispatch-system/models"
	"mission-dispatch-system/utils"
)

func prepareDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Agent{},
		&models.Assignment{},
		&models.AssignmentProgress{},
		&models.Mission{},
		&models.MissionProgress{},
		&models.Team{},
		&models.TeamMember{},
	))

	return db
}

func prepareRemote(t *testing.T) *RemoteStore {
	t.Helper()
	return NewRemoteStore(prepareDB(t), newFakeProvider())
}

func prepareLocal(t *testing.T) *LocalStore {
	t.Helper()

	files, err := utils.NewCollectionFile(t.TempDir())
	require.NoError(t, err)
	return NewLocalStore(files)
}

// fakeProvider is a deterministic in-memory identity provider.
type fakeProvider struct {
	mu        sync.Mutex
	seq       int
	passwords map[string]string // email -> password
	ids       map[string]string // email -> user id
	rejectAll bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		passwords: make(map[string]string),
		ids:       make(map[string]string),
	}
}

func (p *fakeProvider) nextID() string {
	p.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", p.seq)
}

func (p *fakeProvider) Register(email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rejectAll {
		return "", fmt.Errorf("%w: provider rejected request", ErrAuth)
	}
	if _, exists := p.ids[email]; exists {
		return "", fmt.Errorf("%w: duplicate email", ErrAuth)
	}

	id := p.nextID()
	p.ids[email] = id
	p.passwords[email] = password
	return id, nil
}

func (p *fakeProvider) RegisterAnonymous() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rejectAll {
		return "", fmt.Errorf("%w: provider rejected request", ErrAuth)
	}
	return p.nextID(), nil
}

func (p *fakeProvider) Authenticate(email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.rejectAll {
		return "", fmt.Errorf("%w: provider rejected request", ErrAuth)
	}
	if p.passwords[email] != password || password == "" {
		return "", fmt.Errorf("%w: bad credentials", ErrAuth)
	}
	return p.ids[email], nil
}

// signedUp is a shortcut for tests that just need any live session.
func signedUp(t *testing.T, s *RemoteStore, email, username string) *Session {
	t.Helper()

	sess, _, err := s.SignUp(email, "hunter22", username)
	require.NoError(t, err)
	return sess
}
