// services/local_store.go — degraded-mode backend over flat JSON collections
package services

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"mission-dispatch-system/models"
	"mission-dispatch-system/utils"
)

// Collection names inside the local data dir.
const (
	colAgents   = "agents"
	colTasks    = "assignments"
	colMissions = "missions"
	colTeams    = "teams"
	colProgress = "assignment_progress"
	colPending  = "pending"
)

// localProgress is the stored shape of the progress map: at most one entry
// per assignment id. A second accept of the same assignment OVERWRITES the
// entry instead of adding a row — a known asymmetry against the remote
// model, acceptable for a degraded path.
type localProgress struct {
	Status          string    `json:"status"`
	CompletionNotes string    `json:"completion_notes,omitempty"`
	AgentID         string    `json:"agent_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// PendingOp is a write captured while offline, waiting for the flush worker
// to replay it against the remote store.
type PendingOp struct {
	Kind       string             `json:"kind"` // "assignment"
	Assignment *models.Assignment `json:"assignment,omitempty"`
	QueuedAt   time.Time          `json:"queued_at"`
}

// LocalStore implements Store over the on-device collection files. It is
// the fallback backend only: id generation is time-prefixed and unchecked
// for collisions, and credential sign-in is impossible without the provider.
//
// mu serializes whole read-modify-write sequences. The lock inside
// CollectionFile only covers a single file read or write — without mu, two
// concurrent mutations would both read the old blob and the second write
// would erase the first.
type LocalStore struct {
	files *utils.CollectionFile
	mu    sync.Mutex
}

func NewLocalStore(files *utils.CollectionFile) *LocalStore {
	return &LocalStore{files: files}
}

// localID generates ids for records created offline. The "local-" prefix
// keeps them distinguishable from remote uuids; time prefix plus random
// suffix makes collisions unlikely, not impossible.
func localID() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = callsignAlphabet[rand.Intn(len(callsignAlphabet))]
	}
	return fmt.Sprintf("local-%d-%s", time.Now().UnixMilli(), string(b))
}

func (s *LocalStore) readAssignments() []models.Assignment {
	assignments := make([]models.Assignment, 0)
	s.files.Read(colTasks, &assignments)
	return assignments
}

func (s *LocalStore) readAgents() []models.Agent {
	agents := make([]models.Agent, 0)
	s.files.Read(colAgents, &agents)
	return agents
}

func (s *LocalStore) readProgress() map[string]localProgress {
	progress := make(map[string]localProgress)
	s.files.Read(colProgress, &progress)
	return progress
}

// ---- sessions ----

// SignUp needs the identity provider; it cannot work offline.
func (s *LocalStore) SignUp(_, _, _ string) (*Session, *models.Agent, error) {
	return nil, nil, fmt.Errorf("%w: sign-up needs the identity provider", ErrNoConnection)
}

func (s *LocalStore) SignIn(_, _ string) (*Session, *models.Agent, error) {
	return nil, nil, fmt.Errorf("%w: credential sign-in needs the identity provider", ErrNoConnection)
}

// SignInAnonymously works offline: the agent lives in the local agents blob
// until the device is back online.
func (s *LocalStore) SignInAnonymously() (*Session, *models.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signInAnonymously()
}

// signInAnonymously is SignInAnonymously with mu already held, for callers
// that mint a session mid-operation.
func (s *LocalStore) signInAnonymously() (*Session, *models.Agent, error) {
	username := randomCallsign()
	agent := models.Agent{
		ID:          localID(),
		Username:    username,
		DisplayName: username,
		Rank:        "recruit",
		IsAnonymous: true,
	}
	agent.CreatedAt = time.Now()

	agents := s.readAgents()
	agents = append(agents, agent)
	if err := s.files.Write(colAgents, agents); err != nil {
		return nil, nil, err
	}

	sess := &Session{AgentID: agent.ID, Username: username, Anonymous: true}
	return sess, &agent, nil
}

func (s *LocalStore) SignOut(_ *Session) error {
	return nil
}

func (s *LocalStore) EnsureSession(sess *Session) (*Session, error) {
	if sess != nil {
		return sess, nil
	}
	newSess, _, err := s.SignInAnonymously()
	return newSess, err
}

func (s *LocalStore) LoadAgentProfile(sess *Session) (*models.Agent, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no active session", ErrAuth)
	}
	for _, agent := range s.readAgents() {
		if agent.ID == sess.AgentID {
			return &agent, nil
		}
	}
	return nil, fmt.Errorf("%w: agent %s", ErrNotFound, sess.AgentID)
}

func (s *LocalStore) UpdateAgentProfile(sess *Session, updates map[string]any) (*models.Agent, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no active session", ErrAuth)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for field := range updates {
		if !updatableAgentFields[field] {
			return nil, fmt.Errorf("%w: field %q is not updatable", ErrValidation, field)
		}
	}

	agents := s.readAgents()
	idx := -1
	for i := range agents {
		if agents[i].ID == sess.AgentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		agent := models.Agent{
			ID:          sess.AgentID,
			Username:    sess.Username,
			DisplayName: sess.Username,
			Rank:        "recruit",
			IsAnonymous: sess.Anonymous,
		}
		agents = append(agents, agent)
		idx = len(agents) - 1
	}

	applyAgentUpdates(&agents[idx], updates)
	agents[idx].UpdatedAt = time.Now()
	if err := s.files.Write(colAgents, agents); err != nil {
		return nil, err
	}
	return &agents[idx], nil
}

func applyAgentUpdates(agent *models.Agent, updates map[string]any) {
	for field, value := range updates {
		str, ok := value.(string)
		if !ok {
			continue
		}
		switch field {
		case "username":
			agent.Username = str
		case "display_name":
			agent.DisplayName = str
		case "location_city":
			agent.LocationCity = &str
		case "email":
			agent.Email = &str
		}
	}
}

// ---- assignments ----

func matchesFilters(a *models.Assignment, f AssignmentFilters) bool {
	if !a.IsActive {
		return false
	}
	if f.DurationType != "" && a.DurationType != f.DurationType {
		return false
	}
	if f.Classification != "" && a.Classification != f.Classification {
		return false
	}
	if f.LocationType != "" && a.LocationType != f.LocationType {
		return false
	}
	return true
}

func (s *LocalStore) GetAllAssignments(filters AssignmentFilters) ([]models.Assignment, error) {
	matched := make([]models.Assignment, 0)
	for _, a := range s.readAssignments() {
		if matchesFilters(&a, filters) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (s *LocalStore) GetRandomAssignment(durationType string) (*models.Assignment, error) {
	matched, _ := s.GetAllAssignments(AssignmentFilters{DurationType: durationType})
	if len(matched) == 0 {
		return nil, nil
	}
	pick := matched[rand.Intn(len(matched))]
	return &pick, nil
}

// CreateAssignment stores the record locally and queues it for replay once
// the remote store is reachable again. Unlike the remote path no session is
// demanded — there is no one to verify it against offline.
func (s *LocalStore) CreateAssignment(sess *Session, a *models.Assignment) (*models.Assignment, error) {
	if a.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = localID()
	a.IsActive = true
	a.CreatedAt = time.Now()
	a.CommanderName = "Anonymous"
	a.CommanderLocation = "Unknown"
	if sess != nil {
		a.CreatedBy = sess.AgentID
		a.CommanderName = sess.Username
	}

	assignments := append([]models.Assignment{*a}, s.readAssignments()...)
	if err := s.files.Write(colTasks, assignments); err != nil {
		return nil, err
	}

	s.queuePending(PendingOp{Kind: "assignment", Assignment: a, QueuedAt: time.Now()})
	return a, nil
}

// AcceptAssignment keeps one progress entry per assignment id: accepting
// again overwrites. The synthesized progress record uses the assignment id
// as its own id, which is what CompleteAssignment resolves.
func (s *LocalStore) AcceptAssignment(sess *Session, assignmentID string) (*models.AssignmentProgress, *Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		var err error
		if sess, _, err = s.signInAnonymously(); err != nil {
			return nil, nil, err
		}
	}

	now := time.Now()
	progress := s.readProgress()
	progress[assignmentID] = localProgress{
		Status:    models.ProgressAccepted,
		AgentID:   sess.AgentID,
		Timestamp: now,
	}
	if err := s.files.Write(colProgress, progress); err != nil {
		return nil, sess, err
	}

	s.bumpAssignmentCounter(assignmentID, func(a *models.Assignment) { a.TimesAccepted++ })

	return &models.AssignmentProgress{
		ID:           assignmentID,
		AssignmentID: assignmentID,
		AgentID:      sess.AgentID,
		Status:       models.ProgressAccepted,
		AcceptedAt:   now,
	}, sess, nil
}

func (s *LocalStore) CompleteAssignment(sess *Session, progressID, notes string) (*models.AssignmentProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := s.readProgress()
	entry, ok := progress[progressID]
	if !ok {
		return nil, fmt.Errorf("%w: progress %s", ErrNotFound, progressID)
	}

	now := time.Now()
	entry.Status = models.ProgressCompleted
	entry.CompletionNotes = notes
	entry.Timestamp = now
	progress[progressID] = entry
	if err := s.files.Write(colProgress, progress); err != nil {
		return nil, err
	}

	s.bumpAssignmentCounter(progressID, func(a *models.Assignment) { a.TimesCompleted++ })
	s.awardPoints(entry.AgentID, completionReward)

	return &models.AssignmentProgress{
		ID:              progressID,
		AssignmentID:    progressID,
		AgentID:         entry.AgentID,
		Status:          models.ProgressCompleted,
		CompletionNotes: notes,
		CompletedAt:     &now,
	}, nil
}

func (s *LocalStore) GetMyProgress(sess *Session) ([]models.AssignmentProgress, error) {
	records := make([]models.AssignmentProgress, 0)
	for assignmentID, entry := range s.readProgress() {
		rec := models.AssignmentProgress{
			ID:              assignmentID,
			AssignmentID:    assignmentID,
			AgentID:         entry.AgentID,
			Status:          entry.Status,
			CompletionNotes: entry.CompletionNotes,
			AcceptedAt:      entry.Timestamp,
		}
		if entry.Status == models.ProgressCompleted {
			t := entry.Timestamp
			rec.CompletedAt = &t
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AcceptedAt.After(records[j].AcceptedAt)
	})
	return records, nil
}

func (s *LocalStore) bumpAssignmentCounter(assignmentID string, bump func(*models.Assignment)) {
	assignments := s.readAssignments()
	for i := range assignments {
		if assignments[i].ID == assignmentID {
			bump(&assignments[i])
			_ = s.files.Write(colTasks, assignments)
			return
		}
	}
}

func (s *LocalStore) awardPoints(agentID string, points int64) {
	if agentID == "" {
		return
	}
	agents := s.readAgents()
	for i := range agents {
		if agents[i].ID == agentID {
			agents[i].Points += points
			_ = s.files.Write(colAgents, agents)
			return
		}
	}
}

// ---- missions & teams ----

// Mission and team reads degrade to whatever the device has cached; the
// write paths are online-only, matching the original fallback scope.

func (s *LocalStore) GetMissions() ([]models.Mission, error) {
	missions := make([]models.Mission, 0)
	s.files.Read(colMissions, &missions)
	sort.SliceStable(missions, func(i, j int) bool {
		return missions[i].IsFeatured && !missions[j].IsFeatured
	})
	return missions, nil
}

func (s *LocalStore) CreateMission(_ *Session, _ *models.Mission) (*models.Mission, error) {
	return nil, fmt.Errorf("%w: missions cannot be created offline", ErrNoConnection)
}

func (s *LocalStore) JoinMission(_ *Session, _ string) (*models.MissionProgress, *Session, error) {
	return nil, nil, fmt.Errorf("%w: missions cannot be joined offline", ErrNoConnection)
}

func (s *LocalStore) GetTeams() ([]models.Team, error) {
	teams := make([]models.Team, 0)
	s.files.Read(colTeams, &teams)
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].MemberCount > teams[j].MemberCount
	})
	return teams, nil
}

func (s *LocalStore) CreateTeam(_ *Session, _ *models.Team) (*models.Team, error) {
	return nil, fmt.Errorf("%w: teams cannot be created offline", ErrNoConnection)
}

func (s *LocalStore) JoinTeam(_ *Session, _ string) (*models.TeamMember, error) {
	return nil, fmt.Errorf("%w: teams cannot be joined offline", ErrNoConnection)
}

func (s *LocalStore) GetMyTeams(_ *Session) ([]models.TeamMember, error) {
	return []models.TeamMember{}, nil
}

// ---- aggregates ----

func (s *LocalStore) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	agents := s.readAgents()
	sort.Slice(agents, func(i, j int) bool { return agents[i].Points > agents[j].Points })

	entries := make([]LeaderboardEntry, 0, limit)
	for _, agent := range agents {
		if len(entries) == limit {
			break
		}
		entries = append(entries, LeaderboardEntry{
			Username:    agent.Username,
			DisplayName: agent.DisplayName,
			Points:      agent.Points,
			Rank:        agent.Rank,
		})
	}
	return entries, nil
}

func (s *LocalStore) GetStats() (*Stats, error) {
	stats := &Stats{
		TotalAssignments: int64(len(s.readAssignments())),
		TotalAgents:      int64(len(s.readAgents())),
	}

	teams := make([]models.Team, 0)
	s.files.Read(colTeams, &teams)
	stats.TotalTeams = int64(len(teams))

	for _, entry := range s.readProgress() {
		if entry.Status == models.ProgressCompleted {
			stats.TotalCompletions++
		}
	}
	return stats, nil
}

// ---- pending queue ----

func (s *LocalStore) queuePending(op PendingOp) {
	pending := make([]PendingOp, 0)
	s.files.Read(colPending, &pending)
	pending = append(pending, op)
	_ = s.files.Write(colPending, pending)
}

// PendingOps returns the writes captured while offline, oldest first.
func (s *LocalStore) PendingOps() []PendingOp {
	pending := make([]PendingOp, 0)
	s.files.Read(colPending, &pending)
	return pending
}

// DropPending removes one replayed op, matched by its queued assignment id.
func (s *LocalStore) DropPending(assignmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.PendingOps()
	kept := pending[:0]
	for _, op := range pending {
		if op.Assignment == nil || op.Assignment.ID != assignmentID {
			kept = append(kept, op)
		}
	}
	_ = s.files.Write(colPending, kept)
}

// PrunePending removes ops that can never be replayed — unknown kind or a
// missing payload. Returns how many were dropped. Without this, one bad
// entry would sit in the queue forever: DropPending can only match ops that
// carry an assignment.
func (s *LocalStore) PrunePending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.PendingOps()
	kept := make([]PendingOp, 0, len(pending))
	for _, op := range pending {
		if op.Kind == "assignment" && op.Assignment != nil {
			kept = append(kept, op)
		}
	}

	dropped := len(pending) - len(kept)
	if dropped > 0 {
		_ = s.files.Write(colPending, kept)
	}
	return dropped
}
