package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-dispatch-system/models"
	"mission-dispatch-system/utils"
)

func TestLocalCorruptBlobReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assignments.json"), []byte("{not json"), 0o644))

	files, err := utils.NewCollectionFile(dir)
	require.NoError(t, err)
	s := NewLocalStore(files)

	assignments, err := s.GetAllAssignments(AssignmentFilters{})
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestLocalCreateAssignsLocalIDAndPrepends(t *testing.T) {
	s := prepareLocal(t)

	first, err := s.CreateAssignment(nil, &models.Assignment{Title: "first", DurationType: models.DurationQuick})
	require.NoError(t, err)
	second, err := s.CreateAssignment(nil, &models.Assignment{Title: "second", DurationType: models.DurationQuick})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.ID, "local-"))
	assert.True(t, strings.HasPrefix(second.ID, "local-"))
	assert.NotEqual(t, first.ID, second.ID)

	all, err := s.GetAllAssignments(AssignmentFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first: prepend order.
	assert.Equal(t, "second", all[0].Title)
	assert.Equal(t, "first", all[1].Title)
}

func TestLocalCreateStampsCommanderFromSession(t *testing.T) {
	s := prepareLocal(t)

	sess := &Session{AgentID: "local-1-abcd", Username: "kim"}
	a, err := s.CreateAssignment(sess, &models.Assignment{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "kim", a.CommanderName)

	anon, err := s.CreateAssignment(nil, &models.Assignment{Title: "y"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", anon.CommanderName)
}

func TestLocalRandomAssignment(t *testing.T) {
	s := prepareLocal(t)

	_, err := s.CreateAssignment(nil, &models.Assignment{Title: "quick one", DurationType: models.DurationQuick})
	require.NoError(t, err)

	pick, err := s.GetRandomAssignment(models.DurationQuick)
	require.NoError(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, "quick one", pick.Title)

	// Empty filtered list is none, not an error.
	none, err := s.GetRandomAssignment(models.DurationEpic)
	require.NoError(t, err)
	assert.Nil(t, none)
}

// The local progress map keeps one entry per assignment id: a second accept
// overwrites instead of creating a second record. This asymmetry against
// the remote path is intentional and must stay visible.
func TestLocalAcceptOverwrites(t *testing.T) {
	s := prepareLocal(t)
	a, err := s.CreateAssignment(nil, &models.Assignment{Title: "x", DurationType: models.DurationQuick})
	require.NoError(t, err)

	p1, sess, err := s.AcceptAssignment(nil, a.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)

	p2, _, err := s.AcceptAssignment(sess, a.ID)
	require.NoError(t, err)

	// Same logical entry both times.
	assert.Equal(t, p1.ID, p2.ID)

	progress, err := s.GetMyProgress(sess)
	require.NoError(t, err)
	assert.Len(t, progress, 1)
}

func TestLocalCompleteAwardsPoints(t *testing.T) {
	s := prepareLocal(t)
	a, err := s.CreateAssignment(nil, &models.Assignment{Title: "x", DurationType: models.DurationQuick})
	require.NoError(t, err)

	accepted, sess, err := s.AcceptAssignment(nil, a.ID)
	require.NoError(t, err)

	completed, err := s.CompleteAssignment(sess, accepted.ID, "offline done")
	require.NoError(t, err)
	assert.Equal(t, models.ProgressCompleted, completed.Status)
	assert.Equal(t, "offline done", completed.CompletionNotes)

	agent, err := s.LoadAgentProfile(sess)
	require.NoError(t, err)
	assert.EqualValues(t, 10, agent.Points)
}

func TestLocalCompleteUnknownProgress(t *testing.T) {
	s := prepareLocal(t)

	_, err := s.CompleteAssignment(nil, "local-0-zzzz", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalCredentialAuthUnavailable(t *testing.T) {
	s := prepareLocal(t)

	_, _, err := s.SignUp("kim@example.com", "pw", "kim")
	require.ErrorIs(t, err, ErrNoConnection)

	_, _, err = s.SignIn("kim@example.com", "pw")
	require.ErrorIs(t, err, ErrNoConnection)
}

func TestLocalAnonymousSession(t *testing.T) {
	s := prepareLocal(t)

	sess, agent, err := s.SignInAnonymously()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sess.AgentID, "local-"))
	assert.Regexp(t, `^Agent_[a-z0-9]{9}$`, agent.Username)
}

// Concurrent writers must never erase each other: the whole read-modify-write
// is serialized, not just the individual file accesses.
func TestLocalConcurrentCreatesAllPersist(t *testing.T) {
	s := prepareLocal(t)

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.CreateAssignment(nil, &models.Assignment{
				Title:        fmt.Sprintf("task %d", n),
				DurationType: models.DurationQuick,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.GetAllAssignments(AssignmentFilters{})
	require.NoError(t, err)
	assert.Len(t, all, writers)
	assert.Len(t, s.PendingOps(), writers)
}

func TestLocalConcurrentCompletionsAllAward(t *testing.T) {
	s := prepareLocal(t)
	sess, _, err := s.SignInAnonymously()
	require.NoError(t, err)

	const tasks = 20
	ids := make([]string, tasks)
	for i := range ids {
		accepted, _, err := s.AcceptAssignment(sess, fmt.Sprintf("assignment-%d", i))
		require.NoError(t, err)
		ids[i] = accepted.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(progressID string) {
			defer wg.Done()
			_, err := s.CompleteAssignment(sess, progressID, "")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	agent, err := s.LoadAgentProfile(sess)
	require.NoError(t, err)
	assert.EqualValues(t, tasks*10, agent.Points)
}

func TestLocalPendingQueue(t *testing.T) {
	s := prepareLocal(t)

	a, err := s.CreateAssignment(nil, &models.Assignment{Title: "x", DurationType: models.DurationQuick})
	require.NoError(t, err)

	pending := s.PendingOps()
	require.Len(t, pending, 1)
	assert.Equal(t, "assignment", pending[0].Kind)
	assert.Equal(t, a.ID, pending[0].Assignment.ID)

	s.DropPending(a.ID)
	assert.Empty(t, s.PendingOps())
}

func TestPrunePendingDropsUnreplayableOps(t *testing.T) {
	s := prepareLocal(t)

	a, err := s.CreateAssignment(nil, &models.Assignment{Title: "x", DurationType: models.DurationQuick})
	require.NoError(t, err)

	// A malformed entry with no payload cannot be matched by DropPending.
	pending := s.PendingOps()
	pending = append(pending, PendingOp{Kind: "weird", QueuedAt: time.Now()})
	require.NoError(t, s.files.Write(colPending, pending))

	assert.Equal(t, 1, s.PrunePending())

	ops := s.PendingOps()
	require.Len(t, ops, 1)
	assert.Equal(t, a.ID, ops[0].Assignment.ID)

	// Nothing left to prune.
	assert.Equal(t, 0, s.PrunePending())
}

func TestLocalStats(t *testing.T) {
	s := prepareLocal(t)
	a, err := s.CreateAssignment(nil, &models.Assignment{Title: "x", DurationType: models.DurationQuick})
	require.NoError(t, err)

	accepted, sess, err := s.AcceptAssignment(nil, a.ID)
	require.NoError(t, err)
	_, err = s.CompleteAssignment(sess, accepted.ID, "")
	require.NoError(t, err)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalAssignments)
	assert.EqualValues(t, 1, stats.TotalAgents)
	assert.EqualValues(t, 1, stats.TotalCompletions)
	assert.EqualValues(t, 0, stats.TotalTeams)
}

func TestLocalLeaderboard(t *testing.T) {
	s := prepareLocal(t)

	_, s1, err := s.AcceptAssignment(nil, "some-assignment")
	require.NoError(t, err)
	_, err = s.CompleteAssignment(s1, "some-assignment", "")
	require.NoError(t, err)

	_, _, err = s.SignInAnonymously()
	require.NoError(t, err)

	entries, err := s.GetLeaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, s1.Username, entries[0].Username)
	assert.EqualValues(t, 10, entries[0].Points)
}

func TestLocalTeamWritesUnavailable(t *testing.T) {
	s := prepareLocal(t)

	_, err := s.CreateTeam(&Session{AgentID: "x"}, &models.Team{Name: "n"})
	require.ErrorIs(t, err, ErrNoConnection)

	_, err = s.JoinTeam(&Session{AgentID: "x"}, "team-1")
	require.ErrorIs(t, err, ErrNoConnection)

	teams, err := s.GetTeams()
	require.NoError(t, err)
	assert.Empty(t, teams)
}
