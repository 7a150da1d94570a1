package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-dispatch-system/models"
)

func TestLeaderboardProjectionAndOrder(t *testing.T) {
	s := prepareRemote(t)

	for _, tc := range []struct {
		email  string
		points int64
	}{
		{"a@example.com", 30},
		{"b@example.com", 10},
		{"c@example.com", 50},
	} {
		sess := signedUp(t, s, tc.email, tc.email[:1])
		require.NoError(t, s.DB.Model(&models.Agent{}).
			Where("id = ?", sess.AgentID).
			Update("points", tc.points).Error)
	}

	entries, err := s.GetLeaderboard(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Username)
	assert.EqualValues(t, 50, entries[0].Points)
	assert.Equal(t, "a", entries[1].Username)
}

// Out-of-range limits clamp to 10, in both directions.
func TestLeaderboardDefaultLimit(t *testing.T) {
	s := prepareRemote(t)

	for i := 0; i < 12; i++ {
		sess := signedUp(t, s, fmt.Sprintf("agent%d@example.com", i), fmt.Sprintf("agent%d", i))
		require.NoError(t, s.DB.Model(&models.Agent{}).
			Where("id = ?", sess.AgentID).
			Update("points", int64((i+1)*10)).Error)
	}

	entries, err := s.GetLeaderboard(0)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.EqualValues(t, 120, entries[0].Points)
	assert.EqualValues(t, 30, entries[9].Points)

	entries, err = s.GetLeaderboard(500)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestStatsCounts(t *testing.T) {
	s := prepareRemote(t)
	sess := signedUp(t, s, "kim@example.com", "kim")

	a := seedAssignment(t, s, sess, "a1", models.DurationQuick, "EDUCATION", models.LocationVirtual)
	seedAssignment(t, s, sess, "a2", models.DurationQuick, "EDUCATION", models.LocationVirtual)

	accepted, _, err := s.AcceptAssignment(sess, a.ID)
	require.NoError(t, err)
	_, err = s.CompleteAssignment(sess, accepted.ID, "")
	require.NoError(t, err)

	_, err = s.CreateTeam(sess, &models.Team{Name: "Night Shift"})
	require.NoError(t, err)

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalAssignments)
	assert.EqualValues(t, 1, stats.TotalAgents)
	assert.EqualValues(t, 1, stats.TotalCompletions)
	assert.EqualValues(t, 1, stats.TotalTeams)
}

// One broken count must not blank the rest of the panel.
func TestStatsPartialFailureDegradesToZero(t *testing.T) {
	s := prepareRemote(t)
	sess := signedUp(t, s, "kim@example.com", "kim")
	seedAssignment(t, s, sess, "a1", models.DurationQuick, "EDUCATION", models.LocationVirtual)

	require.NoError(t, s.DB.Migrator().DropTable(&models.Team{}))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalAssignments)
	assert.EqualValues(t, 1, stats.TotalAgents)
	assert.EqualValues(t, 0, stats.TotalTeams)
}
