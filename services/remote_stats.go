package services

import (
	"log"

	"mission-dispatch-system/models"
)

// GetLeaderboard returns the top agents by points. Only the public
// projection leaves this layer — never the full agent record.
func (s *RemoteStore) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries := make([]LeaderboardEntry, 0, limit)
	err := s.DB.Model(&models.Agent{}).
		Select("username, display_name, points, rank").
		Order("points DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, remoteErr(err)
	}
	return entries, nil
}

// GetStats runs four independent count queries. A failed count logs and
// stays zero — one broken table must not blank the whole stats panel.
func (s *RemoteStore) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := s.DB.Model(&models.Assignment{}).Count(&stats.TotalAssignments).Error; err != nil {
		log.Printf("[STATS] assignment count failed: %v", err)
		stats.TotalAssignments = 0
	}
	if err := s.DB.Model(&models.Agent{}).Count(&stats.TotalAgents).Error; err != nil {
		log.Printf("[STATS] agent count failed: %v", err)
		stats.TotalAgents = 0
	}
	if err := s.DB.Model(&models.AssignmentProgress{}).
		Where("status = ?", models.ProgressCompleted).
		Count(&stats.TotalCompletions).Error; err != nil {
		log.Printf("[STATS] completion count failed: %v", err)
		stats.TotalCompletions = 0
	}
	if err := s.DB.Model(&models.Team{}).Count(&stats.TotalTeams).Error; err != nil {
		log.Printf("[STATS] team count failed: %v", err)
		stats.TotalTeams = 0
	}

	return stats, nil
}
