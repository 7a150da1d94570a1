// services/scheduler.go
package services

import (
	"log"
	"time"

	"mission-dispatch-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartFeatureScheduler rotates which active mission is featured on the
// front page. Runs against the remote store only — featured flags are not a
// fallback-path concern.
func (s *RemoteStore) StartFeatureScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			var pick []models.Mission
			err := s.DB.Where("is_active = ? AND is_featured = ?", true, false).
				Order("RANDOM()").Limit(1).
				Find(&pick).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			if len(pick) == 0 {
				return
			}

			if err := s.DB.Model(&models.Mission{}).
				Where("is_featured = ?", true).
				Update("is_featured", false).Error; err != nil {
				log.Printf("[Scheduler] failed to clear featured flags: %v", err)
				return
			}
			if err := s.DB.Model(&models.Mission{}).
				Where("id = ?", pick[0].ID).
				Update("is_featured", true).Error; err != nil {
				log.Printf("[Scheduler] failed to feature mission %s: %v", pick[0].ID, err)
				return
			}
			log.Printf("✅ Featured mission rotated: %s", pick[0].Title)
		}),
	)
}
