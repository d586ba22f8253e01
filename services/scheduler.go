// services/scheduler.go
package services

import (
	"log"
	"time"

	"mission-rewards-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMissionScheduler runs the housekeeping jobs: sold-out ACTIVE missions
// are paused every minute so they disappear from the feed.
func (s *MissionService) StartMissionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var missions []models.Mission
			err := s.DB.Where("status = ? AND quantity_remaining <= 0", models.MissionActive).
				Find(&missions).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, m := range missions {
				m.Status = models.MissionPaused
				if err := s.DB.Save(&m).Error; err != nil {
					log.Printf("[Scheduler] Failed to pause mission %s: %v", m.ID, err)
				} else {
					log.Printf("[Scheduler] Paused sold-out mission: %s", m.Title)
				}
			}
		}),
	)
}
