package cron

import (
	"context"

	"github.com/Dias221467/Veritas_Network/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartStoryCronJobs schedules the hourly sweep that removes expired stories.
// The sweep is storage hygiene only: feeds filter on expires_at regardless of
// whether the sweep has run.
func StartStoryCronJobs(storyService *services.StoryService) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if err := storyService.ReapExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("Expired story sweep failed")
		}
	})

	c.Start()
}
