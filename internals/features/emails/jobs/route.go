package jobs

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/emails/mailer"
	"classcover_backend/internals/middlewares"
)

// CronRoutes mounts the batch jobs behind the shared-secret bearer gate.
func CronRoutes(api fiber.Router, db *gorm.DB, sender mailer.Sender) {
	ctl := NewCronController(db, sender)

	r := api.Group("/emails/reminders", middlewares.CronAuth())
	r.Get("/lesson-plans", ctl.LessonPlanReminders)
	r.Get("/daily-digest", ctl.DailyDigest)
	r.Get("/opportunities", ctl.UnfilledOpportunities)
	r.Get("/claimed-classes", ctl.UpcomingClaimedClasses)
	r.Get("/weekly-summary", ctl.WeeklyFillSummaries)
	r.Get("/claim-summaries", ctl.ClaimSummaries)
}
