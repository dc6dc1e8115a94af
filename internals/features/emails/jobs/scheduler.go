package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"classcover_backend/internals/configs"
	"classcover_backend/internals/features/emails/mailer"
)

// StartEmailSchedules wires the batch jobs to an in-process cron so the app
// self-schedules when no external scheduler hits the /emails/reminders
// routes. Off by default; an external cron plus these schedules would double
// every delivery.
func StartEmailSchedules(db *gorm.DB, sender mailer.Sender) {
	if !configs.GetEnvBool("CRON_SCHEDULES_ENABLED", false) {
		log.Println("[JOB] in-process schedules disabled")
		return
	}

	r := NewRunner(db, sender)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	schedule := func(spec, name string, run func(ctx context.Context) (Outcome, error)) {
		if _, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
			defer cancel()
			out, err := run(ctx)
			if err != nil {
				log.Printf("[JOB] %s failed: %v", name, err)
				return
			}
			log.Printf("[JOB] %s done sent=%d failed=%d skipped=%v", name, out.Sent, out.Failed, out.Skipped)
		}); err != nil {
			log.Fatalf("[JOB] add %s schedule failed: %v", name, err)
		}
	}

	schedule(configs.GetEnv("CRON_LESSON_PLAN", "0 7 * * *"), "lesson-plan-reminders", func(ctx context.Context) (Outcome, error) {
		standard, err := r.LessonPlanReminders(ctx, 7)
		if err != nil {
			return standard, err
		}
		urgent, err := r.LessonPlanReminders(ctx, 2)
		standard.Sent += urgent.Sent
		standard.Failed += urgent.Failed
		return standard, err
	})
	schedule(configs.GetEnv("CRON_DAILY_DIGEST", "0 17 * * *"), "daily-digest", r.DailyDigest)
	schedule(configs.GetEnv("CRON_OPPORTUNITIES", "30 7 * * 1-5"), "unfilled-opportunities", r.UnfilledOpportunities)
	schedule(configs.GetEnv("CRON_CLAIMED_CLASSES", "0 18 * * *"), "upcoming-claimed-classes", r.UpcomingClaimedClasses)
	schedule(configs.GetEnv("CRON_WEEKLY_SUMMARY", "0 16 * * 5"), "weekly-fill-summary", func(ctx context.Context) (Outcome, error) {
		return r.WeeklyFillSummary(ctx, false)
	})

	c.Start()
	log.Println("[JOB] in-process schedules started")
}
