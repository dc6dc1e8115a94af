package jobs

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/emails/mailer"
	helper "classcover_backend/internals/helpers"
)

type CronController struct {
	Runner *Runner
}

func NewCronController(db *gorm.DB, sender mailer.Sender) *CronController {
	return &CronController{Runner: NewRunner(db, sender)}
}

// LessonPlanReminders runs both reminder passes (7 and 2 business days out)
// in one invocation, the way the external scheduler calls it.
func (ctl *CronController) LessonPlanReminders(c *fiber.Ctx) error {
	standard, err := ctl.Runner.LessonPlanReminders(c.UserContext(), 7)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	urgent, err := ctl.Runner.LessonPlanReminders(c.UserContext(), 2)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Lesson plan reminders processed",
		"breakdown": fiber.Map{
			"standard": standard,
			"urgent":   urgent,
		},
	})
}

func (ctl *CronController) DailyDigest(c *fiber.Ctx) error {
	out, err := ctl.Runner.DailyDigest(c.UserContext())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Daily declaration digest processed",
		"breakdown": fiber.Map{"digest": out},
	})
}

func (ctl *CronController) UnfilledOpportunities(c *fiber.Ctx) error {
	out, err := ctl.Runner.UnfilledOpportunities(c.UserContext())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Unfilled opportunities processed",
		"breakdown": fiber.Map{"opportunities": out},
	})
}

func (ctl *CronController) UpcomingClaimedClasses(c *fiber.Ctx) error {
	out, err := ctl.Runner.UpcomingClaimedClasses(c.UserContext())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Upcoming claimed-class reminders processed",
		"breakdown": fiber.Map{"reminders": out},
	})
}

// WeeklyFillSummaries honors the Fridays-only rule.
func (ctl *CronController) WeeklyFillSummaries(c *fiber.Ctx) error {
	out, err := ctl.Runner.WeeklyFillSummary(c.UserContext(), false)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Weekly fill summaries processed",
		"breakdown": fiber.Map{"summaries": out},
	})
}

// ClaimSummaries is the unconditional variant of the weekly summary.
func (ctl *CronController) ClaimSummaries(c *fiber.Ctx) error {
	out, err := ctl.Runner.WeeklyFillSummary(c.UserContext(), true)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Claim summaries processed",
		"breakdown": fiber.Map{"summaries": out},
	})
}
