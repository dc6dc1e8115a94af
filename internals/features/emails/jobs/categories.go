package jobs

// Category identifies one reminder/digest email variant. The rule table below
// is the single authority for cc behavior and urgency thresholds — the
// historical copies of this logic disagreed with each other, so everything
// now reads from here.
type Category string

const (
	CategoryLessonPlanReminder       Category = "lesson_plan_reminder"
	CategoryLessonPlanReminderUrgent Category = "lesson_plan_reminder_urgent"
	CategoryDailyDigest              Category = "daily_digest"
	CategoryUnfilledOpportunities    Category = "unfilled_opportunities"
	CategoryUpcomingClaimedClass     Category = "upcoming_claimed_class"
	CategoryWeeklyFillSummary        Category = "weekly_fill_summary"
)

type Rule struct {
	// Business days ahead that the job scans for this category.
	WindowBusinessDays int
	CcAdmins           bool
	// WeekdaysOnly skips the whole job run on weekends.
	WeekdaysOnly bool
	// FridaysOnly restricts the run to Fridays (weekly summaries).
	FridaysOnly bool
}

var Rules = map[Category]Rule{
	CategoryLessonPlanReminder:       {WindowBusinessDays: 7, CcAdmins: false},
	CategoryLessonPlanReminderUrgent: {WindowBusinessDays: 2, CcAdmins: true},
	CategoryDailyDigest:              {WindowBusinessDays: 7, CcAdmins: false},
	CategoryUnfilledOpportunities:    {WindowBusinessDays: 3, CcAdmins: false, WeekdaysOnly: true},
	CategoryUpcomingClaimedClass:     {WindowBusinessDays: 1, CcAdmins: false},
	CategoryWeeklyFillSummary:        {WindowBusinessDays: 7, CcAdmins: true, FridaysOnly: true},
}
