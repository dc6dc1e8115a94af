// Package jobs holds the cron-triggered batch computations: scan the store
// for absences matching a date window, compose an email per recipient, send
// them all, count what landed. A failed recipient never aborts the batch and
// re-running a window may redeliver — each invocation is independent.
package jobs

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"classcover_backend/internals/configs"
	absenceModel "classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/emails/composer"
	"classcover_backend/internals/features/emails/mailer"
	"classcover_backend/internals/features/emails/recipients"
	userModel "classcover_backend/internals/features/users/model"
	"classcover_backend/internals/helpers/dates"
)

// Declarations older than this still count as "last 24 hours" in the daily
// digest, so a cron run that fires a few minutes late misses nothing.
const digestWindowSlack = 5 * time.Minute

type Runner struct {
	DB     *gorm.DB
	Sender mailer.Sender

	// Now is swapped out in tests.
	Now func() time.Time
}

func NewRunner(db *gorm.DB, sender mailer.Sender) *Runner {
	return &Runner{DB: db, Sender: sender, Now: time.Now}
}

type Outcome struct {
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped,omitempty"`
}

// settleAll fires every message concurrently and waits for all of them.
func (r *Runner) settleAll(ctx context.Context, msgs []mailer.Message) Outcome {
	var wg sync.WaitGroup
	var sent, failed int64
	for _, m := range msgs {
		wg.Add(1)
		go func(m mailer.Message) {
			defer wg.Done()
			if res := r.Sender.Send(ctx, m); res.Success {
				atomic.AddInt64(&sent, 1)
			} else {
				atomic.AddInt64(&failed, 1)
				log.Printf("[JOB] send failed: %v", res.Err)
			}
		}(m)
	}
	wg.Wait()
	return Outcome{Sent: int(sent), Failed: int(failed)}
}

func (r *Runner) absenceInfo(a absenceModel.AbsenceModel) composer.AbsenceInfo {
	info := composer.AbsenceInfo{
		LessonDate: a.AbsenceLessonDate,
		Notes:      a.AbsenceNotes,
		Link:       configs.AppBaseURL + "/calendar?absence=" + a.AbsenceID.String(),
	}
	if a.AbsenceRoomNumber != nil {
		info.RoomNumber = *a.AbsenceRoomNumber
	}
	if a.AbsentTeacher != nil {
		info.AbsentTeacher = a.AbsentTeacher.UserName
	}
	if a.SubstituteTeacher != nil {
		info.SubstituteTeacher = a.SubstituteTeacher.UserName
	}
	if a.Subject != nil {
		info.Subject = a.Subject.SubjectName
	}
	if a.Location != nil {
		info.Location = a.Location.LocationName
	}
	return info
}

func (r *Runner) preloaded(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&absenceModel.AbsenceModel{}).
		Preload("AbsentTeacher").
		Preload("SubstituteTeacher").
		Preload("Subject").
		Preload("Location")
}

// =======================
// Lesson-plan reminders
// =======================

// LessonPlanReminders nudges teachers whose absence is exactly daysBefore
// business days out and still has no plan attached. daysBefore 2 is the
// urgent variant and carries an admin cc.
func (r *Runner) LessonPlanReminders(ctx context.Context, daysBefore int) (Outcome, error) {
	target := dates.UTCDateWithoutTime(r.Now(), daysBefore)

	var list []absenceModel.AbsenceModel
	if err := r.preloaded(ctx).
		Where("absence_lesson_date >= ? AND absence_lesson_date < ?", target, target.AddDate(0, 0, 1)).
		Where("absence_lesson_plan_id IS NULL").
		Find(&list).Error; err != nil {
		return Outcome{}, err
	}

	urgent := daysBefore <= Rules[CategoryLessonPlanReminderUrgent].WindowBusinessDays
	var ccAdmins []string
	if urgent && Rules[CategoryLessonPlanReminderUrgent].CcAdmins {
		ccAdmins = recipients.AdminEmails(r.DB.WithContext(ctx))
	}

	var msgs []mailer.Message
	for _, a := range list {
		if a.AbsentTeacher == nil {
			continue
		}
		email := composer.LessonPlanReminder(recipients.ToRecipient(*a.AbsentTeacher), r.absenceInfo(a), urgent)
		msgs = append(msgs, mailer.Message{
			To:      []string{a.AbsentTeacher.UserEmail},
			Cc:      ccAdmins,
			Subject: email.Subject,
			HTML:    email.HTML,
		})
	}
	return r.settleAll(ctx, msgs), nil
}

// =======================
// Daily declaration digest
// =======================

// DailyDigest collects absences declared in the trailing day that are still
// unfilled. Urgent items (starting within 7 business days) go to everyone;
// non-urgent items only reach the subject's mailing-list subscribers. Admins
// get the lot unfiltered.
func (r *Runner) DailyDigest(ctx context.Context) (Outcome, error) {
	now := r.Now()
	since := now.Add(-(24*time.Hour + digestWindowSlack))
	urgentCutoff := dates.UTCDateWithoutTime(now, Rules[CategoryDailyDigest].WindowBusinessDays)

	var list []absenceModel.AbsenceModel
	if err := r.preloaded(ctx).
		Where("absence_created_at >= ?", since).
		Where("absence_substitute_teacher_id IS NULL").
		Find(&list).Error; err != nil {
		return Outcome{}, err
	}
	if len(list) == 0 {
		return Outcome{}, nil
	}

	var urgent, nonUrgent []absenceModel.AbsenceModel
	for _, a := range list {
		if !a.AbsenceLessonDate.After(urgentCutoff) {
			urgent = append(urgent, a)
		} else {
			nonUrgent = append(nonUrgent, a)
		}
	}

	teachers, err := recipients.AllTeachers(r.DB.WithContext(ctx))
	if err != nil {
		return Outcome{}, err
	}
	admins, err := recipients.Admins(r.DB.WithContext(ctx))
	if err != nil {
		return Outcome{}, err
	}
	subs, err := recipients.SubscribedSubjectIDs(r.DB.WithContext(ctx))
	if err != nil {
		return Outcome{}, err
	}

	infos := func(in []absenceModel.AbsenceModel) []composer.AbsenceInfo {
		out := make([]composer.AbsenceInfo, 0, len(in))
		for _, a := range in {
			out = append(out, r.absenceInfo(a))
		}
		return out
	}

	var msgs []mailer.Message
	for _, t := range teachers {
		mine := subs[t.UserID.String()]
		var filtered []absenceModel.AbsenceModel
		for _, a := range nonUrgent {
			if mine[a.AbsenceSubjectID.String()] {
				filtered = append(filtered, a)
			}
		}
		if len(urgent) == 0 && len(filtered) == 0 {
			continue
		}
		email := composer.DailyDigest(recipients.ToRecipient(t), infos(urgent), infos(filtered))
		msgs = append(msgs, mailer.Message{To: []string{t.UserEmail}, Subject: email.Subject, HTML: email.HTML})
	}
	for _, adm := range admins {
		email := composer.DailyDigest(recipients.ToRecipient(adm), infos(urgent), infos(nonUrgent))
		msgs = append(msgs, mailer.Message{To: []string{adm.UserEmail}, Subject: email.Subject, HTML: email.HTML})
	}
	return r.settleAll(ctx, msgs), nil
}

// =======================
// Unfilled opportunities
// =======================

// UnfilledOpportunities broadcasts the unfilled classes of the next three
// business days to every teacher. Weekday runs only.
func (r *Runner) UnfilledOpportunities(ctx context.Context) (Outcome, error) {
	now := r.Now()
	if !dates.IsWeekday(now) {
		return Outcome{Skipped: true}, nil
	}
	from := dates.TruncateUTC(now)
	to := dates.UTCDateWithoutTime(now, Rules[CategoryUnfilledOpportunities].WindowBusinessDays).AddDate(0, 0, 1)

	var list []absenceModel.AbsenceModel
	if err := r.preloaded(ctx).
		Where("absence_lesson_date >= ? AND absence_lesson_date < ?", from, to).
		Where("absence_substitute_teacher_id IS NULL").
		Find(&list).Error; err != nil {
		return Outcome{}, err
	}
	if len(list) == 0 {
		return Outcome{}, nil
	}

	infos := make([]composer.AbsenceInfo, 0, len(list))
	for _, a := range list {
		infos = append(infos, r.absenceInfo(a))
	}

	teachers, err := recipients.AllTeachers(r.DB.WithContext(ctx))
	if err != nil {
		return Outcome{}, err
	}
	var msgs []mailer.Message
	for _, t := range teachers {
		email := composer.UnfilledOpportunities(recipients.ToRecipient(t), infos)
		msgs = append(msgs, mailer.Message{To: []string{t.UserEmail}, Subject: email.Subject, HTML: email.HTML})
	}
	return r.settleAll(ctx, msgs), nil
}

// =======================
// Upcoming claimed classes
// =======================

// UpcomingClaimedClasses reminds each substitute of the classes they cover on
// the next business day. One email per (teacher, absence).
func (r *Runner) UpcomingClaimedClasses(ctx context.Context) (Outcome, error) {
	next := dates.UTCDateWithoutTime(r.Now(), Rules[CategoryUpcomingClaimedClass].WindowBusinessDays)

	var list []absenceModel.AbsenceModel
	if err := r.preloaded(ctx).
		Where("absence_lesson_date >= ? AND absence_lesson_date < ?", next, next.AddDate(0, 0, 1)).
		Where("absence_substitute_teacher_id IS NOT NULL").
		Find(&list).Error; err != nil {
		return Outcome{}, err
	}

	var msgs []mailer.Message
	for _, a := range list {
		if a.SubstituteTeacher == nil {
			continue
		}
		email := composer.UpcomingClaimedClass(recipients.ToRecipient(*a.SubstituteTeacher), r.absenceInfo(a))
		msgs = append(msgs, mailer.Message{To: []string{a.SubstituteTeacher.UserEmail}, Subject: email.Subject, HTML: email.HTML})
	}
	return r.settleAll(ctx, msgs), nil
}

// =======================
// Weekly fill summary
// =======================

// WeeklyFillSummary sends each substitute one digest of everything they cover
// in the next seven business days, cc admins. Normally Fridays only; force
// bypasses that for the on-demand claim-summary route.
func (r *Runner) WeeklyFillSummary(ctx context.Context, force bool) (Outcome, error) {
	now := r.Now()
	if !force && now.Weekday() != time.Friday {
		return Outcome{Skipped: true}, nil
	}
	// Half-open window: a class exactly seven business days out is next week's.
	from := dates.TruncateUTC(now)
	to := dates.UTCDateWithoutTime(now, Rules[CategoryWeeklyFillSummary].WindowBusinessDays)

	var list []absenceModel.AbsenceModel
	if err := r.preloaded(ctx).
		Where("absence_lesson_date >= ? AND absence_lesson_date < ?", from, to).
		Where("absence_substitute_teacher_id IS NOT NULL").
		Find(&list).Error; err != nil {
		return Outcome{}, err
	}

	bySub := make(map[string][]absenceModel.AbsenceModel)
	subsByID := make(map[string]userModel.UserModel)
	for _, a := range list {
		if a.SubstituteTeacher == nil {
			continue
		}
		id := a.SubstituteTeacher.UserID.String()
		bySub[id] = append(bySub[id], a)
		subsByID[id] = *a.SubstituteTeacher
	}

	var ccAdmins []string
	if Rules[CategoryWeeklyFillSummary].CcAdmins {
		ccAdmins = recipients.AdminEmails(r.DB.WithContext(ctx))
	}

	var msgs []mailer.Message
	for id, items := range bySub {
		sub := subsByID[id]
		infos := make([]composer.AbsenceInfo, 0, len(items))
		for _, a := range items {
			infos = append(infos, r.absenceInfo(a))
		}
		email := composer.WeeklyFillSummary(recipients.ToRecipient(sub), infos)
		msgs = append(msgs, mailer.Message{
			To:      []string{sub.UserEmail},
			Cc:      ccAdmins,
			Subject: email.Subject,
			HTML:    email.HTML,
		})
	}
	return r.settleAll(ctx, msgs), nil
}
