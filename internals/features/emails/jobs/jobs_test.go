package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"classcover_backend/internals/constants"
	absenceModel "classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/emails/mailer"
	locationModel "classcover_backend/internals/features/school/locations/model"
	subjectModel "classcover_backend/internals/features/school/subjects/model"
	userModel "classcover_backend/internals/features/users/model"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *recordingSender) Send(ctx context.Context, msg mailer.Message) mailer.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return mailer.Result{Success: true}
}

func (r *recordingSender) messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

func (r *recordingSender) recipientsTo() []string {
	var out []string
	for _, m := range r.messages() {
		out = append(out, m.To...)
	}
	return out
}

type fixture struct {
	runner   *Runner
	sender   *recordingSender
	teacher  userModel.UserModel
	teacher2 userModel.UserModel
	admin    userModel.UserModel
	subject  subjectModel.SubjectModel
	location locationModel.LocationModel
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:jobs_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&subjectModel.SubjectModel{},
		&subjectModel.MailingListModel{},
		&locationModel.LocationModel{},
		&absenceModel.LessonPlanModel{},
		&absenceModel.AbsenceModel{},
	))

	f := &fixture{sender: &recordingSender{}}
	f.teacher = userModel.UserModel{UserAuthID: "g-1", UserEmail: "alice@school.org", UserName: "Alice Martin", UserStatus: constants.StatusActive}
	f.teacher2 = userModel.UserModel{UserAuthID: "g-2", UserEmail: "bob@school.org", UserName: "Bob Chen", UserStatus: constants.StatusActive}
	f.admin = userModel.UserModel{UserAuthID: "g-3", UserEmail: "admin@school.org", UserName: "Carol Diaz", UserRole: constants.RoleAdmin, UserStatus: constants.StatusActive}
	require.NoError(t, db.Create(&f.teacher).Error)
	require.NoError(t, db.Create(&f.teacher2).Error)
	require.NoError(t, db.Create(&f.admin).Error)

	f.subject = subjectModel.SubjectModel{SubjectName: "Mathematics", SubjectAbbreviation: "MATH"}
	f.location = locationModel.LocationModel{LocationName: "Main Building", LocationAbbreviation: "MB"}
	require.NoError(t, db.Create(&f.subject).Error)
	require.NoError(t, db.Create(&f.location).Error)

	f.runner = NewRunner(db, f.sender)
	f.runner.Now = func() time.Time { return now }
	return f
}

type absenceOpts struct {
	lessonDate time.Time
	teacher    *userModel.UserModel
	substitute *userModel.UserModel
	withPlan   bool
	createdAt  time.Time
}

func (f *fixture) addAbsence(t *testing.T, o absenceOpts) absenceModel.AbsenceModel {
	t.Helper()
	if o.teacher == nil {
		o.teacher = &f.teacher
	}
	a := absenceModel.AbsenceModel{
		AbsenceLessonDate:      o.lessonDate,
		AbsenceReasonOfAbsence: "Sick leave",
		AbsenceAbsentTeacherID: o.teacher.UserID,
		AbsenceLocationID:      f.location.LocationID,
		AbsenceSubjectID:       f.subject.SubjectID,
		AbsenceCreatedAt:       o.createdAt,
	}
	if o.substitute != nil {
		a.AbsenceSubstituteTeacherID = &o.substitute.UserID
	}
	if o.withPlan {
		plan := absenceModel.LessonPlanModel{LessonPlanName: "plan.pdf", LessonPlanURL: "https://files.example/plan.pdf", LessonPlanSize: 10}
		require.NoError(t, f.runner.DB.Create(&plan).Error)
		a.AbsenceLessonPlanID = &plan.LessonPlanID
	}
	require.NoError(t, f.runner.DB.Create(&a).Error)
	return a
}

// Monday 2026-09-07, 08:00 UTC.
var monday = time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

// =======================
// Lesson-plan reminders
// =======================

// Seven business days from Monday 2026-09-07 is Wednesday 2026-09-16.
func TestLessonPlanRemindersTargetsExactDay(t *testing.T) {
	f := newFixture(t, monday)
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)})
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC), withPlan: true})
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC)})

	out, err := f.runner.LessonPlanReminders(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Sent, "only the planless absence on the target day is reminded")
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"alice@school.org"}, msgs[0].To)
	assert.Empty(t, msgs[0].Cc, "seven-day reminder does not involve admins")
}

func TestLessonPlanRemindersUrgentCcsAdmins(t *testing.T) {
	f := newFixture(t, monday)
	// Two business days out is Wednesday 2026-09-09.
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)})

	out, err := f.runner.LessonPlanReminders(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Sent)
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Cc, "admin@school.org")
	assert.Contains(t, msgs[0].Subject, "URGENT")
}

// =======================
// Daily digest
// =======================

func TestDailyDigestFiltersNonUrgentBySubscription(t *testing.T) {
	f := newFixture(t, monday)
	require.NoError(t, f.runner.DB.Create(&subjectModel.MailingListModel{
		MailingListUserID:    f.teacher2.UserID,
		MailingListSubjectID: f.subject.SubjectID,
	}).Error)

	// Declared an hour ago, lesson three weeks out: non-urgent.
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC),
		createdAt:  monday.Add(-time.Hour),
	})

	out, err := f.runner.DailyDigest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, out.Sent)
	to := f.sender.recipientsTo()
	assert.Contains(t, to, "bob@school.org", "subscriber receives the digest")
	assert.Contains(t, to, "admin@school.org", "admins always receive the digest")
	assert.NotContains(t, to, "alice@school.org", "non-subscriber is not emailed for non-urgent items")
}

func TestDailyDigestUrgentGoesToEveryone(t *testing.T) {
	f := newFixture(t, monday)
	// Lesson tomorrow, inside the urgent window; nobody is subscribed.
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		teacher:    &f.teacher2,
		createdAt:  monday.Add(-time.Hour),
	})

	_, err := f.runner.DailyDigest(context.Background())
	require.NoError(t, err)

	to := f.sender.recipientsTo()
	assert.Contains(t, to, "alice@school.org")
	assert.Contains(t, to, "bob@school.org")
	assert.Contains(t, to, "admin@school.org")
}

func TestDailyDigestIgnoresOldAndFilled(t *testing.T) {
	f := newFixture(t, monday)
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		createdAt:  monday.Add(-48 * time.Hour),
	})
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
		createdAt:  monday.Add(-time.Hour),
	})

	out, err := f.runner.DailyDigest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, out.Sent, "old declarations and filled absences are not digested")
}

// =======================
// Unfilled opportunities
// =======================

func TestUnfilledOpportunitiesSkipsWeekends(t *testing.T) {
	saturday := time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, saturday)
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)})

	out, err := f.runner.UnfilledOpportunities(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, f.sender.messages())
}

func TestUnfilledOpportunitiesBroadcastsToAllTeachers(t *testing.T) {
	f := newFixture(t, monday)
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)})

	out, err := f.runner.UnfilledOpportunities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, out.Sent, "one email per teacher")
	to := f.sender.recipientsTo()
	assert.Contains(t, to, "alice@school.org")
	assert.Contains(t, to, "bob@school.org")
}

// =======================
// Upcoming claimed classes
// =======================

func TestUpcomingClaimedClassesNextBusinessDay(t *testing.T) {
	friday := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, friday)
	// Next business day after Friday is Monday 2026-09-07.
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})
	f.addAbsence(t, absenceOpts{lessonDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)})

	out, err := f.runner.UpcomingClaimedClasses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, out.Sent)
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"bob@school.org"}, msgs[0].To)
}

// =======================
// Weekly fill summary
// =======================

func TestWeeklyFillSummaryRunsFridaysOnly(t *testing.T) {
	f := newFixture(t, monday)
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})

	out, err := f.runner.WeeklyFillSummary(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, out.Skipped)

	out, err = f.runner.WeeklyFillSummary(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Sent, "force bypasses the Friday gate")
}

// Seven business days after Friday 2026-09-11 is Tuesday 2026-09-22; the
// window is half-open, so a class on that exact day belongs to next week.
func TestWeeklyFillSummaryWindowIsHalfOpen(t *testing.T) {
	friday := time.Date(2026, 9, 11, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, friday)
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 21, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 22, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})

	out, err := f.runner.WeeklyFillSummary(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Sent)
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].HTML, "September 21, 2026")
	assert.NotContains(t, msgs[0].HTML, "September 22, 2026")
}

func TestWeeklyFillSummaryGroupsBySubstitute(t *testing.T) {
	friday := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, friday)
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})
	f.addAbsence(t, absenceOpts{
		lessonDate: time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
		substitute: &f.teacher2,
	})

	out, err := f.runner.WeeklyFillSummary(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Sent, "both classes land in a single summary")
	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"bob@school.org"}, msgs[0].To)
	assert.Contains(t, msgs[0].Cc, "admin@school.org")
}
