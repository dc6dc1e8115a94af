package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"classcover_backend/internals/constants"
	"classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/emails/mailer"
	locationModel "classcover_backend/internals/features/school/locations/model"
	settingsModel "classcover_backend/internals/features/school/settings/model"
	subjectModel "classcover_backend/internals/features/school/subjects/model"
	userModel "classcover_backend/internals/features/users/model"
)

// =======================
// Test fixtures
// =======================

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

type recordingFileStore struct {
	mu      sync.Mutex
	deleted []string
}

func (r *recordingFileStore) DeleteByURL(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, url)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userModel.UserModel{},
		&subjectModel.SubjectModel{},
		&subjectModel.ColorGroupModel{},
		&subjectModel.MailingListModel{},
		&locationModel.LocationModel{},
		&settingsModel.GlobalSettingsModel{},
		&model.LessonPlanModel{},
		&model.AbsenceModel{},
	))
	return db
}

type fixture struct {
	svc      *AbsenceService
	sender   *recordingSender
	files    *recordingFileStore
	absent   userModel.UserModel
	sub      userModel.UserModel
	admin    userModel.UserModel
	subject  subjectModel.SubjectModel
	location locationModel.LocationModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	f := &fixture{sender: &recordingSender{}, files: &recordingFileStore{}}
	f.absent = userModel.UserModel{UserAuthID: "g-1", UserEmail: "absent@school.org", UserName: "Alice Martin", UserStatus: constants.StatusActive}
	f.sub = userModel.UserModel{UserAuthID: "g-2", UserEmail: "cover@school.org", UserName: "Bob Chen", UserStatus: constants.StatusActive}
	f.admin = userModel.UserModel{UserAuthID: "g-3", UserEmail: "admin@school.org", UserName: "Carol Diaz", UserRole: constants.RoleAdmin, UserStatus: constants.StatusActive}
	require.NoError(t, db.Create(&f.absent).Error)
	require.NoError(t, db.Create(&f.sub).Error)
	require.NoError(t, db.Create(&f.admin).Error)

	f.subject = subjectModel.SubjectModel{SubjectName: "Mathematics", SubjectAbbreviation: "MATH"}
	f.location = locationModel.LocationModel{LocationName: "Main Building", LocationAbbreviation: "MB"}
	require.NoError(t, db.Create(&f.subject).Error)
	require.NoError(t, db.Create(&f.location).Error)

	f.svc = NewAbsenceService(db, f.files, f.sender)
	f.svc.Async = false
	return f
}

func (f *fixture) declareInput() DeclareInput {
	return DeclareInput{
		LessonDate:      time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		ReasonOfAbsence: "Medical appointment",
		AbsentTeacherID: f.absent.UserID,
		LocationID:      f.location.LocationID,
		SubjectID:       f.subject.SubjectID,
	}
}

// =======================
// Declare
// =======================

func TestDeclareCreatesAbsence(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	assert.Equal(t, f.absent.UserID, got.AbsenceAbsentTeacherID)
	assert.Nil(t, got.AbsenceSubstituteTeacherID)
	assert.Equal(t, "Medical appointment", got.AbsenceReasonOfAbsence)
	require.NotNil(t, got.AbsentTeacher)
	assert.Equal(t, "Alice Martin", got.AbsentTeacher.UserName)

	assert.NotEmpty(t, f.sender.messages(), "declaration sends a notification")
}

func TestDeclareMissingReasonRejected(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.ReasonOfAbsence = ""

	_, err := f.svc.Declare(context.Background(), in)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)

	var count int64
	require.NoError(t, f.svc.DB.Model(&model.AbsenceModel{}).Count(&count).Error)
	assert.Zero(t, count, "nothing persisted on validation failure")
	assert.Empty(t, f.sender.messages())
}

func TestDeclareSelfSubstituteRejected(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.SubstituteTeacherID = &f.absent.UserID

	_, err := f.svc.Declare(context.Background(), in)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestDeclareCapReached(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.DB.Create(&settingsModel.GlobalSettingsModel{
		GlobalSettingsID:         settingsModel.WellKnownID,
		GlobalSettingsAbsenceCap: 1,
	}).Error)
	f.svc.Now = func() time.Time { return time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC) }

	_, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	in := f.declareInput()
	in.LessonDate = in.LessonDate.AddDate(0, 0, 1)
	_, err = f.svc.Declare(context.Background(), in)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusConflict, fe.Code)
}

func TestDeclareWithLessonPlan(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.LessonPlan = &LessonPlanInput{Name: "fractions.pdf", URL: "https://files.example/fractions.pdf", Size: 1024}

	got, err := f.svc.Declare(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, got.LessonPlan)
	assert.Equal(t, "fractions.pdf", got.LessonPlan.LessonPlanName)
}

// =======================
// Edit
// =======================

func TestEditReplacesLessonPlan(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.LessonPlan = &LessonPlanInput{Name: "v1.pdf", URL: "https://files.example/v1.pdf", Size: 10}
	created, err := f.svc.Declare(context.Background(), in)
	require.NoError(t, err)

	updated, err := f.svc.Edit(context.Background(), created.AbsenceID, EditInput{
		LessonPlan: &LessonPlanInput{Name: "v2.pdf", URL: "https://files.example/v2.pdf", Size: 20},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.LessonPlan)
	assert.Equal(t, "v2.pdf", updated.LessonPlan.LessonPlanName)

	var plans int64
	require.NoError(t, f.svc.DB.Model(&model.LessonPlanModel{}).Count(&plans).Error)
	assert.EqualValues(t, 1, plans, "replacement leaves exactly one plan row")
	assert.Equal(t, []string{"https://files.example/v1.pdf"}, f.files.deleted, "old object removed after commit")
}

func TestEditUnknownAbsence(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Edit(context.Background(), uuid.New(), EditInput{})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
}

func TestEditClearsSubstituteWithNilUUID(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.SubstituteTeacherID = &f.sub.UserID
	created, err := f.svc.Declare(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, created.AbsenceSubstituteTeacherID)

	clear := uuid.Nil
	updated, err := f.svc.Edit(context.Background(), created.AbsenceID, EditInput{SubstituteTeacherID: &clear})
	require.NoError(t, err)
	assert.Nil(t, updated.AbsenceSubstituteTeacherID)
}

// =======================
// Delete
// =======================

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), created.AbsenceID, false)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusForbidden, fe.Code)

	var count int64
	require.NoError(t, f.svc.DB.Model(&model.AbsenceModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "row untouched when caller is not an admin")
}

func TestDeleteRemovesAbsenceAndPlan(t *testing.T) {
	f := newFixture(t)
	in := f.declareInput()
	in.LessonPlan = &LessonPlanInput{Name: "plan.pdf", URL: "https://files.example/plan.pdf", Size: 10}
	created, err := f.svc.Declare(context.Background(), in)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.AbsenceID, true))

	var absences, plans int64
	require.NoError(t, f.svc.DB.Model(&model.AbsenceModel{}).Count(&absences).Error)
	require.NoError(t, f.svc.DB.Model(&model.LessonPlanModel{}).Count(&plans).Error)
	assert.Zero(t, absences)
	assert.Zero(t, plans)
	assert.Contains(t, f.files.deleted, "https://files.example/plan.pdf")
}

// =======================
// Claim
// =======================

func TestClaimAssignsSubstitute(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	claimed, err := f.svc.Claim(context.Background(), created.AbsenceID, f.sub.UserID)
	require.NoError(t, err)
	require.NotNil(t, claimed.AbsenceSubstituteTeacherID)
	assert.Equal(t, f.sub.UserID, *claimed.AbsenceSubstituteTeacherID)
}

func TestClaimOwnAbsenceRejected(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	_, err = f.svc.Claim(context.Background(), created.AbsenceID, f.absent.UserID)
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

// The claim write is unconditional, so whoever claims last holds the class
// even if someone else claimed first.
func TestClaimLastWriteWins(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Declare(context.Background(), f.declareInput())
	require.NoError(t, err)

	_, err = f.svc.Claim(context.Background(), created.AbsenceID, f.sub.UserID)
	require.NoError(t, err)

	claimed, err := f.svc.Claim(context.Background(), created.AbsenceID, f.admin.UserID)
	require.NoError(t, err)
	require.NotNil(t, claimed.AbsenceSubstituteTeacherID)
	assert.Equal(t, f.admin.UserID, *claimed.AbsenceSubstituteTeacherID)
}
