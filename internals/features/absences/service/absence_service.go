// Package service implements the absence lifecycle: declare, edit, delete and
// claim. Database writes for an operation share one transaction; file-store
// and email side effects run after commit, best-effort, and never roll the
// absence back.
package service

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/emails/mailer"
	settingsModel "classcover_backend/internals/features/school/settings/model"
	"classcover_backend/internals/helpers/dates"
)

// Unfilled absences starting within this many business days are "urgent".
const urgentWindowBusinessDays = 2

type AbsenceService struct {
	DB     *gorm.DB
	Files  FileStore
	Sender mailer.Sender

	// Now is swapped out in tests.
	Now func() time.Time
	// Async controls whether notifications run in a goroutine. Tests set it
	// to false so they can assert on sent mail synchronously.
	Async bool
}

// FileStore is the slice of the object store this service needs.
type FileStore interface {
	DeleteByURL(ctx context.Context, publicURL string) error
}

func NewAbsenceService(db *gorm.DB, files FileStore, sender mailer.Sender) *AbsenceService {
	return &AbsenceService{DB: db, Files: files, Sender: sender, Now: time.Now, Async: true}
}

type LessonPlanInput struct {
	Name string
	URL  string
	Size int64
}

// =======================
// Declare
// =======================

type DeclareInput struct {
	LessonDate          time.Time
	ReasonOfAbsence     string
	AbsentTeacherID     uuid.UUID
	LocationID          uuid.UUID
	SubjectID           uuid.UUID
	Notes               string
	SubstituteTeacherID *uuid.UUID
	RoomNumber          *string
	LessonPlan          *LessonPlanInput
}

func (s *AbsenceService) Declare(ctx context.Context, in DeclareInput) (*model.AbsenceModel, error) {
	if in.LessonDate.IsZero() || in.ReasonOfAbsence == "" ||
		in.AbsentTeacherID == uuid.Nil || in.LocationID == uuid.Nil || in.SubjectID == uuid.Nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Missing required fields")
	}
	if in.SubstituteTeacherID != nil && *in.SubstituteTeacherID == in.AbsentTeacherID {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Absent teacher cannot be their own substitute")
	}
	if err := s.checkAbsenceCap(ctx, in.AbsentTeacherID); err != nil {
		return nil, err
	}

	ent := model.AbsenceModel{
		AbsenceLessonDate:          dates.TruncateUTC(in.LessonDate),
		AbsenceReasonOfAbsence:     in.ReasonOfAbsence,
		AbsenceNotes:               in.Notes,
		AbsenceRoomNumber:          in.RoomNumber,
		AbsenceAbsentTeacherID:     in.AbsentTeacherID,
		AbsenceSubstituteTeacherID: in.SubstituteTeacherID,
		AbsenceLocationID:          in.LocationID,
		AbsenceSubjectID:           in.SubjectID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LessonPlan != nil {
			plan := model.LessonPlanModel{
				LessonPlanName: in.LessonPlan.Name,
				LessonPlanURL:  in.LessonPlan.URL,
				LessonPlanSize: in.LessonPlan.Size,
			}
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
			ent.AbsenceLessonPlanID = &plan.LessonPlanID
		}
		return tx.Create(&ent).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Load(ctx, ent.AbsenceID)
	if err != nil {
		return nil, err
	}
	s.dispatch("absence declared", func(ctx context.Context) {
		s.notifyDeclared(ctx, created)
	})
	return created, nil
}

// =======================
// Edit
// =======================

type EditInput struct {
	LessonDate          *time.Time
	ReasonOfAbsence     *string
	Notes               *string
	RoomNumber          *string
	SubstituteTeacherID *uuid.UUID
	LocationID          *uuid.UUID
	SubjectID           *uuid.UUID
	LessonPlan          *LessonPlanInput
}

func (s *AbsenceService) Edit(ctx context.Context, id uuid.UUID, in EditInput) (*model.AbsenceModel, error) {
	var ent model.AbsenceModel
	if err := s.DB.WithContext(ctx).First(&ent, "absence_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Absence not found")
		}
		return nil, err
	}

	var staleFileURL string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LessonPlan != nil {
			// Replacement: drop the old row first so exactly one plan stays
			// linked. The old object's store delete happens post-commit.
			if ent.AbsenceLessonPlanID != nil {
				var old model.LessonPlanModel
				if err := tx.First(&old, "lesson_plan_id = ?", *ent.AbsenceLessonPlanID).Error; err == nil {
					staleFileURL = old.LessonPlanURL
					if err := tx.Delete(&old).Error; err != nil {
						return err
					}
				}
			}
			plan := model.LessonPlanModel{
				LessonPlanName: in.LessonPlan.Name,
				LessonPlanURL:  in.LessonPlan.URL,
				LessonPlanSize: in.LessonPlan.Size,
			}
			if err := tx.Create(&plan).Error; err != nil {
				return err
			}
			ent.AbsenceLessonPlanID = &plan.LessonPlanID
		}

		applyEdit(&ent, in)
		if ent.AbsenceSubstituteTeacherID != nil && *ent.AbsenceSubstituteTeacherID == ent.AbsenceAbsentTeacherID {
			return fiber.NewError(fiber.StatusBadRequest, "Absent teacher cannot be their own substitute")
		}
		return tx.Save(&ent).Error
	})
	if err != nil {
		return nil, err
	}

	if staleFileURL != "" {
		s.deleteStoredFile(staleFileURL)
	}

	updated, err := s.Load(ctx, ent.AbsenceID)
	if err != nil {
		return nil, err
	}
	s.dispatch("absence modified", func(ctx context.Context) {
		s.notifyModified(ctx, updated)
	})
	if in.LessonPlan != nil {
		s.dispatch("lesson plan uploaded", func(ctx context.Context) {
			s.notifyLessonPlanUploaded(ctx, updated)
		})
	}
	return updated, nil
}

func applyEdit(ent *model.AbsenceModel, in EditInput) {
	if in.LessonDate != nil {
		ent.AbsenceLessonDate = dates.TruncateUTC(*in.LessonDate)
	}
	if in.ReasonOfAbsence != nil {
		ent.AbsenceReasonOfAbsence = *in.ReasonOfAbsence
	}
	if in.Notes != nil {
		ent.AbsenceNotes = *in.Notes
	}
	if in.RoomNumber != nil {
		ent.AbsenceRoomNumber = in.RoomNumber
	}
	if in.SubstituteTeacherID != nil {
		if *in.SubstituteTeacherID == uuid.Nil {
			ent.AbsenceSubstituteTeacherID = nil
		} else {
			ent.AbsenceSubstituteTeacherID = in.SubstituteTeacherID
		}
	}
	if in.LocationID != nil {
		ent.AbsenceLocationID = *in.LocationID
	}
	if in.SubjectID != nil {
		ent.AbsenceSubjectID = *in.SubjectID
	}
}

// =======================
// Delete
// =======================

func (s *AbsenceService) Delete(ctx context.Context, id uuid.UUID, isUserAdmin bool) error {
	if !isUserAdmin {
		return fiber.NewError(fiber.StatusForbidden, "Only admins can delete absences")
	}

	ent, err := s.Load(ctx, id)
	if err != nil {
		return err
	}

	var staleFileURL string
	if ent.LessonPlan != nil {
		staleFileURL = ent.LessonPlan.LessonPlanURL
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if ent.AbsenceLessonPlanID != nil {
			if err := tx.Delete(&model.LessonPlanModel{}, "lesson_plan_id = ?", *ent.AbsenceLessonPlanID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.AbsenceModel{}, "absence_id = ?", id).Error
	})
	if err != nil {
		return err
	}

	if staleFileURL != "" {
		s.deleteStoredFile(staleFileURL)
	}

	s.dispatch("absence deleted", func(ctx context.Context) {
		s.notifyDeleted(ctx, ent)
	})
	return nil
}

// =======================
// Claim
// =======================

// Claim assigns the caller as substitute. The write is an unconditional
// last-write-wins update: a second claim silently overwrites the first.
func (s *AbsenceService) Claim(ctx context.Context, absenceID, userID uuid.UUID) (*model.AbsenceModel, error) {
	if absenceID == uuid.Nil || userID == uuid.Nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid absence id")
	}

	var ent model.AbsenceModel
	if err := s.DB.WithContext(ctx).First(&ent, "absence_id = ?", absenceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Absence not found")
		}
		return nil, err
	}
	if ent.AbsenceAbsentTeacherID == userID {
		return nil, fiber.NewError(fiber.StatusBadRequest, "You cannot claim your own absence")
	}

	if err := s.DB.WithContext(ctx).Model(&model.AbsenceModel{}).
		Where("absence_id = ?", absenceID).
		Update("absence_substitute_teacher_id", userID).Error; err != nil {
		return nil, err
	}

	claimed, err := s.Load(ctx, absenceID)
	if err != nil {
		return nil, err
	}
	// Defensive: should be impossible right after the unconditional set.
	if claimed.AbsenceSubstituteTeacherID == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Absence has no substitute after claim")
	}

	s.dispatch("absence filled", func(ctx context.Context) {
		s.notifyFilled(ctx, claimed)
	})
	return claimed, nil
}

// =======================
// Shared
// =======================

func (s *AbsenceService) Load(ctx context.Context, id uuid.UUID) (*model.AbsenceModel, error) {
	var ent model.AbsenceModel
	err := s.DB.WithContext(ctx).
		Preload("AbsentTeacher").
		Preload("SubstituteTeacher").
		Preload("Location").
		Preload("Subject").
		Preload("LessonPlan").
		First(&ent, "absence_id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "Absence not found")
		}
		return nil, err
	}
	return &ent, nil
}

func (s *AbsenceService) checkAbsenceCap(ctx context.Context, teacherID uuid.UUID) error {
	var settings settingsModel.GlobalSettingsModel
	err := s.DB.WithContext(ctx).First(&settings, "global_settings_id = ?", settingsModel.WellKnownID).Error
	if err == gorm.ErrRecordNotFound {
		return nil // no cap configured yet
	}
	if err != nil {
		return err
	}

	yearStart := dates.SchoolYearStart(s.Now())
	var count int64
	if err := s.DB.WithContext(ctx).Model(&model.AbsenceModel{}).
		Where("absence_absent_teacher_id = ? AND absence_lesson_date >= ?", teacherID, yearStart).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= int64(settings.GlobalSettingsAbsenceCap) {
		return fiber.NewError(fiber.StatusConflict, "Absence cap for this school year has been reached")
	}
	return nil
}

func (s *AbsenceService) deleteStoredFile(url string) {
	if s.Files == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Files.DeleteByURL(ctx, url); err != nil {
		log.Printf("[FILESTORE] best-effort delete failed for %s: %v", url, err)
	}
}

// dispatch runs an email side effect after the DB work committed. Failures
// are logged and swallowed: the absence mutation is already durable.
func (s *AbsenceService) dispatch(name string, fn func(ctx context.Context)) {
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[NOTIFY] %s panicked: %v", name, r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		fn(ctx)
	}
	if s.Async {
		go run()
	} else {
		run()
	}
}
