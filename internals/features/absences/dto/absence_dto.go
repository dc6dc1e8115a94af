package dto

import (
	"time"

	"github.com/google/uuid"

	"classcover_backend/internals/features/absences/service"
)

// =======================
// Request DTO
// =======================

// Request keys follow the public API contract (camelCase), responses reuse
// the model's column-prefixed JSON.

type LessonPlanFileDTO struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url"  validate:"required,url"`
	Size int64  `json:"size" validate:"required,min=1"`
}

type AbsenceCreateDTO struct {
	LessonDate          time.Time          `json:"lessonDate"          validate:"required"`
	ReasonOfAbsence     string             `json:"reasonOfAbsence"     validate:"required"`
	AbsentTeacherID     uuid.UUID          `json:"absentTeacherId"     validate:"required"`
	LocationID          uuid.UUID          `json:"locationId"          validate:"required"`
	SubjectID           uuid.UUID          `json:"subjectId"           validate:"required"`
	Notes               string             `json:"notes,omitempty"`
	SubstituteTeacherID *uuid.UUID         `json:"substituteTeacherId,omitempty"`
	RoomNumber          *string            `json:"roomNumber,omitempty"`
	LessonPlanFile      *LessonPlanFileDTO `json:"lessonPlanFile,omitempty"`
}

type AbsenceUpdateDTO struct {
	LessonDate          *time.Time         `json:"lessonDate,omitempty"`
	ReasonOfAbsence     *string            `json:"reasonOfAbsence,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
	RoomNumber          *string            `json:"roomNumber,omitempty"`
	SubstituteTeacherID *uuid.UUID         `json:"substituteTeacherId,omitempty"`
	LocationID          *uuid.UUID         `json:"locationId,omitempty"`
	SubjectID           *uuid.UUID         `json:"subjectId,omitempty"`
	LessonPlanFile      *LessonPlanFileDTO `json:"lessonPlanFile,omitempty"`
}

type AbsenceDeleteDTO struct {
	AbsenceID   uuid.UUID `json:"absenceId"   validate:"required"`
	IsUserAdmin bool      `json:"isUserAdmin"`
}

type AbsenceClaimDTO struct {
	AbsenceID uuid.UUID `json:"absenceId" validate:"required"`
	UserID    uuid.UUID `json:"userId"    validate:"required"`
}

type AbsenceFilterDTO struct {
	From     *time.Time
	To       *time.Time
	Unfilled *bool
}

// =======================
// Mappers
// =======================

func (p *LessonPlanFileDTO) toInput() *service.LessonPlanInput {
	if p == nil {
		return nil
	}
	return &service.LessonPlanInput{Name: p.Name, URL: p.URL, Size: p.Size}
}

func (p *AbsenceCreateDTO) ToInput() service.DeclareInput {
	return service.DeclareInput{
		LessonDate:          p.LessonDate,
		ReasonOfAbsence:     p.ReasonOfAbsence,
		AbsentTeacherID:     p.AbsentTeacherID,
		LocationID:          p.LocationID,
		SubjectID:           p.SubjectID,
		Notes:               p.Notes,
		SubstituteTeacherID: p.SubstituteTeacherID,
		RoomNumber:          p.RoomNumber,
		LessonPlan:          p.LessonPlanFile.toInput(),
	}
}

func (p *AbsenceUpdateDTO) ToInput() service.EditInput {
	return service.EditInput{
		LessonDate:          p.LessonDate,
		ReasonOfAbsence:     p.ReasonOfAbsence,
		Notes:               p.Notes,
		RoomNumber:          p.RoomNumber,
		SubstituteTeacherID: p.SubstituteTeacherID,
		LocationID:          p.LocationID,
		SubjectID:           p.SubjectID,
		LessonPlan:          p.LessonPlanFile.toInput(),
	}
}
