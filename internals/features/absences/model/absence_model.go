package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	locationModel "classcover_backend/internals/features/school/locations/model"
	subjectModel "classcover_backend/internals/features/school/subjects/model"
	userModel "classcover_backend/internals/features/users/model"
)

// AbsenceModel is one teacher's absence for one lesson slot. A null
// substitute means the absence is unfilled. Invariant enforced at the
// service layer: absent teacher and substitute are never the same user.
type AbsenceModel struct {
	AbsenceID                  uuid.UUID  `gorm:"column:absence_id;type:uuid;primaryKey" json:"absence_id"`
	AbsenceLessonDate          time.Time  `gorm:"column:absence_lesson_date;type:date;not null;index" json:"absence_lesson_date"`
	AbsenceReasonOfAbsence     string     `gorm:"column:absence_reason_of_absence;not null" json:"absence_reason_of_absence"`
	AbsenceNotes               string     `gorm:"column:absence_notes" json:"absence_notes"`
	AbsenceRoomNumber          *string    `gorm:"column:absence_room_number" json:"absence_room_number,omitempty"`
	AbsenceAbsentTeacherID     uuid.UUID  `gorm:"column:absence_absent_teacher_id;type:uuid;not null;index" json:"absence_absent_teacher_id"`
	AbsenceSubstituteTeacherID *uuid.UUID `gorm:"column:absence_substitute_teacher_id;type:uuid;index" json:"absence_substitute_teacher_id,omitempty"`
	AbsenceLocationID          uuid.UUID  `gorm:"column:absence_location_id;type:uuid;not null" json:"absence_location_id"`
	AbsenceSubjectID           uuid.UUID  `gorm:"column:absence_subject_id;type:uuid;not null;index" json:"absence_subject_id"`
	AbsenceLessonPlanID        *uuid.UUID `gorm:"column:absence_lesson_plan_id;type:uuid" json:"absence_lesson_plan_id,omitempty"`

	AbsentTeacher     *userModel.UserModel         `gorm:"foreignKey:AbsenceAbsentTeacherID;references:UserID" json:"absent_teacher,omitempty"`
	SubstituteTeacher *userModel.UserModel         `gorm:"foreignKey:AbsenceSubstituteTeacherID;references:UserID" json:"substitute_teacher,omitempty"`
	Location          *locationModel.LocationModel `gorm:"foreignKey:AbsenceLocationID;references:LocationID" json:"location,omitempty"`
	Subject           *subjectModel.SubjectModel   `gorm:"foreignKey:AbsenceSubjectID;references:SubjectID" json:"subject,omitempty"`
	LessonPlan        *LessonPlanModel             `gorm:"foreignKey:AbsenceLessonPlanID;references:LessonPlanID" json:"lesson_plan,omitempty"`

	AbsenceCreatedAt time.Time `gorm:"column:absence_created_at;autoCreateTime;index" json:"absence_created_at"`
	AbsenceUpdatedAt time.Time `gorm:"column:absence_updated_at;autoUpdateTime" json:"absence_updated_at"`
}

func (AbsenceModel) TableName() string { return "absences" }

func (m *AbsenceModel) BeforeCreate(tx *gorm.DB) error {
	if m.AbsenceID == uuid.Nil {
		m.AbsenceID = uuid.New()
	}
	return nil
}

func (m *AbsenceModel) IsFilled() bool { return m.AbsenceSubstituteTeacherID != nil }
