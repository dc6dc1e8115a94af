package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonPlanModel is an uploaded document attached to at most one absence.
// Replacing a plan deletes the old row and its file-store object.
type LessonPlanModel struct {
	LessonPlanID   uuid.UUID `gorm:"column:lesson_plan_id;type:uuid;primaryKey" json:"lesson_plan_id"`
	LessonPlanName string    `gorm:"column:lesson_plan_name;not null" json:"lesson_plan_name"`
	LessonPlanURL  string    `gorm:"column:lesson_plan_url;not null" json:"lesson_plan_url"`
	LessonPlanSize int64     `gorm:"column:lesson_plan_size;not null" json:"lesson_plan_size"`

	LessonPlanCreatedAt time.Time `gorm:"column:lesson_plan_created_at;autoCreateTime" json:"lesson_plan_created_at"`
}

func (LessonPlanModel) TableName() string { return "lesson_plans" }

func (m *LessonPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.LessonPlanID == uuid.Nil {
		m.LessonPlanID = uuid.New()
	}
	return nil
}
