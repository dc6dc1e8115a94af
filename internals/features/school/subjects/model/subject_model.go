package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubjectModel struct {
	SubjectID           uuid.UUID  `gorm:"column:subject_id;type:uuid;primaryKey" json:"subject_id"`
	SubjectName         string     `gorm:"column:subject_name;not null" json:"subject_name"`
	SubjectAbbreviation string     `gorm:"column:subject_abbreviation;not null" json:"subject_abbreviation"`
	SubjectArchived     bool       `gorm:"column:subject_archived;not null;default:false" json:"subject_archived"`
	SubjectColorGroupID *uuid.UUID `gorm:"column:subject_color_group_id;type:uuid" json:"subject_color_group_id,omitempty"`

	SubjectColorGroup *ColorGroupModel `gorm:"foreignKey:SubjectColorGroupID;references:ColorGroupID" json:"subject_color_group,omitempty"`

	SubjectCreatedAt time.Time `gorm:"column:subject_created_at;autoCreateTime" json:"subject_created_at"`
	SubjectUpdatedAt time.Time `gorm:"column:subject_updated_at;autoUpdateTime" json:"subject_updated_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubjectID == uuid.Nil {
		m.SubjectID = uuid.New()
	}
	return nil
}

// ColorGroupModel is static reference data: a four-shade palette used by the
// calendar UI to render a subject.
type ColorGroupModel struct {
	ColorGroupID     uuid.UUID      `gorm:"column:color_group_id;type:uuid;primaryKey" json:"color_group_id"`
	ColorGroupName   string         `gorm:"column:color_group_name;uniqueIndex;not null" json:"color_group_name"`
	ColorGroupShades datatypes.JSON `gorm:"column:color_group_shades;not null" json:"color_group_shades"`
}

func (ColorGroupModel) TableName() string { return "color_groups" }

func (m *ColorGroupModel) BeforeCreate(tx *gorm.DB) error {
	if m.ColorGroupID == uuid.Nil {
		m.ColorGroupID = uuid.New()
	}
	return nil
}

// MailingListModel is the (user, subject) subscription controlling which
// non-urgent digest items a teacher receives.
type MailingListModel struct {
	MailingListID        uuid.UUID `gorm:"column:mailing_list_id;type:uuid;primaryKey" json:"mailing_list_id"`
	MailingListUserID    uuid.UUID `gorm:"column:mailing_list_user_id;type:uuid;not null;uniqueIndex:ux_mailing_list_user_subject" json:"mailing_list_user_id"`
	MailingListSubjectID uuid.UUID `gorm:"column:mailing_list_subject_id;type:uuid;not null;uniqueIndex:ux_mailing_list_user_subject" json:"mailing_list_subject_id"`

	MailingListCreatedAt time.Time `gorm:"column:mailing_list_created_at;autoCreateTime" json:"mailing_list_created_at"`
}

func (MailingListModel) TableName() string { return "mailing_lists" }

func (m *MailingListModel) BeforeCreate(tx *gorm.DB) error {
	if m.MailingListID == uuid.Nil {
		m.MailingListID = uuid.New()
	}
	return nil
}
