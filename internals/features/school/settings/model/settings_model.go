package model

import (
	"time"

	"github.com/google/uuid"
)

// WellKnownID pins the settings singleton to one fixed row; get-or-create
// races collapse onto the primary-key constraint instead of duplicating rows.
var WellKnownID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const DefaultAbsenceCap = 10

type GlobalSettingsModel struct {
	GlobalSettingsID         uuid.UUID `gorm:"column:global_settings_id;type:uuid;primaryKey" json:"global_settings_id"`
	GlobalSettingsAbsenceCap int       `gorm:"column:global_settings_absence_cap;not null;default:10" json:"global_settings_absence_cap"`

	GlobalSettingsUpdatedAt time.Time `gorm:"column:global_settings_updated_at;autoUpdateTime" json:"global_settings_updated_at"`
}

func (GlobalSettingsModel) TableName() string { return "global_settings" }
