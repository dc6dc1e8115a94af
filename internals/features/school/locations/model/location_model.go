package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationModel struct {
	LocationID           uuid.UUID `gorm:"column:location_id;type:uuid;primaryKey" json:"location_id"`
	LocationName         string    `gorm:"column:location_name;not null" json:"location_name"`
	LocationAbbreviation string    `gorm:"column:location_abbreviation;not null" json:"location_abbreviation"`
	LocationArchived     bool      `gorm:"column:location_archived;not null;default:false" json:"location_archived"`

	LocationCreatedAt time.Time `gorm:"column:location_created_at;autoCreateTime" json:"location_created_at"`
	LocationUpdatedAt time.Time `gorm:"column:location_updated_at;autoUpdateTime" json:"location_updated_at"`
}

func (LocationModel) TableName() string { return "locations" }

func (m *LocationModel) BeforeCreate(tx *gorm.DB) error {
	if m.LocationID == uuid.Nil {
		m.LocationID = uuid.New()
	}
	return nil
}
