package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"classcover_backend/internals/features/school/locations/model"
)

type LocationCreateDTO struct {
	LocationName         string `json:"location_name"         validate:"required,min=1"`
	LocationAbbreviation string `json:"location_abbreviation" validate:"required,min=1,max=10"`
}

type LocationUpdateDTO struct {
	LocationName         *string `json:"location_name,omitempty"         validate:"omitempty,min=1"`
	LocationAbbreviation *string `json:"location_abbreviation,omitempty" validate:"omitempty,min=1,max=10"`
	LocationArchived     *bool   `json:"location_archived,omitempty"`
}

type LocationResponseDTO struct {
	LocationID           uuid.UUID `json:"location_id"`
	LocationName         string    `json:"location_name"`
	LocationAbbreviation string    `json:"location_abbreviation"`
	LocationArchived     bool      `json:"location_archived"`
	LocationCreatedAt    time.Time `json:"location_created_at"`
}

func (p *LocationCreateDTO) Normalize() {
	p.LocationName = strings.TrimSpace(p.LocationName)
	p.LocationAbbreviation = strings.TrimSpace(p.LocationAbbreviation)
}

func (p *LocationCreateDTO) ToModel() model.LocationModel {
	return model.LocationModel{
		LocationName:         p.LocationName,
		LocationAbbreviation: p.LocationAbbreviation,
	}
}

func (u *LocationUpdateDTO) ApplyUpdates(ent *model.LocationModel) {
	if u.LocationName != nil {
		ent.LocationName = strings.TrimSpace(*u.LocationName)
	}
	if u.LocationAbbreviation != nil {
		ent.LocationAbbreviation = strings.TrimSpace(*u.LocationAbbreviation)
	}
	if u.LocationArchived != nil {
		ent.LocationArchived = *u.LocationArchived
	}
}

func FromModel(ent model.LocationModel) LocationResponseDTO {
	return LocationResponseDTO{
		LocationID:           ent.LocationID,
		LocationName:         ent.LocationName,
		LocationAbbreviation: ent.LocationAbbreviation,
		LocationArchived:     ent.LocationArchived,
		LocationCreatedAt:    ent.LocationCreatedAt,
	}
}

func FromModels(list []model.LocationModel) []LocationResponseDTO {
	out := make([]LocationResponseDTO, 0, len(list))
	for _, it := range list {
		out = append(out, FromModel(it))
	}
	return out
}
