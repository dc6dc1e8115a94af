package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"classcover_backend/internals/features/school/subjects/model"
)

type SubjectCreateDTO struct {
	SubjectName         string     `json:"subject_name"           validate:"required,min=1"`
	SubjectAbbreviation string     `json:"subject_abbreviation"   validate:"required,min=1,max=10"`
	SubjectColorGroupID *uuid.UUID `json:"subject_color_group_id,omitempty"`
}

type SubjectUpdateDTO struct {
	SubjectName         *string    `json:"subject_name,omitempty"         validate:"omitempty,min=1"`
	SubjectAbbreviation *string    `json:"subject_abbreviation,omitempty" validate:"omitempty,min=1,max=10"`
	SubjectArchived     *bool      `json:"subject_archived,omitempty"`
	SubjectColorGroupID *uuid.UUID `json:"subject_color_group_id,omitempty"`
}

type SubjectResponseDTO struct {
	SubjectID           uuid.UUID              `json:"subject_id"`
	SubjectName         string                 `json:"subject_name"`
	SubjectAbbreviation string                 `json:"subject_abbreviation"`
	SubjectArchived     bool                   `json:"subject_archived"`
	SubjectColorGroupID *uuid.UUID             `json:"subject_color_group_id,omitempty"`
	SubjectColorGroup   *model.ColorGroupModel `json:"subject_color_group,omitempty"`
	SubjectCreatedAt    time.Time              `json:"subject_created_at"`
}

func (p *SubjectCreateDTO) Normalize() {
	p.SubjectName = strings.TrimSpace(p.SubjectName)
	p.SubjectAbbreviation = strings.TrimSpace(p.SubjectAbbreviation)
}

func (p *SubjectCreateDTO) ToModel() model.SubjectModel {
	return model.SubjectModel{
		SubjectName:         p.SubjectName,
		SubjectAbbreviation: p.SubjectAbbreviation,
		SubjectColorGroupID: p.SubjectColorGroupID,
	}
}

func (u *SubjectUpdateDTO) ApplyUpdates(ent *model.SubjectModel) {
	if u.SubjectName != nil {
		ent.SubjectName = strings.TrimSpace(*u.SubjectName)
	}
	if u.SubjectAbbreviation != nil {
		ent.SubjectAbbreviation = strings.TrimSpace(*u.SubjectAbbreviation)
	}
	if u.SubjectArchived != nil {
		ent.SubjectArchived = *u.SubjectArchived
	}
	if u.SubjectColorGroupID != nil {
		ent.SubjectColorGroupID = u.SubjectColorGroupID
	}
}

func FromModel(ent model.SubjectModel) SubjectResponseDTO {
	return SubjectResponseDTO{
		SubjectID:           ent.SubjectID,
		SubjectName:         ent.SubjectName,
		SubjectAbbreviation: ent.SubjectAbbreviation,
		SubjectArchived:     ent.SubjectArchived,
		SubjectColorGroupID: ent.SubjectColorGroupID,
		SubjectColorGroup:   ent.SubjectColorGroup,
		SubjectCreatedAt:    ent.SubjectCreatedAt,
	}
}

func FromModels(list []model.SubjectModel) []SubjectResponseDTO {
	out := make([]SubjectResponseDTO, 0, len(list))
	for _, it := range list {
		out = append(out, FromModel(it))
	}
	return out
}
