package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"classcover_backend/internals/features/users/model"
)

// =======================
// Request DTO
// =======================

type GoogleSignInDTO struct {
	IDToken string `json:"id_token" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UserUpdateDTO struct {
	UserRole   *string `json:"user_role,omitempty"   validate:"omitempty,oneof=teacher admin"`
	UserStatus *string `json:"user_status,omitempty" validate:"omitempty,oneof=active invited deactivated"`
	UserName   *string `json:"user_name,omitempty"   validate:"omitempty,min=1"`
}

type MailingListUpdateDTO struct {
	SubjectIDs []uuid.UUID `json:"subject_ids" validate:"required"`
}

// =======================
// Response DTO
// =======================

type UserResponseDTO struct {
	UserID             uuid.UUID `json:"user_id"`
	UserEmail          string    `json:"user_email"`
	UserName           string    `json:"user_name"`
	UserRole           string    `json:"user_role"`
	UserStatus         string    `json:"user_status"`
	UserProfilePicture *string   `json:"user_profile_picture,omitempty"`
	UserCreatedAt      time.Time `json:"user_created_at"`
}

func (p *LoginDTO) Normalize() {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
}

func (u *UserUpdateDTO) ApplyUpdates(ent *model.UserModel) {
	if u.UserRole != nil {
		ent.UserRole = *u.UserRole
	}
	if u.UserStatus != nil {
		ent.UserStatus = *u.UserStatus
	}
	if u.UserName != nil {
		ent.UserName = strings.TrimSpace(*u.UserName)
	}
}

func FromModel(ent model.UserModel) UserResponseDTO {
	return UserResponseDTO{
		UserID:             ent.UserID,
		UserEmail:          ent.UserEmail,
		UserName:           ent.UserName,
		UserRole:           ent.UserRole,
		UserStatus:         ent.UserStatus,
		UserProfilePicture: ent.UserProfilePicture,
		UserCreatedAt:      ent.UserCreatedAt,
	}
}

func FromModels(list []model.UserModel) []UserResponseDTO {
	out := make([]UserResponseDTO, 0, len(list))
	for _, it := range list {
		out = append(out, FromModel(it))
	}
	return out
}
