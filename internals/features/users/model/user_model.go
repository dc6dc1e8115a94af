package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classcover_backend/internals/constants"
)

type UserModel struct {
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	UserAuthID         string    `gorm:"column:user_auth_id;uniqueIndex;not null" json:"user_auth_id"`
	UserEmail          string    `gorm:"column:user_email;uniqueIndex;not null" json:"user_email"`
	UserName           string    `gorm:"column:user_name;not null" json:"user_name"`
	UserRole           string    `gorm:"column:user_role;type:varchar(16);not null;default:teacher" json:"user_role"`
	UserStatus         string    `gorm:"column:user_status;type:varchar(16);not null;default:invited" json:"user_status"`
	UserProfilePicture *string   `gorm:"column:user_profile_picture" json:"user_profile_picture,omitempty"`
	UserPassword       *string   `gorm:"column:user_password" json:"-"`

	UserCreatedAt time.Time `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	if m.UserRole == "" {
		m.UserRole = constants.RoleTeacher
	}
	if m.UserStatus == "" {
		m.UserStatus = constants.StatusInvited
	}
	return nil
}

func (m *UserModel) IsAdmin() bool { return m.UserRole == constants.RoleAdmin }
