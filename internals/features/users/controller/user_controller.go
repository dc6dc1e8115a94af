package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	subjectModel "classcover_backend/internals/features/school/subjects/model"
	"classcover_backend/internals/features/users/dto"
	"classcover_backend/internals/features/users/model"
	helper "classcover_backend/internals/helpers"
	"classcover_backend/internals/helpers/filestore"
)

type UserController struct {
	DB        *gorm.DB
	Files     filestore.Store
	Validator *validator.Validate
}

func NewUserController(db *gorm.DB, files filestore.Store) *UserController {
	return &UserController{DB: db, Files: files, Validator: validator.New()}
}

func (ctl *UserController) List(c *fiber.Ctx) error {
	var list []model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Order("user_name asc").
		Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}
	return helper.Success(c, "OK", dto.FromModels(list))
}

func (ctl *UserController) GetByEmail(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		return helper.Error(c, fiber.StatusBadRequest, "email query parameter is required")
	}

	var user model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "OK", dto.FromModel(user))
}

// Update changes role, status or display name. Admin only.
func (ctl *UserController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var user model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.FromFiberError(c, err)
	}

	var body dto.UserUpdateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	body.ApplyUpdates(&user)
	if err := ctl.DB.WithContext(c.UserContext()).Save(&user).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "User updated", dto.FromModel(user))
}

// UploadAvatar re-encodes the uploaded picture to webp, stores it and swaps
// the profile URL. The previous object is deleted after the row is saved.
func (ctl *UserController) UploadAvatar(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("user_id").(string))
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Invalid session")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "file field is required")
	}

	encoded, err := helper.EncodeAvatarWebP(fh)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	var user model.UserModel
	if err := ctl.DB.WithContext(c.UserContext()).
		First(&user, "user_id = ?", userID).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	url, err := ctl.Files.UploadBytes(c.UserContext(), "avatars", user.UserID.String()+".webp", "image/webp", encoded)
	if err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusBadGateway, "Upload failed", err.Error())
	}

	oldURL := user.UserProfilePicture
	user.UserProfilePicture = &url
	if err := ctl.DB.WithContext(c.UserContext()).Save(&user).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if oldURL != nil && *oldURL != url {
		// Orphaned object only; the new picture is already live.
		if err := ctl.Files.DeleteByURL(c.UserContext(), *oldURL); err != nil {
			log.Printf("[FILESTORE] stale avatar delete failed: %v", err)
		}
	}
	return helper.Success(c, "Profile picture updated", dto.FromModel(user))
}

// GetMailingList returns the subject ids the user is subscribed to.
func (ctl *UserController) GetMailingList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var rows []subjectModel.MailingListModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("mailing_list_user_id = ?", id).
		Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.MailingListSubjectID)
	}
	return helper.Success(c, "OK", fiber.Map{"subject_ids": ids})
}

// UpdateMailingList replaces the user's subscriptions with the given set.
func (ctl *UserController) UpdateMailingList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var body dto.MailingListUpdateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mailing_list_user_id = ?", id).
			Delete(&subjectModel.MailingListModel{}).Error; err != nil {
			return err
		}
		for _, sid := range body.SubjectIDs {
			row := subjectModel.MailingListModel{
				MailingListUserID:    id,
				MailingListSubjectID: sid,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Mailing list updated", fiber.Map{"subject_ids": body.SubjectIDs})
}
