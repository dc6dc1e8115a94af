package controller

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	absenceModel "classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/school/subjects/dto"
	"classcover_backend/internals/features/school/subjects/model"
	userModel "classcover_backend/internals/features/users/model"
	helper "classcover_backend/internals/helpers"
)

type SubjectController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{DB: db, Validator: validator.New()}
}

// -----------------------------
// List (active by default)
// -----------------------------
func (ctl *SubjectController) List(c *fiber.Ctx) error {
	q := ctl.DB.WithContext(c.UserContext()).
		Preload("SubjectColorGroup").
		Order("subject_name asc")
	if !c.QueryBool("include_archived", false) {
		q = q.Where("subject_archived = ?", false)
	}

	var list []model.SubjectModel
	if err := q.Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}
	return helper.Success(c, "OK", dto.FromModels(list))
}

// -----------------------------
// Create — every existing user is auto-subscribed to the new subject's
// mailing list in the same transaction.
// -----------------------------
func (ctl *SubjectController) Create(c *fiber.Ctx) error {
	var body dto.SubjectCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	body.Normalize()
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	ent := body.ToModel()
	err := ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ent).Error; err != nil {
			return err
		}
		var users []userModel.UserModel
		if err := tx.Find(&users).Error; err != nil {
			return err
		}
		for _, u := range users {
			sub := model.MailingListModel{
				MailingListUserID:    u.UserID,
				MailingListSubjectID: ent.SubjectID,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Subject created", dto.FromModel(ent))
}

// -----------------------------
// Update (partial)
// -----------------------------
func (ctl *SubjectController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var ent model.SubjectModel
	if err := ctl.DB.WithContext(c.UserContext()).First(&ent, "subject_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.Error(c, fiber.StatusNotFound, "Subject not found")
		}
		return helper.FromFiberError(c, err)
	}

	var body dto.SubjectUpdateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	body.ApplyUpdates(&ent)
	if err := ctl.DB.WithContext(c.UserContext()).Save(&ent).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Subject updated", dto.FromModel(ent))
}

// -----------------------------
// Delete — blocked while any absence references the subject.
// -----------------------------
func (ctl *SubjectController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var refs int64
	if err := ctl.DB.WithContext(c.UserContext()).Model(&absenceModel.AbsenceModel{}).
		Where("absence_subject_id = ?", id).
		Count(&refs).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if refs > 0 {
		return helper.Error(c, fiber.StatusConflict,
			fmt.Sprintf("Subject is referenced by %d absence(s); archive it instead", refs))
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.MailingListModel{}, "mailing_list_subject_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.SubjectModel{}, "subject_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Subject not found")
		}
		return nil
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Subject deleted", fiber.Map{"subject_id": id})
}

// -----------------------------
// Color groups (static reference data)
// -----------------------------
func (ctl *SubjectController) ListColorGroups(c *fiber.Ctx) error {
	var list []model.ColorGroupModel
	if err := ctl.DB.WithContext(c.UserContext()).Order("color_group_name asc").Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}
	return helper.Success(c, "OK", list)
}
