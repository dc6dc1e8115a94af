package controller

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	absenceModel "classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/school/locations/dto"
	"classcover_backend/internals/features/school/locations/model"
	helper "classcover_backend/internals/helpers"
)

type LocationController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewLocationController(db *gorm.DB) *LocationController {
	return &LocationController{DB: db, Validator: validator.New()}
}

func (ctl *LocationController) List(c *fiber.Ctx) error {
	q := ctl.DB.WithContext(c.UserContext()).Order("location_name asc")
	if !c.QueryBool("include_archived", false) {
		q = q.Where("location_archived = ?", false)
	}

	var list []model.LocationModel
	if err := q.Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}
	return helper.Success(c, "OK", dto.FromModels(list))
}

func (ctl *LocationController) Create(c *fiber.Ctx) error {
	var body dto.LocationCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	body.Normalize()
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	ent := body.ToModel()
	if err := ctl.DB.WithContext(c.UserContext()).Create(&ent).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Location created", dto.FromModel(ent))
}

func (ctl *LocationController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var ent model.LocationModel
	if err := ctl.DB.WithContext(c.UserContext()).First(&ent, "location_id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.Error(c, fiber.StatusNotFound, "Location not found")
		}
		return helper.FromFiberError(c, err)
	}

	var body dto.LocationUpdateDTO
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
	return helper.Success(c, "Location updated", dto.FromModel(ent))
}

// Delete is blocked while any absence references the location.
func (ctl *LocationController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var refs int64
	if err := ctl.DB.WithContext(c.UserContext()).Model(&absenceModel.AbsenceModel{}).
		Where("absence_location_id = ?", id).
		Count(&refs).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if refs > 0 {
		return helper.Error(c, fiber.StatusConflict,
			fmt.Sprintf("Location is referenced by %d absence(s); archive it instead", refs))
	}

	res := ctl.DB.WithContext(c.UserContext()).Delete(&model.LocationModel{}, "location_id = ?", id)
	if res.Error != nil {
		return helper.FromFiberError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.Error(c, fiber.StatusNotFound, "Location not found")
	}
	return helper.Success(c, "Location deleted", fiber.Map{"location_id": id})
}
