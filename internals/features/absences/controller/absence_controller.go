package controller

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"classcover_backend/internals/constants"
	"classcover_backend/internals/features/absences/dto"
	"classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/absences/service"
	helper "classcover_backend/internals/helpers"
)

type AbsenceController struct {
	DB        *gorm.DB
	Service   *service.AbsenceService
	Validator *validator.Validate
}

func NewAbsenceController(db *gorm.DB, svc *service.AbsenceService) *AbsenceController {
	return &AbsenceController{DB: db, Service: svc, Validator: validator.New()}
}

// -----------------------------
// Declare
// -----------------------------
func (ctl *AbsenceController) Create(c *fiber.Ctx) error {
	var body dto.AbsenceCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if err := ctl.Validator.Struct(&body); err != nil {
		return helper.ValidationError(c, err)
	}

	created, err := ctl.Service.Declare(c.UserContext(), body.ToInput())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Absence declared", created)
}

// -----------------------------
// List (calendar feed)
// -----------------------------
func (ctl *AbsenceController) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}
	p := helper.ParsePagination(c)

	q := ctl.DB.WithContext(c.UserContext()).Model(&model.AbsenceModel{}).
		Preload("AbsentTeacher").
		Preload("SubstituteTeacher").
		Preload("Location").
		Preload("Subject").
		Preload("LessonPlan").
		Order("absence_lesson_date asc")
	if filter.From != nil {
		q = q.Where("absence_lesson_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("absence_lesson_date < ?", *filter.To)
	}
	if filter.Unfilled != nil && *filter.Unfilled {
		q = q.Where("absence_substitute_teacher_id IS NULL")
	}

	var list []model.AbsenceModel
	if err := q.Offset(p.Offset()).Limit(p.Limit()).Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}

	// Reason of absence is admin-only.
	role, _ := c.Locals("role").(string)
	if role != constants.RoleAdmin {
		for i := range list {
			list[i].AbsenceReasonOfAbsence = ""
		}
	}
	return helper.Success(c, "OK", list)
}

// parseFilter reads the from/to/unfilled query params. Dates are YYYY-MM-DD.
func parseFilter(c *fiber.Ctx) (dto.AbsenceFilterDTO, error) {
	var f dto.AbsenceFilterDTO
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", v)
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", v)
		}
		f.To = &t
	}
	if v := c.Query("unfilled"); v != "" {
		b := v == "true" || v == "1"
		f.Unfilled = &b
	}
	return f, nil
}

// -----------------------------
// Edit (partial)
// -----------------------------
func (ctl *AbsenceController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid id")
	}

	var body dto.AbsenceUpdateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if body.LessonPlanFile != nil {
		if err := ctl.Validator.Struct(body.LessonPlanFile); err != nil {
			return helper.ValidationError(c, err)
		}
	}

	updated, err := ctl.Service.Edit(c.UserContext(), id, body.ToInput())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Absence updated", updated)
}

// -----------------------------
// Delete (admin only)
// -----------------------------
func (ctl *AbsenceController) Delete(c *fiber.Ctx) error {
	var body dto.AbsenceDeleteDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if body.AbsenceID == uuid.Nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid absence id")
	}

	if err := ctl.Service.Delete(c.UserContext(), body.AbsenceID, body.IsUserAdmin); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Absence deleted", fiber.Map{"absenceId": body.AbsenceID})
}

// -----------------------------
// Claim
// -----------------------------
func (ctl *AbsenceController) Claim(c *fiber.Ctx) error {
	var body dto.AbsenceClaimDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if body.AbsenceID == uuid.Nil || body.UserID == uuid.Nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid absence id")
	}

	claimed, err := ctl.Service.Claim(c.UserContext(), body.AbsenceID, body.UserID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Absence claimed", claimed)
}
