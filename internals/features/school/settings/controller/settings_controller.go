package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"classcover_backend/internals/features/school/settings/model"
	helper "classcover_backend/internals/helpers"
)

type SettingsController struct {
	DB *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

type absenceCapDTO struct {
	AbsenceCap int `json:"absence_cap"`
}

// getOrCreate pins the singleton to its well-known id. A concurrent first
// write collapses onto the primary-key constraint; the loser re-reads.
func (ctl *SettingsController) getOrCreate(c *fiber.Ctx) (*model.GlobalSettingsModel, error) {
	var ent model.GlobalSettingsModel
	err := ctl.DB.WithContext(c.UserContext()).
		First(&ent, "global_settings_id = ?", model.WellKnownID).Error
	if err == nil {
		return &ent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ent = model.GlobalSettingsModel{
		GlobalSettingsID:         model.WellKnownID,
		GlobalSettingsAbsenceCap: model.DefaultAbsenceCap,
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&ent).Error; err != nil {
		if isUniqueViolation(err) {
			err = ctl.DB.WithContext(c.UserContext()).
				First(&ent, "global_settings_id = ?", model.WellKnownID).Error
			if err == nil {
				return &ent, nil
			}
		}
		return nil, err
	}
	return &ent, nil
}

// isUniqueViolation matches 23505 from either postgres driver stack.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (ctl *SettingsController) GetAbsenceCap(c *fiber.Ctx) error {
	ent, err := ctl.getOrCreate(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "OK", ent)
}

func (ctl *SettingsController) UpdateAbsenceCap(c *fiber.Ctx) error {
	var body absenceCapDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid body: "+err.Error())
	}
	if body.AbsenceCap < 0 {
		return helper.Error(c, fiber.StatusBadRequest, "absence_cap must be >= 0")
	}

	ent, err := ctl.getOrCreate(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	ent.GlobalSettingsAbsenceCap = body.AbsenceCap
	if err := ctl.DB.WithContext(c.UserContext()).Save(ent).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.Success(c, "Absence cap updated", ent)
}
