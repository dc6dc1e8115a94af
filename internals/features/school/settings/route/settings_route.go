package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/school/settings/controller"
)

func SettingsUserRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewSettingsController(db)
	api.Get("/settings/absence-cap", ctl.GetAbsenceCap)
}

func SettingsAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewSettingsController(db)
	api.Patch("/settings/absence-cap", ctl.UpdateAbsenceCap)
}
