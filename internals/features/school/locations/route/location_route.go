package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/school/locations/controller"
)

func LocationUserRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewLocationController(db)
	api.Get("/locations", ctl.List)
}

func LocationAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewLocationController(db)
	r := api.Group("/locations")
	r.Post("/", ctl.Create)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}
