package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/school/subjects/controller"
)

// User-visible reads.
func SubjectUserRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewSubjectController(db)
	api.Get("/subjects", ctl.List)
	api.Get("/color-groups", ctl.ListColorGroups)
}

// Admin-only mutations.
func SubjectAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewSubjectController(db)
	r := api.Group("/subjects")
	r.Post("/", ctl.Create)
	r.Put("/:id", ctl.Update)
	r.Delete("/:id", ctl.Delete)
}
