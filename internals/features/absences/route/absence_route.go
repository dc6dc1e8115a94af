package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/absences/controller"
	"classcover_backend/internals/features/absences/service"
)

func AbsenceRoutes(api fiber.Router, db *gorm.DB, svc *service.AbsenceService) {
	ctl := controller.NewAbsenceController(db, svc)

	r := api.Group("/absences")
	r.Get("/", ctl.List)
	r.Post("/", ctl.Create)
	r.Put("/:id", ctl.Update)
	r.Delete("/", ctl.Delete)
	r.Patch("/claim", ctl.Claim)
}

// ICSRoutes stays outside the JWT group: calendar clients cannot attach
// bearer tokens.
func ICSRoutes(app fiber.Router, db *gorm.DB) {
	ics := controller.NewICSController(db)
	app.Get("/ics/:id", ics.Export)
}
