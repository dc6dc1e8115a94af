package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	absenceRoute "classcover_backend/internals/features/absences/route"
	"classcover_backend/internals/features/absences/service"
	"classcover_backend/internals/features/emails/jobs"
	"classcover_backend/internals/features/emails/mailer"
	locationRoute "classcover_backend/internals/features/school/locations/route"
	settingsRoute "classcover_backend/internals/features/school/settings/route"
	subjectRoute "classcover_backend/internals/features/school/subjects/route"
	userRoute "classcover_backend/internals/features/users/route"
	"classcover_backend/internals/helpers/filestore"
	"classcover_backend/internals/middlewares/auth"
)

// SetupRoutes mounts the whole API surface:
//
//	/api/auth/*          sign-in, no session required
//	/ics/:id             public calendar feed
//	/api/*               JWT session (teachers and admins)
//	/api/admin/*         JWT session + admin role
//	/api/emails/*        bearer CRON_SECRET, for external schedulers
func SetupRoutes(app *fiber.App, db *gorm.DB, sender mailer.Sender) {
	files := filestore.NewFromEnv(os.Getenv)
	absences := service.NewAbsenceService(db, files, sender)

	api := app.Group("/api")

	// Public
	userRoute.AuthRoutes(api, db)
	absenceRoute.ICSRoutes(api, db)
	jobs.CronRoutes(api, db, sender)

	// Signed-in teachers and admins
	user := api.Group("", auth.AuthMiddleware(db))
	absenceRoute.AbsenceRoutes(user, db, absences)
	subjectRoute.SubjectUserRoutes(user, db)
	locationRoute.LocationUserRoutes(user, db)
	settingsRoute.SettingsUserRoutes(user, db)
	userRoute.UserRoutes(user, db, files)

	// Admin-only mutations
	admin := api.Group("/admin", auth.AuthMiddleware(db), auth.IsAdmin("administration"))
	subjectRoute.SubjectAdminRoutes(admin, db)
	locationRoute.LocationAdminRoutes(admin, db)
	settingsRoute.SettingsAdminRoutes(admin, db)
	userRoute.UserAdminRoutes(admin, db, files)
}
