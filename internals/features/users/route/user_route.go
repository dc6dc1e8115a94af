package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/users/controller"
	"classcover_backend/internals/helpers/filestore"
	"classcover_backend/internals/middlewares"
)

func AuthRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewAuthController(db)
	r := api.Group("/auth")
	r.Post("/google", middlewares.LoginRateLimiter(), ctl.GoogleSignIn)
	r.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)
	r.Post("/logout", ctl.Logout)
}

func UserRoutes(api fiber.Router, db *gorm.DB, files filestore.Store) {
	ctl := controller.NewUserController(db, files)
	r := api.Group("/users")
	r.Get("/", ctl.List)
	r.Get("/by-email", ctl.GetByEmail)
	r.Patch("/avatar", ctl.UploadAvatar)
	r.Get("/:id/mailing-list", ctl.GetMailingList)
	r.Put("/:id/mailing-list", ctl.UpdateMailingList)
}

func UserAdminRoutes(api fiber.Router, db *gorm.DB, files filestore.Store) {
	ctl := controller.NewUserController(db, files)
	api.Patch("/users/:id", ctl.Update)
}
