package routes

import (
	"enquiry-app/config"
	"enquiry-app/controllers"
	"enquiry-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupLeadRoutes(app *fiber.App, leadController *controllers.LeadController) {
	api := app.Group(config.MAIN_ROUTES+"/leads", middleware.AuthMiddleware)
	api.Post("/", leadController.CreateLead)
	api.Get("/:id", leadController.GetLead)
	api.Post("/:id/qualify", leadController.QualifyLead)
}
