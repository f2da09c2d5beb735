package routes

import (
	"enquiry-app/config"
	"enquiry-app/controllers"
	"enquiry-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupSupplierRoutes(app *fiber.App, supplierController *controllers.SupplierController) {
	api := app.Group(config.MAIN_ROUTES+"/suppliers", middleware.AuthMiddleware)
	api.Post("/", supplierController.CreateSupplier)
	api.Post("/:id/items", supplierController.CreateSupplierItem)

	items := app.Group(config.MAIN_ROUTES+"/supplier-items", middleware.AuthMiddleware)
	items.Put("/:id", supplierController.UpdateSupplierItem)
}
