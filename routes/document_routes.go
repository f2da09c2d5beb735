package routes

import (
	"enquiry-app/config"
	"enquiry-app/controllers"
	"enquiry-app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupDocumentRoutes mounts the organisation-wide document views.
func SetupDocumentRoutes(app *fiber.App, documentController *controllers.DocumentController) {
	quotes := app.Group(config.MAIN_ROUTES+"/quotes", middleware.AuthMiddleware)
	quotes.Get("/", documentController.ListQuotes)
	quotes.Get("/:id", documentController.GetQuote)

	pis := app.Group(config.MAIN_ROUTES+"/proforma-invoices", middleware.AuthMiddleware)
	pis.Get("/", documentController.ListProformaInvoices)
	pis.Get("/:id", documentController.GetProformaInvoice)

	sos := app.Group(config.MAIN_ROUTES+"/sales-orders", middleware.AuthMiddleware)
	sos.Get("/", documentController.ListSalesOrders)
	sos.Get("/:id", documentController.GetSalesOrder)

	pos := app.Group(config.MAIN_ROUTES+"/supplier-pos", middleware.AuthMiddleware)
	pos.Get("/", documentController.ListAllSupplierPOs)
}

func SetupShipmentRoutes(app *fiber.App, shipmentController *controllers.ShipmentController) {
	app.Get(config.MAIN_ROUTES+"/tracking", middleware.AuthMiddleware, shipmentController.TrackingBoard)
	app.Get(config.MAIN_ROUTES+"/bills", middleware.AuthMiddleware, shipmentController.ListAllBills)
}
