package routes

import (
	"enquiry-app/controllers"

	"github.com/gofiber/fiber/v2"
)

// Controllers is everything the HTTP surface dispatches to.
type Controllers struct {
	Leads      *controllers.LeadController
	Enquiries  *controllers.EnquiryController
	Items      *controllers.ItemController
	Suppliers  *controllers.SupplierController
	Selections *controllers.SelectionController
	Documents  *controllers.DocumentController
	Shipments  *controllers.ShipmentController
}

func SetupRoutes(app *fiber.App, c Controllers) {
	SetupLeadRoutes(app, c.Leads)
	SetupSupplierRoutes(app, c.Suppliers)
	SetupDocumentRoutes(app, c.Documents)
	SetupShipmentRoutes(app, c.Shipments)
	SetupEnquiryRoutes(app, c)
}
