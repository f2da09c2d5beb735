package routes

import (
	"enquiry-app/config"
	"enquiry-app/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupEnquiryRoutes mounts the enquiry and everything that hangs off it.
func SetupEnquiryRoutes(app *fiber.App, c Controllers) {
	api := app.Group(config.MAIN_ROUTES+"/enquiries", middleware.AuthMiddleware)

	api.Get("/", c.Enquiries.ListEnquiries)
	api.Post("/", c.Enquiries.CreateEnquiry)
	api.Get("/dashboard", c.Enquiries.Dashboard)
	api.Get("/:id", c.Enquiries.GetEnquiry)
	api.Delete("/:id", c.Enquiries.DeleteEnquiry)

	api.Post("/:id/items", c.Items.AddItem)
	api.Post("/:id/items/upload", c.Items.UploadItems)
	api.Put("/:id/items/:itemId", c.Items.UpdateItem)
	api.Delete("/:id/items/:itemId", c.Items.DeleteItem)

	api.Get("/:id/candidates", c.Selections.Candidates)
	api.Post("/:id/selections", c.Selections.Select)
	api.Post("/:id/selections/shortlist", c.Selections.Shortlist)
	api.Post("/:id/selections/:selectionId/skip", c.Selections.Skip)
	api.Put("/:id/suppliers/:supplierId/finance", c.Selections.UpdateSupplierFinance)
	api.Post("/:id/suppliers/:supplierId/refresh-total", c.Selections.RefreshSupplierTotal)
	api.Post("/:id/suppliers/:supplierId/mail", c.Selections.SendSupplierMail)
	api.Get("/:id/mail-logs", c.Selections.MailLogs)

	api.Get("/:id/rollup", c.Selections.EnquiryRollup)
	api.Get("/:id/suppliers/rollup", c.Selections.SupplierRollups)
	api.Get("/:id/compare", c.Selections.Compare)

	api.Post("/:id/quotes", c.Documents.CreateQuote)
	api.Post("/:id/proforma-invoices", c.Documents.CreateProformaInvoice)
	api.Post("/:id/sales-orders", c.Documents.CreateSalesOrder)
	api.Post("/:id/supplier-pos", c.Documents.CreateSupplierPOs)
	api.Get("/:id/supplier-pos", c.Documents.ListSupplierPOs)

	api.Get("/:id/tracking", c.Shipments.Tracking)
	api.Post("/:id/shipments", c.Shipments.CreateShipment)
	api.Delete("/:id/shipments/:shipmentId", c.Shipments.CancelShipment)
	api.Get("/:id/supplier-pos/:poId/billable", c.Shipments.Billable)
	api.Get("/:id/supplier-pos/:poId/bills", c.Shipments.ListBills)
	api.Post("/:id/bills", c.Shipments.CreateBill)
}
