package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/steel-pos/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateInvoice *billing.CreateInvoiceUseCase
	Catalog       *billing.CatalogUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Facturación
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.CreateInvoice)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)

	// Catálogo (lecturas de la UI)
	catalogHandler := NewCatalogHandler(deps.Catalog)
	api.Get("/products/:id", catalogHandler.GetProduct)
	api.Get("/customers/:id", catalogHandler.GetCustomer)
}
