package repository

import "github.com/tu-usuario/steel-pos/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// Create asigna el ID autoincremental en la entidad. Las consultas de número
// de factura operan dentro de la misma transacción abierta del escritor.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateItem(item *entity.InvoiceItem) error
	ExistsBillNumber(billNumber string) (bool, error)
	CountAll() (int64, error)
	GetByID(id int64) (*entity.Invoice, error)
	GetItemsByInvoiceID(invoiceID int64) ([]*entity.InvoiceItem, error)
}
