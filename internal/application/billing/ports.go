package billing

import (
	"context"

	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción que incluye
// todos los repos que toca una venta. Commit si fn retorna nil; rollback si
// no. Contención transitoria sale envuelta con ErrTransactionConflict y un
// rollback fallido escala a FatalInconsistentError.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
		movementRepo repository.StockMovementRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// Notifier puerto de salida para los eventos de dominio post-commit.
// La publicación es best-effort: una falla de un suscriptor jamás convierte
// un commit exitoso en error.
type Notifier interface {
	Publish(name string, payload map[string]any)
}
