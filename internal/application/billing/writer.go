package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/metrics"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// WriterConfig tunables del escritor transaccional.
type WriterConfig struct {
	BillPrefix   string        // prefijo del número visible (ej. "INV")
	TxAttempts   int           // intentos de la transacción completa ante contención
	TxBackoff    time.Duration // backoff inicial exponencial entre intentos
	BillAttempts int           // regeneraciones del número por colisión
}

// CommitResult todo lo que quedó committeado, para la respuesta al caller y
// los eventos post-commit.
type CommitResult struct {
	Invoice   *entity.Invoice
	Items     []*entity.InvoiceItem
	Movements []*entity.StockMovement
	Ledger    *entity.LedgerEntry // nil si la factura no generó asiento
	Products  []*entity.Product   // estado post-descuento de cada producto
	Customer  *entity.Customer    // con el saldo resultante
}

// Writer realiza la escritura atómica multi-tabla de una venta: factura,
// líneas, descuento de stock con auditoría y asiento del ledger, todo en una
// transacción con rollback. Solo se ejecuta con el turno del serializador.
type Writer struct {
	txRunner BillingTxRunner
	cfg      WriterConfig
	log      *logger.Logger
}

// NewWriter construye el escritor.
func NewWriter(txRunner BillingTxRunner, cfg WriterConfig, log *logger.Logger) *Writer {
	if cfg.BillPrefix == "" {
		cfg.BillPrefix = "INV"
	}
	if cfg.TxAttempts <= 0 {
		cfg.TxAttempts = 3
	}
	if cfg.TxBackoff <= 0 {
		cfg.TxBackoff = 100 * time.Millisecond
	}
	if cfg.BillAttempts <= 0 {
		cfg.BillAttempts = 10
	}
	return &Writer{txRunner: txRunner, cfg: cfg, log: log}
}

// Write ejecuta el intento completo (abrir tx, numerar, insertar, descontar,
// asentar, commit) con reintento acotado y backoff exponencial, pero solo
// ante contención transitoria del motor. Errores de validación, stock
// insuficiente o no-encontrado jamás se reintentan. Cada reintento abre una
// transacción fresca: nunca se retoma una a medio hacer.
func (w *Writer) Write(ctx context.Context, v *ValidatedInvoice, customer *entity.Customer) (*CommitResult, error) {
	backoff := w.cfg.TxBackoff
	var lastErr error
	for attempt := 1; attempt <= w.cfg.TxAttempts; attempt++ {
		res, err := w.attempt(ctx, v, customer)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrTransactionConflict) {
			return nil, err
		}
		if attempt == w.cfg.TxAttempts {
			break
		}
		metrics.TxRetries.Inc()
		w.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).
			Msg("contención de escritura, reintentando la transacción")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	metrics.TxConflicts.Inc()
	return nil, lastErr
}

// attempt una pasada completa dentro de una sola transacción.
func (w *Writer) attempt(ctx context.Context, v *ValidatedInvoice, customer *entity.Customer) (*CommitResult, error) {
	res := &CommitResult{}
	err := w.txRunner.RunBilling(ctx, func(
		products repository.ProductRepository,
		customers repository.CustomerRepository,
		invoices repository.InvoiceRepository,
		movements repository.StockMovementRepository,
		ledger repository.LedgerRepository,
	) error {
		now := time.Now()

		bill, err := w.generateBillNumber(invoices)
		if err != nil {
			return err
		}

		inv := &entity.Invoice{
			BillNumber:       bill,
			CustomerID:       customer.ID,
			CustomerName:     customer.Name,
			Subtotal:         v.Subtotal,
			DiscountPercent:  v.DiscountPercent,
			DiscountAmount:   v.DiscountAmount,
			GrandTotal:       v.GrandTotal,
			PaymentAmount:    v.PaymentAmount,
			RemainingBalance: v.RemainingBalance,
			PaymentMethod:    v.PaymentMethod,
			PaymentStatus:    v.PaymentStatus,
			Notes:            v.Notes,
			Date:             now,
			CreatedAt:        now,
		}
		if err := invoices.Create(inv); err != nil {
			return fmt.Errorf("cabecera de factura: %w", err)
		}

		for i := range v.Items {
			it := &v.Items[i]
			item, movement, product, err := w.applyItem(inv, it, customer, products, invoices, movements, now)
			if err != nil {
				return err
			}
			res.Items = append(res.Items, item)
			res.Movements = append(res.Movements, movement)
			res.Products = append(res.Products, product)
		}

		// Asiento del ledger: una fila por commit cuando la factura lleva
		// monto pagado o pendiente.
		resCustomer := *customer
		if inv.GrandTotal.IsPositive() {
			newBalance := customer.Balance.Add(inv.RemainingBalance)
			entry := &entity.LedgerEntry{
				InvoiceID:     inv.ID,
				CustomerID:    customer.ID,
				Amount:        inv.GrandTotal,
				PaymentAmount: inv.PaymentAmount,
				Balance:       newBalance,
				EntryType:     entity.LedgerEntryTypeInvoice,
				CreatedAt:     now,
			}
			if err := ledger.Create(entry); err != nil {
				return fmt.Errorf("asiento del ledger: %w", err)
			}
			if err := customers.UpdateBalance(customer.ID, newBalance); err != nil {
				return fmt.Errorf("saldo del cliente: %w", err)
			}
			res.Ledger = entry
			resCustomer.Balance = newBalance
		}

		res.Invoice = inv
		res.Customer = &resCustomer
		return nil
	})
	if err != nil {
		var fatal *domain.FatalInconsistentError
		if errors.As(err, &fatal) {
			// El motor no puede auto-repararse: se registra como condición
			// crítica que requiere atención del operador.
			w.log.Error().Err(err).Msg("CRÍTICO: rollback fallido, posible estado inconsistente")
		}
		return nil, err
	}
	return res, nil
}

// applyItem inserta la línea, desconta el stock (read-modify-write dentro de
// la misma transacción) y deja la fila de auditoría con snapshots antes/después.
func (w *Writer) applyItem(
	inv *entity.Invoice,
	it *ValidatedItem,
	customer *entity.Customer,
	products repository.ProductRepository,
	invoices repository.InvoiceRepository,
	movements repository.StockMovementRepository,
	now time.Time,
) (*entity.InvoiceItem, *entity.StockMovement, *entity.Product, error) {
	item := &entity.InvoiceItem{
		InvoiceID:   inv.ID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity.String(),
		UnitPrice:   it.UnitPrice,
		TotalPrice:  it.TotalPrice,
	}
	if err := invoices.CreateItem(item); err != nil {
		return nil, nil, nil, fmt.Errorf("línea de factura: %w", err)
	}

	p, err := products.GetByID(it.ProductID)
	if err != nil {
		return nil, nil, nil, err
	}
	if p == nil {
		return nil, nil, nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, it.ProductID)
	}

	previous := p.StockQuantity()
	remaining := previous.Sub(it.Quantity)
	if remaining.IsNegative() {
		// El chequeo de disponibilidad ya corrió con el lock tomado; si se
		// llega acá el invariante de no-negatividad manda abortar toda la
		// factura sin descuento parcial.
		return nil, nil, nil, &domain.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   previous,
			Required:    it.Quantity,
		}
	}

	newStock := remaining.String()
	if err := products.UpdateStock(p.ID, newStock, remaining.Value()); err != nil {
		return nil, nil, nil, fmt.Errorf("descuento de stock: %w", err)
	}

	movement := &entity.StockMovement{
		ProductID:       p.ID,
		ProductName:     p.Name,
		Type:            entity.MovementTypeOut,
		Quantity:        it.Quantity.String(),
		PreviousStock:   previous.String(),
		NewStock:        newStock,
		UnitPrice:       it.UnitPrice,
		TotalValue:      it.TotalPrice,
		Reason:          "venta",
		ReferenceType:   entity.ReferenceTypeInvoice,
		ReferenceID:     inv.ID,
		ReferenceNumber: inv.BillNumber,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CreatedAt:       now,
	}
	if err := movements.Create(movement); err != nil {
		return nil, nil, nil, fmt.Errorf("movimiento de stock: %w", err)
	}

	after := *p
	after.CurrentStock = newStock
	after.StockValue = remaining.Value()
	return item, movement, &after, nil
}

// generateBillNumber produce el número visible: prefijo + secuencia con
// padding. La semilla sale del conteo dentro de la misma transacción; cada
// colisión consulta de nuevo y avanza la secuencia, con tope acotado.
func (w *Writer) generateBillNumber(invoices repository.InvoiceRepository) (string, error) {
	count, err := invoices.CountAll()
	if err != nil {
		return "", fmt.Errorf("contar facturas: %w", err)
	}
	seq := count + 1
	for i := 0; i < w.cfg.BillAttempts; i++ {
		candidate := fmt.Sprintf("%s-%06d", w.cfg.BillPrefix, seq)
		exists, err := invoices.ExistsBillNumber(candidate)
		if err != nil {
			return "", fmt.Errorf("verificar número de factura: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		seq++
	}
	return "", fmt.Errorf("%w: %d intentos con prefijo %s",
		domain.ErrBillNumberExhausted, w.cfg.BillAttempts, w.cfg.BillPrefix)
}
