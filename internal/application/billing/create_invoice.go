package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/application/ratelimit"
	"github.com/tu-usuario/steel-pos/internal/application/serializer"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/metrics"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// CreateInvoiceUseCase orquesta el ciclo completo de una venta: límite de
// tasa, validación pura, turno en el serializador, chequeo de disponibilidad,
// escritura transaccional y eventos post-commit.
type CreateInvoiceUseCase struct {
	limiter      *ratelimit.Limiter
	validator    *Validator
	queue        *serializer.Serializer
	writer       *Writer
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	invoiceRepo  repository.InvoiceRepository
	notifier     Notifier
	log          *logger.Logger
}

// NewCreateInvoiceUseCase construye el caso de uso.
func NewCreateInvoiceUseCase(
	limiter *ratelimit.Limiter,
	validator *Validator,
	queue *serializer.Serializer,
	writer *Writer,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	notifier Notifier,
	log *logger.Logger,
) *CreateInvoiceUseCase {
	return &CreateInvoiceUseCase{
		limiter:      limiter,
		validator:    validator,
		queue:        queue,
		writer:       writer,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		invoiceRepo:  invoiceRepo,
		notifier:     notifier,
		log:          log,
	}
}

// Execute procesa una propuesta de factura de punta a punta. El orden es
// estricto: tasa y validación corren fuera del serializador (no consumen el
// turno del escritor); disponibilidad y escritura corren con el turno tomado,
// así nada puede descontar stock entre el chequeo y el commit.
func (uc *CreateInvoiceUseCase) Execute(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := uc.limiter.Check(ratelimit.OpCreateInvoice); err != nil {
		metrics.RateLimited.Inc()
		return nil, err
	}

	v, err := uc.validator.Validate(req)
	if err != nil {
		metrics.ValidationRejected.Inc()
		return nil, err
	}

	opID := uuid.NewString()
	out, err := uc.queue.Enqueue(ctx, opID, func(ctx context.Context) (any, error) {
		customer, err := uc.customerRepo.GetByID(v.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("%w: cliente %d", domain.ErrNotFound, v.CustomerID)
		}
		if !customer.Active {
			return nil, domain.NewValidationError("customer_id", "el cliente está inactivo")
		}
		if _, err := CheckAvailability(uc.productRepo, v); err != nil {
			return nil, err
		}
		return uc.writer.Write(ctx, v, customer)
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			metrics.StockRejected.Inc()
		}
		return nil, err
	}

	res := out.(*CommitResult)
	metrics.InvoicesCreated.Inc()
	uc.log.Info().
		Str("op_id", opID).
		Str("bill_number", res.Invoice.BillNumber).
		Int64("customer_id", res.Customer.ID).
		Str("grand_total", res.Invoice.GrandTotal.String()).
		Msg("factura creada")

	uc.publishEvents(res)

	return invoiceToResponse(res.Invoice, res.Items), nil
}

// publishEvents emite los eventos de dominio después del commit. Son
// notificaciones best-effort: a esta altura la factura ya existe y ningún
// suscriptor puede deshacerla.
func (uc *CreateInvoiceUseCase) publishEvents(res *CommitResult) {
	uc.notifier.Publish("invoice_created", map[string]any{
		"invoice_id":        res.Invoice.ID,
		"bill_number":       res.Invoice.BillNumber,
		"customer_id":       res.Invoice.CustomerID,
		"grand_total":       res.Invoice.GrandTotal.String(),
		"remaining_balance": res.Invoice.RemainingBalance.String(),
	})
	for i, m := range res.Movements {
		p := res.Products[i]
		uc.notifier.Publish("stock_updated", map[string]any{
			"product_id":    p.ID,
			"movement_id":   m.ID,
			"current_stock": p.CurrentStock,
			"below_minimum": p.BelowMinimum(),
		})
	}
	if res.Ledger != nil {
		uc.notifier.Publish("customer_balance_updated", map[string]any{
			"customer_id": res.Customer.ID,
			"new_balance": res.Customer.Balance.String(),
		})
	}
}

// GetInvoice devuelve una factura con sus líneas.
func (uc *CreateInvoiceUseCase) GetInvoice(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %d", domain.ErrNotFound, id)
	}
	items, err := uc.invoiceRepo.GetItemsByInvoiceID(id)
	if err != nil {
		return nil, err
	}
	return invoiceToResponse(inv, items), nil
}

func invoiceToResponse(inv *entity.Invoice, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:               inv.ID,
		BillNumber:       inv.BillNumber,
		CustomerID:       inv.CustomerID,
		CustomerName:     inv.CustomerName,
		Subtotal:         inv.Subtotal,
		DiscountPercent:  inv.DiscountPercent,
		DiscountAmount:   inv.DiscountAmount,
		GrandTotal:       inv.GrandTotal,
		PaymentAmount:    inv.PaymentAmount,
		RemainingBalance: inv.RemainingBalance,
		PaymentMethod:    inv.PaymentMethod,
		PaymentStatus:    inv.PaymentStatus,
		Notes:            inv.Notes,
		Date:             inv.Date.Format("2006-01-02 15:04:05"),
		Items:            make([]dto.InvoiceItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp
}
