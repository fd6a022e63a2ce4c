package billing_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/steel-pos/internal/application/billing"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/application/ratelimit"
	"github.com/tu-usuario/steel-pos/internal/application/serializer"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
	"github.com/tu-usuario/steel-pos/internal/infrastructure/sqlite"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// recordingNotifier acumula los eventos publicados para verificarlos.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name    string
	payload map[string]any
}

func (n *recordingNotifier) Publish(name string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{name: name, payload: payload})
}

type engineFixture struct {
	db       *sql.DB
	uc       *billing.CreateInvoiceUseCase
	queue    *serializer.Serializer
	notifier *recordingNotifier
}

func newEngine(t *testing.T, txRunner billing.BillingTxRunner, db *sql.DB) *engineFixture {
	t.Helper()
	log := logger.NewNop()

	limiter := ratelimit.New(1000, time.Minute)
	validator := billing.NewValidator(billing.ValidatorConfig{
		MaxItems:        100,
		MaxInvoiceValue: decimal.NewFromInt(10_000_000),
		NotesMaxLength:  500,
		MaxNameLength:   200,
	}, log)
	queue := serializer.New(serializer.Config{
		QueueSize:        64,
		AdmissionTimeout: 5 * time.Second,
	}, log, nil)
	t.Cleanup(queue.Close)
	writer := billing.NewWriter(txRunner, billing.WriterConfig{
		BillPrefix:   "INV",
		TxAttempts:   3,
		TxBackoff:    5 * time.Millisecond,
		BillAttempts: 10,
	}, log)
	notifier := &recordingNotifier{}
	uc := billing.NewCreateInvoiceUseCase(
		limiter, validator, queue, writer,
		sqlite.NewCustomerRepository(db),
		sqlite.NewProductRepository(db),
		sqlite.NewInvoiceRepository(db),
		notifier, log,
	)
	return &engineFixture{db: db, uc: uc, queue: queue, notifier: notifier}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "engine_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.ApplySchema(db))
	return db
}

func seed(t *testing.T, db *sql.DB, stock string, stockValue float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO products (name, unit, current_stock, stock_value, min_stock, min_stock_value, unit_price)
		VALUES ('Varilla 3/8', 'kg-g', ?, ?, '2 kg', 2, 4000)`, stock, stockValue)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO customers (name, balance, active) VALUES ('Ferretería El Martillo', 0, 1)`)
	require.NoError(t, err)
}

func saleRequest(kg int64, unitPrice int64) dto.CreateInvoiceRequest {
	qty := decimal.NewFromInt(kg)
	return dto.CreateInvoiceRequest{
		CustomerID: 1,
		Items: []dto.InvoiceItemRequest{
			{
				ProductID:   1,
				ProductName: "Varilla 3/8",
				Unit:        quantity.UnitWeight,
				Quantity:    qty.String() + " kg",
				UnitPrice:   decimal.NewFromInt(unitPrice),
				TotalPrice:  qty.Mul(decimal.NewFromInt(unitPrice)),
			},
		},
		PaymentAmount: qty.Mul(decimal.NewFromInt(unitPrice)),
	}
}

func TestEngine_VentaCompleta(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "10 kg", 10)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	resp, err := fx.uc.Execute(context.Background(), saleRequest(3, 4000))
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", resp.BillNumber)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(12000)))
	assert.Equal(t, "paid", resp.PaymentStatus)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "3 kg", resp.Items[0].Quantity)

	// Stock descontado y snapshot de auditoría coherente.
	p, err := sqlite.NewProductRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "7 kg", p.CurrentStock)

	movements, err := sqlite.NewStockMovementRepository(db).ListByInvoiceID(resp.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "10 kg", movements[0].PreviousStock)
	assert.Equal(t, "7 kg", movements[0].NewStock)
	assert.Equal(t, "INV-000001", movements[0].ReferenceNumber)

	// Pago completo: el saldo del cliente no cambia pero el asiento queda.
	entries, err := sqlite.NewLedgerRepository(db).ListByCustomerID(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(12000)))
	assert.True(t, entries[0].Balance.IsZero())

	// Eventos post-commit en orden: factura, stock, saldo.
	require.Len(t, fx.notifier.events, 3)
	assert.Equal(t, "invoice_created", fx.notifier.events[0].name)
	assert.Equal(t, "stock_updated", fx.notifier.events[1].name)
	assert.Equal(t, "customer_balance_updated", fx.notifier.events[2].name)
	assert.Equal(t, false, fx.notifier.events[1].payload["below_minimum"])
}

// Pedir más de lo disponible falla sin tocar nada: ni factura ni descuento.
func TestEngine_StockInsuficiente(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "6 kg", 6)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	_, err := fx.uc.Execute(context.Background(), saleRequest(10, 100))
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "6 kg", stockErr.Available.String())
	assert.Equal(t, "10 kg", stockErr.Required.String())

	p, err := sqlite.NewProductRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "6 kg", p.CurrentStock)
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&count))
	assert.Zero(t, count)
	assert.Empty(t, fx.notifier.events)
}

// Dos líneas del mismo producto se suman antes de comparar contra el stock:
// la factura completa se rechaza aunque cada línea quepa por separado.
func TestEngine_LineasRepetidasAgregadas(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "6 kg", 6)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	line := dto.InvoiceItemRequest{
		ProductID:   1,
		ProductName: "Varilla 3/8",
		Unit:        quantity.UnitWeight,
		Quantity:    "4 kg",
		UnitPrice:   decimal.NewFromInt(4000),
		TotalPrice:  decimal.NewFromInt(16000),
	}
	req := dto.CreateInvoiceRequest{
		CustomerID:    1,
		Items:         []dto.InvoiceItemRequest{line, line},
		PaymentAmount: decimal.NewFromInt(32000),
	}

	_, err := fx.uc.Execute(context.Background(), req)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "6 kg", stockErr.Available.String())
	assert.Equal(t, "8 kg", stockErr.Required.String())

	// El rechazo ocurre antes de escribir: nada queda persistido.
	p, err := sqlite.NewProductRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "6 kg", p.CurrentStock)
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&count))
	assert.Zero(t, count)
	assert.Empty(t, fx.notifier.events)
}

// Ventas concurrentes sobre el mismo producto: el serializador garantiza que
// el stock jamás queda negativo y que cada número de factura es único.
func TestEngine_ConcurrenciaSinSobreventa(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "10 kg", 10)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	const callers = 4
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.uc.Execute(context.Background(), saleRequest(3, 4000))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "3 kg", stockErr.Required.String())
		insufficient++
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, insufficient)

	p, err := sqlite.NewProductRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "1 kg", p.CurrentStock)

	// Números únicos y consecutivos.
	rows, err := db.Query(`SELECT bill_number FROM invoices ORDER BY bill_number`)
	require.NoError(t, err)
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		numbers = append(numbers, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"INV-000001", "INV-000002", "INV-000003"}, numbers)
}

// failingLedgerRunner delega en el runner real pero hace fallar el asiento
// del ledger, para verificar que el rollback no deja rastros parciales.
type failingLedgerRunner struct {
	inner billing.BillingTxRunner
}

type failingLedgerRepo struct {
	repository.LedgerRepository
}

func (f *failingLedgerRepo) Create(_ *entity.LedgerEntry) error {
	return errors.New("disco lleno")
}

func (f *failingLedgerRunner) RunBilling(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	movementRepo repository.StockMovementRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return f.inner.RunBilling(ctx, func(
		productRepo repository.ProductRepository,
		customerRepo repository.CustomerRepository,
		invoiceRepo repository.InvoiceRepository,
		movementRepo repository.StockMovementRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		return fn(productRepo, customerRepo, invoiceRepo, movementRepo, &failingLedgerRepo{LedgerRepository: ledgerRepo})
	})
}

func TestEngine_RollbackSinRastros(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "10 kg", 10)
	fx := newEngine(t, &failingLedgerRunner{inner: sqlite.NewTxRunner(db)}, db)

	_, err := fx.uc.Execute(context.Background(), saleRequest(3, 4000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disco lleno")

	// Nada quedó escrito: ni factura, ni líneas, ni movimiento, ni descuento.
	for _, q := range []string{
		`SELECT COUNT(*) FROM invoices`,
		`SELECT COUNT(*) FROM invoice_items`,
		`SELECT COUNT(*) FROM stock_movements`,
		`SELECT COUNT(*) FROM ledger_entries`,
	} {
		var count int
		require.NoError(t, db.QueryRow(q).Scan(&count))
		assert.Zero(t, count, q)
	}
	p, err := sqlite.NewProductRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "10 kg", p.CurrentStock)
	assert.Empty(t, fx.notifier.events)
}

// Venta con descuento y pago parcial: la aritmética persiste exacta y el
// saldo del cliente crece por lo pendiente.
func TestEngine_DescuentoYPagoParcial(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "100 kg", 100)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	req := saleRequest(10, 4000) // subtotal 40000
	req.DiscountPercent = decimal.RequireFromString("7.5")
	req.PaymentAmount = decimal.NewFromInt(20000)

	resp, err := fx.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// 40000 * 7.5% = 3000; total 37000; pendiente 17000.
	assert.True(t, resp.DiscountAmount.Equal(decimal.NewFromInt(3000)), "descuento: %s", resp.DiscountAmount)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(37000)))
	assert.True(t, resp.RemainingBalance.Equal(decimal.NewFromInt(17000)))
	assert.Equal(t, "partial", resp.PaymentStatus)

	c, err := sqlite.NewCustomerRepository(db).GetByID(1)
	require.NoError(t, err)
	assert.True(t, c.Balance.Equal(decimal.NewFromInt(17000)), "saldo: %s", c.Balance)

	entries, err := sqlite.NewLedgerRepository(db).ListByCustomerID(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PaymentAmount.Equal(decimal.NewFromInt(20000)))
	assert.True(t, entries[0].Balance.Equal(decimal.NewFromInt(17000)))

	// La lectura devuelve lo mismo que la creación.
	read, err := fx.uc.GetInvoice(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.BillNumber, read.BillNumber)
	assert.True(t, read.GrandTotal.Equal(resp.GrandTotal))
	require.Len(t, read.Items, 1)
}

func TestEngine_ClienteInactivo(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "10 kg", 10)
	_, err := db.Exec(`UPDATE customers SET active = 0 WHERE id = 1`)
	require.NoError(t, err)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	_, err = fx.uc.Execute(context.Background(), saleRequest(1, 4000))
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "customer_id", vErr.Field)
	assert.Empty(t, fx.notifier.events)
}

func TestEngine_ClienteInexistente(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "10 kg", 10)
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	req := saleRequest(1, 4000)
	req.CustomerID = 99
	_, err := fx.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// Colisión de número de factura: filas preexistentes por encima del conteo
// fuerzan regeneraciones hasta encontrar uno libre.
func TestEngine_ColisionDeNumero(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "100 kg", 100)
	for _, n := range []string{"INV-000002", "INV-000003"} {
		_, err := db.Exec(`INSERT INTO invoices
			(bill_number, customer_id, customer_name, subtotal, grand_total, remaining_balance, payment_status, date)
			VALUES (?, 1, 'Ferretería El Martillo', 100, 100, 0, 'paid', CURRENT_TIMESTAMP)`, n)
		require.NoError(t, err)
	}
	fx := newEngine(t, sqlite.NewTxRunner(db), db)

	// Conteo 2 -> candidato INV-000003 (colisiona) -> INV-000004 libre.
	resp, err := fx.uc.Execute(context.Background(), saleRequest(1, 4000))
	require.NoError(t, err)
	assert.Equal(t, "INV-000004", resp.BillNumber)
}

func TestEngine_NumeracionAgotada(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, "100 kg", 100)
	for _, n := range []string{"INV-000004", "INV-000005"} {
		_, err := db.Exec(`INSERT INTO invoices
			(bill_number, customer_id, customer_name, subtotal, grand_total, remaining_balance, payment_status, date)
			VALUES (?, 1, 'Ferretería El Martillo', 100, 100, 0, 'paid', CURRENT_TIMESTAMP)`, n)
		require.NoError(t, err)
	}
	_, err := db.Exec(`INSERT INTO invoices
		(bill_number, customer_id, customer_name, subtotal, grand_total, remaining_balance, payment_status, date)
		VALUES ('INV-000003', 1, 'Ferretería El Martillo', 100, 100, 0, 'paid', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	log := logger.NewNop()
	writer := billing.NewWriter(sqlite.NewTxRunner(db), billing.WriterConfig{
		BillPrefix:   "INV",
		TxAttempts:   1,
		BillAttempts: 2,
	}, log)
	validator := billing.NewValidator(billing.ValidatorConfig{MaxItems: 10}, log)
	v, err := validator.Validate(saleRequest(1, 4000))
	require.NoError(t, err)
	customer, err := sqlite.NewCustomerRepository(db).GetByID(1)
	require.NoError(t, err)

	// Conteo 3 -> candidatos INV-000004 e INV-000005, ambos tomados.
	_, err = writer.Write(context.Background(), v, customer)
	require.ErrorIs(t, err, domain.ErrBillNumberExhausted)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&count))
	assert.Equal(t, 3, count, "el intento fallido no debe dejar factura")
}
