package billing

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
	"github.com/tu-usuario/steel-pos/pkg/logger"
)

// Tope de ids de entidades: por encima es un id corrupto, no un registro real.
const maxEntityID = int64(1) << 31

// ValidatorConfig límites configurables de la validación.
type ValidatorConfig struct {
	MaxItems        int             // líneas máximas por factura
	MaxInvoiceValue decimal.Decimal // techo del total de la factura
	NotesMaxLength  int             // longitud máxima de notas
	MaxNameLength   int             // longitud máxima del nombre de producto
}

// ValidatedItem línea ya validada, con la cantidad parseada al dominio numérico.
type ValidatedItem struct {
	ProductID   int64
	ProductName string
	Unit        quantity.Unit
	Quantity    quantity.Quantity
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// ValidatedInvoice factura propuesta con los totales ya computados según los
// invariantes: discount = round(subtotal * pct / 100), grand = subtotal -
// discount, remaining = grand - payment.
type ValidatedInvoice struct {
	CustomerID       int64
	Items            []ValidatedItem
	Subtotal         decimal.Decimal
	DiscountPercent  decimal.Decimal
	DiscountAmount   decimal.Decimal
	GrandTotal       decimal.Decimal
	PaymentAmount    decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentMethod    string
	PaymentStatus    string
	Notes            string
}

// Validator función pura sobre la factura propuesta: no toca la base de
// datos y falla rápido con ValidationError en la primera violación.
type Validator struct {
	cfg ValidatorConfig
	log *logger.Logger
}

// NewValidator construye el validador.
func NewValidator(cfg ValidatorConfig, log *logger.Logger) *Validator {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 100
	}
	if cfg.NotesMaxLength <= 0 {
		cfg.NotesMaxLength = 500
	}
	if cfg.MaxNameLength <= 0 {
		cfg.MaxNameLength = 200
	}
	return &Validator{cfg: cfg, log: log}
}

var (
	cien     = decimal.NewFromInt(100)
	centavo  = decimal.RequireFromString("0.01")
	unPorMil = decimal.RequireFromString("0.001")
)

// Validate revisa la estructura y las reglas de negocio de la propuesta y
// devuelve la factura normalizada con totales computados.
func (v *Validator) Validate(in dto.CreateInvoiceRequest) (*ValidatedInvoice, error) {
	if in.CustomerID <= 0 || in.CustomerID > maxEntityID {
		return nil, domain.NewValidationError("customer_id", "id de cliente fuera de rango")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la factura no tiene líneas")
	}
	if len(in.Items) > v.cfg.MaxItems {
		return nil, domain.NewValidationError("items", "demasiadas líneas en la factura")
	}

	items := make([]ValidatedItem, 0, len(in.Items))
	subtotal := decimal.Zero
	expectedSubtotal := decimal.Zero
	for i, it := range in.Items {
		if it.ProductID <= 0 || it.ProductID > maxEntityID {
			return nil, domain.NewValidationError(itemField(i, "product_id"), "id de producto fuera de rango")
		}
		if !it.Unit.Valid() {
			return nil, domain.NewValidationError(itemField(i, "unit"), "unidad desconocida")
		}
		if !it.UnitPrice.IsPositive() {
			return nil, domain.NewValidationError(itemField(i, "unit_price"), "el precio unitario debe ser mayor que cero")
		}
		if it.TotalPrice.IsNegative() {
			return nil, domain.NewValidationError(itemField(i, "total_price"), "el total de la línea no puede ser negativo")
		}
		name := strings.TrimSpace(it.ProductName)
		if name == "" || len(name) > v.cfg.MaxNameLength {
			return nil, domain.NewValidationError(itemField(i, "product_name"), "nombre de producto vacío o demasiado largo")
		}
		q, err := quantity.Parse(it.Quantity, it.Unit)
		if err != nil {
			return nil, domain.NewValidationError(itemField(i, "quantity"), err.Error())
		}
		if !q.IsPositive() {
			return nil, domain.NewValidationError(itemField(i, "quantity"), "la cantidad debe ser mayor que cero")
		}

		// Recalcular el total esperado de la línea. Un desvío mayor a la
		// tolerancia se registra pero no se rechaza: el invariante duro es
		// sobre el subtotal agregado.
		expected := it.UnitPrice.Mul(q.Value())
		if diff := it.TotalPrice.Sub(expected).Abs(); diff.GreaterThan(tolerance(expected)) {
			v.log.Warn().
				Int64("product_id", it.ProductID).
				Str("quantity", q.String()).
				Str("total_enviado", it.TotalPrice.String()).
				Str("total_esperado", expected.String()).
				Msg("total de línea no coincide con precio × cantidad")
		}

		subtotal = subtotal.Add(it.TotalPrice)
		expectedSubtotal = expectedSubtotal.Add(expected)
		items = append(items, ValidatedItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Unit:        it.Unit,
			Quantity:    q,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}

	// Invariante de agregado: la suma de líneas debe coincidir con el
	// subtotal dentro de max(0.01, 0.1%); desvíos mayores se rechazan.
	if diff := subtotal.Sub(expectedSubtotal).Abs(); diff.GreaterThan(tolerance(subtotal)) {
		return nil, domain.NewValidationError("subtotal", "la suma de líneas no coincide con precio × cantidad")
	}

	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(cien) {
		return nil, domain.NewValidationError("discount_percent", "el descuento debe estar entre 0 y 100")
	}
	discountAmount := subtotal.Mul(in.DiscountPercent).Div(cien).Round(2)
	grandTotal := subtotal.Sub(discountAmount)

	if grandTotal.IsZero() || grandTotal.IsNegative() {
		return nil, domain.NewValidationError("grand_total", "el total de la factura no puede ser cero")
	}
	if !v.cfg.MaxInvoiceValue.IsZero() && grandTotal.GreaterThan(v.cfg.MaxInvoiceValue) {
		return nil, domain.NewValidationError("grand_total", "el total de la factura supera el techo permitido")
	}

	if in.PaymentAmount.IsNegative() {
		return nil, domain.NewValidationError("payment_amount", "el pago no puede ser negativo")
	}
	if in.PaymentAmount.GreaterThan(grandTotal) {
		return nil, domain.NewValidationError("payment_amount", "el pago no puede superar el total")
	}
	remaining := grandTotal.Sub(in.PaymentAmount)

	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = "cash"
	}

	return &ValidatedInvoice{
		CustomerID:       in.CustomerID,
		Items:            items,
		Subtotal:         subtotal,
		DiscountPercent:  in.DiscountPercent,
		DiscountAmount:   discountAmount,
		GrandTotal:       grandTotal,
		PaymentAmount:    in.PaymentAmount,
		RemainingBalance: remaining,
		PaymentMethod:    method,
		PaymentStatus:    entity.DerivePaymentStatus(grandTotal, remaining),
		Notes:            v.sanitizeNotes(in.Notes),
	}, nil
}

// tolerance devuelve max(0.01, 0.1% de base).
func tolerance(base decimal.Decimal) decimal.Decimal {
	t := base.Abs().Mul(unPorMil)
	if t.LessThan(centavo) {
		return centavo
	}
	return t
}

func itemField(i int, field string) string {
	return "items[" + itoa(i) + "]." + field
}

func itoa(i int) string {
	return decimal.NewFromInt(int64(i)).String()
}

// Patrones de inyección de script que se eliminan de las notas.
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script[^>]*>`),
	regexp.MustCompile(`(?i)<\s*/\s*script\s*>`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
}

// sanitizeNotes elimina caracteres de control y patrones de script y recorta
// al largo máximo. Las notas nunca hacen fallar la factura.
func (v *Validator) sanitizeNotes(notes string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, notes)
	for _, re := range scriptPatterns {
		clean = re.ReplaceAllString(clean, "")
	}
	clean = strings.TrimSpace(clean)
	if runes := []rune(clean); len(runes) > v.cfg.NotesMaxLength {
		clean = string(runes[:v.cfg.NotesMaxLength])
	}
	return clean
}
