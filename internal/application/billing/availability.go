package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

// CheckAvailability verifica, solo con lecturas, que el stock de cada
// producto alcanza para la suma de sus líneas (una factura puede repetir el
// mismo producto). Corre después de tomar el turno en el serializador: como
// solo hay un escritor en vuelo, nada puede descontar stock entre este
// chequeo y la transacción de escritura. Se revisan todos los productos antes
// de escribir nada: una falla acá garantiza cero mutación.
func CheckAvailability(products repository.ProductRepository, inv *ValidatedInvoice) (map[int64]*entity.Product, error) {
	byID := make(map[int64]*entity.Product, len(inv.Items))
	required := make(map[int64]quantity.Quantity, len(inv.Items))
	order := make([]int64, 0, len(inv.Items))
	for _, it := range inv.Items {
		p, seen := byID[it.ProductID]
		if !seen {
			var err error
			p, err = products.GetByID(it.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, it.ProductID)
			}
			byID[p.ID] = p
			required[p.ID] = quantity.FromValue(decimal.Zero, p.Unit)
			order = append(order, p.ID)
		}
		if p.Unit != it.Unit {
			return nil, domain.NewValidationError("unit",
				fmt.Sprintf("la unidad %q no coincide con la del producto %q", it.Unit, p.Unit))
		}
		required[p.ID] = required[p.ID].Add(it.Quantity)
	}
	for _, id := range order {
		p := byID[id]
		available := p.StockQuantity()
		if required[id].GreaterThan(available) {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   available,
				Required:    required[id],
			}
		}
	}
	return byID, nil
}
