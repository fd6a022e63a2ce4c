package billing

import (
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

// CatalogUseCase lecturas de catálogo para la UI (productos y clientes).
// Solo lecturas: no pasa por el serializador ni abre transacciones.
type CatalogUseCase struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(productRepo repository.ProductRepository, customerRepo repository.CustomerRepository) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo, customerRepo: customerRepo}
}

// GetProduct devuelve un producto con su stock actual.
func (uc *CatalogUseCase) GetProduct(id int64) (*dto.ProductResponse, error) {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Unit:         p.Unit,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		UnitPrice:    p.UnitPrice,
		BelowMinimum: p.BelowMinimum(),
	}, nil
}

// GetCustomer devuelve un cliente con su saldo corriente.
func (uc *CatalogUseCase) GetCustomer(id int64) (*dto.CustomerResponse, error) {
	c, err := uc.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: cliente %d", domain.ErrNotFound, id)
	}
	return &dto.CustomerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Balance: c.Balance,
		Active:  c.Active,
	}, nil
}
