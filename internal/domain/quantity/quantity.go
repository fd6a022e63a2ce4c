// Package quantity implementa el codec de cantidades con unidad: convierte
// strings legibles ("10 kg 500 g", "25 pcs") a un valor numérico comparable
// y de vuelta a su forma canónica. Toda la aritmética de stock se hace sobre
// el valor numérico; los strings solo viven en el borde (columnas, UI).
package quantity

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
)

// Unit tipo de unidad de un producto.
type Unit string

const (
	// UnitWeight peso: kilogramos con subunidad en gramos.
	UnitWeight Unit = "kg-g"
	// UnitCount unidades discretas (piezas, varillas, láminas).
	UnitCount Unit = "pcs"
)

// Valid indica si la unidad es una de las soportadas.
func (u Unit) Valid() bool {
	return u == UnitWeight || u == UnitCount
}

// MalformedQuantityError el string no coincide con el patrón esperado para la unidad.
type MalformedQuantityError struct {
	Input string
	Unit  Unit
}

func (e *MalformedQuantityError) Error() string {
	return fmt.Sprintf("cantidad mal formada %q para unidad %s", e.Input, e.Unit)
}

// Quantity valor numérico comparable de una cantidad con unidad.
// Para peso el valor interno son kilogramos (con fracción de gramos exacta);
// para conteo, unidades enteras.
type Quantity struct {
	unit  Unit
	value decimal.Decimal
}

var (
	// "10 kg", "10 kg 500 g", "500 g" (espacios opcionales alrededor del sufijo)
	weightPattern = regexp.MustCompile(`^\s*(?:(\d+)\s*kg)?\s*(?:(\d{1,3})\s*g)?\s*$`)
	// "25" o "25 pcs"
	countPattern = regexp.MustCompile(`^\s*(\d+)\s*(?:pcs)?\s*$`)
)

var thousand = decimal.NewFromInt(1000)

// Parse convierte un string de cantidad al valor numérico según la unidad.
// Falla con *MalformedQuantityError si el string no coincide con el patrón.
func Parse(s string, unit Unit) (Quantity, error) {
	switch unit {
	case UnitWeight:
		m := weightPattern.FindStringSubmatch(s)
		if m == nil || (m[1] == "" && m[2] == "") {
			return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
		}
		var kg, g int64
		if m[1] != "" {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
			}
			kg = n
		}
		if m[2] != "" {
			n, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil || n > 999 {
				return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
			}
			g = n
		}
		v := decimal.NewFromInt(kg).Add(decimal.NewFromInt(g).Div(thousand))
		return Quantity{unit: unit, value: v}, nil
	case UnitCount:
		m := countPattern.FindStringSubmatch(s)
		if m == nil {
			return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
		}
		return Quantity{unit: unit, value: decimal.NewFromInt(n)}, nil
	default:
		return Quantity{}, &MalformedQuantityError{Input: s, Unit: unit}
	}
}

// FromValue construye una cantidad desde un valor numérico ya en el dominio
// interno (kg para peso, unidades para conteo). Valores negativos se aceptan
// solo como resultado intermedio de una resta; el motor nunca los persiste.
func FromValue(v decimal.Decimal, unit Unit) Quantity {
	return Quantity{unit: unit, value: v}
}

// Format devuelve la forma canónica del valor para la unidad.
// Es la inversa por la izquierda de Parse para strings canónicos.
func Format(v decimal.Decimal, unit Unit) string {
	return Quantity{unit: unit, value: v}.String()
}

// Unit unidad de la cantidad.
func (q Quantity) Unit() Unit { return q.unit }

// Value valor numérico (kg para peso, unidades para conteo).
func (q Quantity) Value() decimal.Decimal { return q.value }

// String forma canónica: "10 kg 500 g" / "6 kg" / "25 pcs".
func (q Quantity) String() string {
	switch q.unit {
	case UnitWeight:
		kg := q.value.Truncate(0)
		g := q.value.Sub(kg).Mul(thousand).Round(0)
		if g.IsZero() {
			return fmt.Sprintf("%s kg", kg.String())
		}
		if kg.IsZero() {
			return fmt.Sprintf("%s g", g.String())
		}
		return fmt.Sprintf("%s kg %s g", kg.String(), g.String())
	default:
		return fmt.Sprintf("%s pcs", q.value.String())
	}
}

// Add suma dos cantidades de la misma unidad.
func (q Quantity) Add(o Quantity) Quantity {
	return Quantity{unit: q.unit, value: q.value.Add(o.value)}
}

// Sub resta otra cantidad de la misma unidad.
func (q Quantity) Sub(o Quantity) Quantity {
	return Quantity{unit: q.unit, value: q.value.Sub(o.value)}
}

// Cmp compara valores: -1 si q < o, 0 si iguales, 1 si q > o.
func (q Quantity) Cmp(o Quantity) int { return q.value.Cmp(o.value) }

// GreaterThan true si q > o.
func (q Quantity) GreaterThan(o Quantity) bool { return q.value.GreaterThan(o.value) }

// IsZero true si el valor es exactamente cero.
func (q Quantity) IsZero() bool { return q.value.IsZero() }

// IsNegative true si el valor es negativo.
func (q Quantity) IsNegative() bool { return q.value.IsNegative() }

// IsPositive true si el valor es mayor que cero.
func (q Quantity) IsPositive() bool { return q.value.IsPositive() }
