package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/tu-usuario/steel-pos/internal/domain"
)

// isTransient verifica si un error del motor es contención transitoria
// (lock ocupado o timeout de lock), elegible para reintento acotado.
func isTransient(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// isUniqueViolation verifica si un error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify envuelve contención transitoria con ErrTransactionConflict para
// que el escritor decida el reintento sin importar el driver.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %s", domain.ErrTransactionConflict, err)
	}
	return err
}
