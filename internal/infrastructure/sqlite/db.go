// Package sqlite implementa los adaptadores de persistencia sobre la base
// embebida. Un solo escritor lógico: la conexión se limita a 1 y los writers
// abren transacciones en modo inmediato (el lock de escritura se toma al
// abrir, no de forma optimista al primer statement).
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Open abre (o crea) la base SQLite en path con los pragmas del motor:
//   - WAL para que los lectores avancen durante una escritura encolada
//   - busy_timeout como tope de espera por statement
//   - foreign keys activas (cascada de invoice_items)
//   - _txlock=immediate: semántica begin-immediate para todos los writers
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir base de datos: %w", err)
	}

	// SQLite admite un escritor a la vez: una sola conexión evita
	// SQLITE_BUSY entre statements del propio proceso.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("verificar conexión: %w", err)
	}
	return db, nil
}

// ApplySchema crea las tablas e índices en una base recién creada. Es
// idempotente (IF NOT EXISTS); la reparación de bases existentes con esquemas
// viejos no es asunto de este motor.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
