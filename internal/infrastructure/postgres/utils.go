package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nextSequence incrementa atómicamente el contador nombrado y devuelve el
// número formateado con el prefijo (ej. DLV-000042). El UPSERT con RETURNING
// es seguro bajo concurrencia: cada caller recibe un valor distinto.
func nextSequence(q Querier, name, prefix string) (string, error) {
	query := `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var n int64
	if err := q.QueryRow(context.Background(), query, name).Scan(&n); err != nil {
		return "", fmt.Errorf("next sequence %s: %w", name, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}
