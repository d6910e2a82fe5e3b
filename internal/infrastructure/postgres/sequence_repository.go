package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación del contador correlativo sobre PostgreSQL.
// El incremento es una sola sentencia con RETURNING: la atomicidad la da el
// motor, sin SELECT previo ni transacción explícita.
type SequenceRepo struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository construye el adaptador del contador.
func NewSequenceRepository(pool *pgxpool.Pool) *SequenceRepo {
	return &SequenceRepo{pool: pool}
}

// AtomicIncrement incrementa y devuelve el correlativo de (empresa, tipo, serie).
// El UPSERT crea la fila en 1 si la serie no existe todavía; dos llamadas
// concurrentes serializan sobre el lock de fila y nunca devuelven el mismo valor.
func (r *SequenceRepo) AtomicIncrement(ctx context.Context, companyID, docType, series string) (int64, error) {
	const query = `
		INSERT INTO document_sequences (company_id, doc_type, series, last_value, created_at, updated_at)
		VALUES ($1, $2, $3, 1, now(), now())
		ON CONFLICT (company_id, doc_type, series)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.pool.QueryRow(ctx, query, companyID, docType, series).Scan(&n); err != nil {
		return 0, fmt.Errorf("increment sequence %s/%s: %w", docType, series, err)
	}
	return n, nil
}

// Current devuelve el último correlativo emitido, 0 si la serie no existe.
func (r *SequenceRepo) Current(ctx context.Context, companyID, docType, series string) (int64, error) {
	const query = `
		SELECT last_value FROM document_sequences
		 WHERE company_id = $1 AND doc_type = $2 AND series = $3`
	var n int64
	err := r.pool.QueryRow(ctx, query, companyID, docType, series).Scan(&n)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get sequence %s/%s: %w", docType, series, err)
	}
	return n, nil
}
