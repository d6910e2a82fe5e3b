package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// NumberAllocator reserva correlativos por (empresa, tipo, serie).
// El incremento se delega al repositorio, que lo hace en una sola sentencia
// atómica: dos peticiones concurrentes sobre la misma serie nunca reciben
// el mismo correlativo.
type NumberAllocator struct {
	seqRepo repository.SequenceRepository
}

// NewNumberAllocator construye el asignador.
func NewNumberAllocator(seqRepo repository.SequenceRepository) *NumberAllocator {
	return &NumberAllocator{seqRepo: seqRepo}
}

// Allocate valida la serie contra el tipo de comprobante y reserva el
// siguiente correlativo. Devuelve el correlativo y el número formateado
// (SERIE-00000001). Una serie inválida falla antes de tocar el contador.
func (a *NumberAllocator) Allocate(ctx context.Context, companyID, docType, series string) (int64, string, error) {
	if err := sunat.ValidateSeries(docType, series); err != nil {
		return 0, "", errors.Join(domain.ErrInvalidInput, err)
	}
	n, err := a.seqRepo.AtomicIncrement(ctx, companyID, docType, series)
	if err != nil {
		return 0, "", errors.Join(domain.ErrAllocation, fmt.Errorf("reservar correlativo %s %s: %w", docType, series, err))
	}
	return n, sunat.FormatDocumentNumber(series, n), nil
}
