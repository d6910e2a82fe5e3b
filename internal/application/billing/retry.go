package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// DefaultMaxAttempts intentos totales por envío (el primero incluido).
const DefaultMaxAttempts = 4

// defaultBackoff esperas entre intentos; el último valor se repite si hay
// más intentos que entradas.
var defaultBackoff = []time.Duration{
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

// SubmitFunc un intento de envío. Devuelve el recibo o un error; la
// elegibilidad de reintento se decide únicamente por el tipo del error.
type SubmitFunc func(ctx context.Context) (*entity.Receipt, error)

// RetryResult resultado de una ronda de envíos.
type RetryResult struct {
	Success       bool
	Receipt       *entity.Receipt
	TotalAttempts int
	LastErr       error // último error transitorio; nil si Success
}

// RetryCoordinator ejecuta envíos con reintentos acotados. Solo reintenta
// errores transitorios (domain.IsTransient); cualquier otro error se devuelve
// de inmediato. El agotamiento de intentos NO es un error: devuelve un
// resultado con Success == false y el caller decide qué estado persistir.
type RetryCoordinator struct {
	maxAttempts int
	backoff     []time.Duration
}

// NewRetryCoordinator construye el coordinador. Con maxAttempts <= 0 o
// backoff vacío se usan los valores por defecto.
func NewRetryCoordinator(maxAttempts int, backoff []time.Duration) *RetryCoordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if len(backoff) == 0 {
		backoff = defaultBackoff
	}
	return &RetryCoordinator{maxAttempts: maxAttempts, backoff: backoff}
}

// ExecuteWithRetry ejecuta op hasta maxAttempts veces. Entre intentos espera
// el backoff correspondiente, abortando si el contexto se cancela.
func (r *RetryCoordinator) ExecuteWithRetry(ctx context.Context, op SubmitFunc) (*RetryResult, error) {
	result := &RetryResult{}
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result.TotalAttempts = attempt

		receipt, err := op(ctx)
		if err == nil {
			result.Success = true
			result.Receipt = receipt
			return result, nil
		}
		if !domain.IsTransient(err) {
			return result, err
		}
		result.LastErr = err
		log.Warn().Err(err).Int("intento", attempt).Int("max", r.maxAttempts).
			Msg("envío transitoriamente fallido")

		if attempt == r.maxAttempts {
			break
		}
		if err := r.wait(ctx, attempt-1); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *RetryCoordinator) wait(ctx context.Context, idx int) error {
	if idx >= len(r.backoff) {
		idx = len(r.backoff) - 1
	}
	t := time.NewTimer(r.backoff[idx])
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
