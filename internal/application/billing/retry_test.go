package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
)

// backoff corto para que los tests no esperen.
var testBackoff = []time.Duration{time.Millisecond}

func TestExecuteWithRetry_ExitoAlPrimerIntento(t *testing.T) {
	retry := billing.NewRetryCoordinator(3, testBackoff)

	result, err := retry.ExecuteWithRetry(context.Background(), func(context.Context) (*entity.Receipt, error) {
		return acceptedReceipt(), nil
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalAttempts)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, entity.RespuestaAceptada, result.Receipt.ResponseCode)
}

func TestExecuteWithRetry_TransitorioSeReintentaHastaExito(t *testing.T) {
	retry := billing.NewRetryCoordinator(4, testBackoff)

	calls := 0
	result, err := retry.ExecuteWithRetry(context.Background(), func(context.Context) (*entity.Receipt, error) {
		calls++
		if calls < 3 {
			return nil, &domain.TransientError{Op: "sendBill", Err: assert.AnError}
		}
		return acceptedReceipt(), nil
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalAttempts)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_ErrorTerminalNoSeReintenta(t *testing.T) {
	retry := billing.NewRetryCoordinator(4, testBackoff)

	fault := &domain.RemoteFaultError{Code: "0102", Message: "credenciales inválidas"}
	calls := 0
	result, err := retry.ExecuteWithRetry(context.Background(), func(context.Context) (*entity.Receipt, error) {
		calls++
		return nil, fault
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "un fault no debe reintentarse")
	assert.False(t, result.Success)

	var got *domain.RemoteFaultError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "0102", got.Code)
}

func TestExecuteWithRetry_AgotamientoNoEsError(t *testing.T) {
	retry := billing.NewRetryCoordinator(3, testBackoff)

	calls := 0
	result, err := retry.ExecuteWithRetry(context.Background(), func(context.Context) (*entity.Receipt, error) {
		calls++
		return nil, &domain.TransientError{Op: "sendBill", Err: assert.AnError}
	})
	// Agotar la ronda devuelve resultado, no error: el caller decide el estado.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.TotalAttempts)
	assert.Equal(t, 3, calls)
	assert.Error(t, result.LastErr)
}

func TestExecuteWithRetry_CancelacionDelContexto(t *testing.T) {
	retry := billing.NewRetryCoordinator(5, []time.Duration{time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := retry.ExecuteWithRetry(ctx, func(context.Context) (*entity.Receipt, error) {
		return nil, &domain.TransientError{Op: "sendBill", Err: assert.AnError}
	})
	assert.ErrorIs(t, err, context.Canceled)
}
