package billing_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func TestAllocate_CorrelativosSecuenciales(t *testing.T) {
	alloc := billing.NewNumberAllocator(newFakeSeqRepo())
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, number, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeBoleta, "B001")
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.Equal(t, sunat.FormatDocumentNumber("B001", i), number)
	}
}

func TestAllocate_SeriesIndependientes(t *testing.T) {
	alloc := billing.NewNumberAllocator(newFakeSeqRepo())
	ctx := context.Background()

	_, b1, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeBoleta, "B001")
	require.NoError(t, err)
	_, f1, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeFactura, "F001")
	require.NoError(t, err)

	// Cada serie lleva su propio contador desde 1.
	assert.Equal(t, "B001-00000001", b1)
	assert.Equal(t, "F001-00000001", f1)
}

func TestAllocate_SerieInvalidaNoConsumeCorrelativo(t *testing.T) {
	seqRepo := newFakeSeqRepo()
	alloc := billing.NewNumberAllocator(seqRepo)
	ctx := context.Background()

	// Serie de boleta para una factura: inválida.
	_, _, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeFactura, "B001")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El contador no se movió: la siguiente asignación válida empieza en 1.
	n, _, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeBoleta, "B001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAllocate_FalloDelContadorEsErrAllocation(t *testing.T) {
	seqRepo := newFakeSeqRepo()
	seqRepo.fail = assert.AnError
	alloc := billing.NewNumberAllocator(seqRepo)

	_, _, err := alloc.Allocate(context.Background(), testCompanyID, sunat.DocTypeBoleta, "B001")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAllocation)
}

// Dos emisores concurrentes sobre la misma serie nunca reciben el mismo
// correlativo.
func TestAllocate_ConcurrenciaSinDuplicados(t *testing.T) {
	alloc := billing.NewNumberAllocator(newFakeSeqRepo())
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, _, err := alloc.Allocate(ctx, testCompanyID, sunat.DocTypeBoleta, "B001")
			assert.NoError(t, err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool, workers)
	for n := range results {
		assert.False(t, seen[n], "correlativo %d repetido", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
}
