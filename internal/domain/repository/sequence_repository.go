package repository

import "context"

// SequenceRepository puerto del contador correlativo.
type SequenceRepository interface {
	// AtomicIncrement incrementa en uno el contador de (companyID, docType, series)
	// y devuelve el valor resultante. La mutación debe ser una única operación
	// atómica del almacén (ej. UPDATE ... RETURNING en una sentencia): dos
	// invocaciones concurrentes jamás reciben el mismo correlativo, y ningún
	// número se considera emitido sin que el incremento esté confirmado.
	AtomicIncrement(ctx context.Context, companyID, docType, series string) (int64, error)

	// Current devuelve el último correlativo emitido (0 si la serie no existe aún).
	Current(ctx context.Context, companyID, docType, series string) (int64, error)
}
