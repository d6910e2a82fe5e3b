package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores de la tubería de facturación electrónica. El RetryCoordinator decide
// la elegibilidad de reintento únicamente por el tipo del error (errors.Is/As),
// nunca inspeccionando mensajes.
var (
	// ErrAllocation el almacén de contadores no pudo emitir un correlativo.
	ErrAllocation = errors.New("no se pudo asignar el correlativo")
	// ErrPersistence fallo de almacenamiento después de consumir un número:
	// el caller debe poder detectar que hay un correlativo sin documento recuperable.
	ErrPersistence = errors.New("fallo de persistencia del comprobante")
	// ErrEmptyDocument el XML a firmar está vacío.
	ErrEmptyDocument = errors.New("documento XML vacío")
	// ErrCertificateNotFound la empresa no tiene certificado registrado.
	ErrCertificateNotFound = errors.New("certificado digital no encontrado")
	// ErrCertificateExpired el momento actual está fuera de [issuedAt, expiresAt].
	ErrCertificateExpired = errors.New("certificado digital fuera de vigencia")
	// ErrCertificateMismatch el certificado pertenece a otra empresa.
	ErrCertificateMismatch = errors.New("certificado digital de otra empresa")
	// ErrSigning fallo criptográfico al firmar.
	ErrSigning = errors.New("fallo al firmar el documento")
	// ErrAlreadySigned el comprobante ya tiene XML firmado; re-firmar invalida la auditoría.
	ErrAlreadySigned = errors.New("el comprobante ya está firmado")
	// ErrNoReceipt la respuesta del servicio no trae constancia (CDR).
	ErrNoReceipt = errors.New("respuesta sin constancia de recepción")
	// ErrReceiptPending la constancia es un ticket aún no resuelto; consultar de nuevo.
	ErrReceiptPending = errors.New("constancia pendiente de resolución (ticket)")
)

// TransientError error de transporte elegible para reintento (timeout, conexión caída).
type TransientError struct {
	Op  string // operación que falló (ej. "sendBill")
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("error transitorio en %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RemoteFaultError el servicio de SUNAT rechazó activamente la llamada
// (SOAP Fault: credenciales, payload malformado). Terminal, no se reintenta.
type RemoteFaultError struct {
	Code    string
	Message string
}

func (e *RemoteFaultError) Error() string {
	return fmt.Sprintf("fault del servicio SUNAT [%s]: %s", e.Code, e.Message)
}

// RejectsDocument indica si el código del fault cae en el rango 2000–3999 del
// catálogo de errores de SUNAT: errores de contenido del comprobante, que sí
// son un veredicto sobre el documento. Los códigos fuera del rango (0100–1999
// son fallas de credenciales o del sistema, 4000+ observaciones) no invalidan
// el comprobante y el número debe seguir disponible para reenvío.
func (e *RemoteFaultError) RejectsDocument() bool {
	code := e.Code
	// El faultcode puede llegar calificado: "soap-env:Client.2335".
	if i := strings.LastIndexAny(code, ".:"); i >= 0 {
		code = code[i+1:]
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= 2000 && n <= 3999
}

// IsTransient indica si el error (o alguno en su cadena) es un TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
