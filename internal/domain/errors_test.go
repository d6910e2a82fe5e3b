package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
)

// Solo el rango 2000–3999 del catálogo de errores de SUNAT invalida el
// comprobante; credenciales/sistema (0100–1999) y observaciones (4000+) no.
func TestRemoteFault_RejectsDocument(t *testing.T) {
	cases := []struct {
		name    string
		code    string
		rejects bool
	}{
		{"error de contenido", "2335", true},
		{"inicio del rango", "2000", true},
		{"fin del rango", "3999", true},
		{"faultcode calificado", "soap-env:Client.2987", true},
		{"credenciales incorrectas", "0102", false},
		{"credenciales con prefijo", "soap-env:Client.0102", false},
		{"error del sistema", "0138", false},
		{"observación", "4000", false},
		{"estado HTTP sintético", "HTTP-403", false},
		{"código vacío", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fault := &domain.RemoteFaultError{Code: tc.code, Message: "detalle"}
			assert.Equal(t, tc.rejects, fault.RejectsDocument())
		})
	}
}

func TestIsTransient(t *testing.T) {
	te := &domain.TransientError{Op: "sendBill", Err: errors.New("timeout")}
	assert.True(t, domain.IsTransient(te))
	assert.True(t, domain.IsTransient(errors.Join(errors.New("envoltura"), te)))
	assert.False(t, domain.IsTransient(&domain.RemoteFaultError{Code: "0102"}))
	assert.False(t, domain.IsTransient(nil))
}
