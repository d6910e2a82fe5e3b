package entity

import "time"

// Certificate certificado de firma digital de una empresa. El material
// (PEM con certificado+llave, o PKCS#12) se guarda tal cual se subió.
//
// IssuedAt/ExpiresAt/Authority son datos autoritativos capturados al registrar
// el certificado; el firmador valida la vigencia contra estos campos y solo
// decodifica el material para producir la firma.
type Certificate struct {
	ID        string
	CompanyID string
	Material  []byte // PEM o PKCS#12
	Password  string // contraseña del .p12; vacía para PEM sin cifrar
	Authority string // entidad certificadora emisora
	IssuedAt  time.Time
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidAt indica si el certificado está dentro de su ventana de vigencia.
func (c *Certificate) ValidAt(t time.Time) bool {
	return !t.Before(c.IssuedAt) && !t.After(c.ExpiresAt)
}
