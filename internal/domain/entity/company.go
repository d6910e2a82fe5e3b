package entity

import "time"

// Company representa una empresa emisora (tenant). Cada empresa tiene sus
// propias series, certificado y credenciales SOL; nunca se cruzan entre tenants.
type Company struct {
	ID           string
	RUC          string // 11 dígitos con dígito verificador
	BusinessName string // razón social
	TradeName    string // nombre comercial (opcional)
	Address      string
	Ubigeo       string // código de ubicación geográfica (opcional)
	Email        string
	Status       string // active, suspended, inactive

	// Credenciales SOL (Clave SOL) para el billService de SUNAT.
	// El Username del WS-Security es RUC + SOLUser concatenados sin separador.
	SOLUser     string
	SOLPassword string

	CreatedAt time.Time
	UpdatedAt time.Time
}
