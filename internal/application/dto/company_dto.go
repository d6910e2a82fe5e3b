package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa emisora.
type CreateCompanyRequest struct {
	RUC          string `json:"ruc" validate:"required,len=11"`
	BusinessName string `json:"business_name" validate:"required,min=1,max=200"`
	TradeName    string `json:"trade_name"`
	Address      string `json:"address"`
	Ubigeo       string `json:"ubigeo"`
	Email        string `json:"email" validate:"omitempty,email"`
	SOLUser      string `json:"sol_user" validate:"required"`
	SOLPassword  string `json:"sol_password" validate:"required"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	BusinessName *string `json:"business_name" validate:"omitempty,min=1,max=200"`
	TradeName    *string `json:"trade_name"`
	Address      *string `json:"address"`
	Ubigeo       *string `json:"ubigeo"`
	Email        *string `json:"email" validate:"omitempty,email"`
	SOLUser      *string `json:"sol_user"`
	SOLPassword  *string `json:"sol_password"`
	Status       *string `json:"status" validate:"omitempty,oneof=active suspended inactive"`
}

// CompanyResponse salida de una empresa (sin credenciales SOL).
type CompanyResponse struct {
	ID           string    `json:"id"`
	RUC          string    `json:"ruc"`
	BusinessName string    `json:"business_name"`
	TradeName    string    `json:"trade_name,omitempty"`
	Address      string    `json:"address"`
	Ubigeo       string    `json:"ubigeo,omitempty"`
	Email        string    `json:"email,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UploadCertificateRequest certificado digital en base64 + contraseña.
type UploadCertificateRequest struct {
	Material string `json:"material" validate:"required"` // PEM o PKCS#12 en base64
	Password string `json:"password"`
	Authority string `json:"authority,omitempty"`
}

// CertificateResponse metadatos del certificado (nunca la clave).
type CertificateResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Authority string    `json:"authority,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
