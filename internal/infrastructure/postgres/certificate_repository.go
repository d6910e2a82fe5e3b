package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepo)(nil)

// CertificateRepo implementación de CertificateRepository sobre PostgreSQL.
// Los certificados no se borran al rotar: queda el histórico y GetByCompany
// devuelve siempre el registrado más recientemente.
type CertificateRepo struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository construye el adaptador de certificados.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepo {
	return &CertificateRepo{pool: pool}
}

// GetByCompany devuelve el certificado más reciente de la empresa, nil, nil si no hay.
func (r *CertificateRepo) GetByCompany(ctx context.Context, companyID string) (*entity.Certificate, error) {
	const query = `
		SELECT id, company_id, material, COALESCE(password, ''), authority, issued_at, expires_at, created_at, updated_at
		FROM certificates
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var c entity.Certificate
	err := r.pool.QueryRow(ctx, query, companyID).Scan(
		&c.ID, &c.CompanyID, &c.Material, &c.Password, &c.Authority,
		&c.IssuedAt, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}
	return &c, nil
}

// Put registra un certificado (alta o rotación).
func (r *CertificateRepo) Put(ctx context.Context, cert *entity.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}
	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now
	const query = `
		INSERT INTO certificates (id, company_id, material, password, authority, issued_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		cert.ID, cert.CompanyID, cert.Material, nullIfEmpty(cert.Password),
		cert.Authority, cert.IssuedAt, cert.ExpiresAt, cert.CreatedAt, cert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}
