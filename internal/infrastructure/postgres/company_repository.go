package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación de CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `
	id, ruc, business_name, COALESCE(trade_name, ''), address, COALESCE(ubigeo, ''),
	COALESCE(email, ''), status, sol_user, sol_password, created_at, updated_at`

// Create persiste una empresa. Un RUC duplicado se traduce a ErrConflict.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	now := time.Now()
	company.CreatedAt = now
	company.UpdatedAt = now
	const query = `
		INSERT INTO companies (id, ruc, business_name, trade_name, address, ubigeo, email, status, sol_user, sol_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.pool.Exec(ctx, query,
		company.ID, company.RUC, company.BusinessName, nullIfEmpty(company.TradeName),
		company.Address, nullIfEmpty(company.Ubigeo), nullIfEmpty(company.Email),
		company.Status, company.SOLUser, company.SOLPassword,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el RUC %s ya está registrado", domain.ErrConflict, company.RUC)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve nil, nil si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByRUC obtiene una empresa por RUC. Devuelve nil, nil si no existe.
func (r *CompanyRepo) GetByRUC(ctx context.Context, ruc string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE ruc = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, ruc))
}

// List devuelve empresas paginadas ordenadas por razón social.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY business_name LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(
			&c.ID, &c.RUC, &c.BusinessName, &c.TradeName, &c.Address, &c.Ubigeo,
			&c.Email, &c.Status, &c.SOLUser, &c.SOLPassword, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// Update actualiza los datos mutables de la empresa. El RUC es inmutable.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	company.UpdatedAt = time.Now()
	const query = `
		UPDATE companies
		SET business_name = $2,
		    trade_name    = $3,
		    address       = $4,
		    ubigeo        = $5,
		    email         = $6,
		    status        = $7,
		    sol_user      = $8,
		    sol_password  = $9,
		    updated_at    = $10
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		company.ID, company.BusinessName, nullIfEmpty(company.TradeName),
		company.Address, nullIfEmpty(company.Ubigeo), nullIfEmpty(company.Email),
		company.Status, company.SOLUser, company.SOLPassword, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: empresa %s", domain.ErrNotFound, company.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CompanyRepo) scanOne(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.RUC, &c.BusinessName, &c.TradeName, &c.Address, &c.Ubigeo,
		&c.Email, &c.Status, &c.SOLUser, &c.SOLPassword, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}
