package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	"github.com/jhoicas/facturacion-sunat/internal/infrastructure/sunat/signer"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// CompanyUseCase aplica reglas de negocio para empresas emisoras.
type CompanyUseCase struct {
	repo     repository.CompanyRepository
	certRepo repository.CertificateRepository
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, certRepo repository.CertificateRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, certRepo: certRepo}
}

// Create crea una empresa emisora. Valida el RUC (dígito verificador módulo 11)
// y devuelve domain.ErrDuplicate si el RUC ya está registrado.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := sunat.ValidateRUC(in.RUC); err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	existing, _ := uc.repo.GetByRUC(ctx, in.RUC)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:           uuid.New().String(),
		RUC:          in.RUC,
		BusinessName: in.BusinessName,
		TradeName:    in.TradeName,
		Address:      in.Address,
		Ubigeo:       in.Ubigeo,
		Email:        in.Email,
		Status:       "active",
		SOLUser:      in.SOLUser,
		SOLPassword:  in.SOLPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update actualiza campos opcionales de la empresa. El RUC es inmutable.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.BusinessName != nil {
		company.BusinessName = *in.BusinessName
	}
	if in.TradeName != nil {
		company.TradeName = *in.TradeName
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Ubigeo != nil {
		company.Ubigeo = *in.Ubigeo
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.SOLUser != nil {
		company.SOLUser = *in.SOLUser
	}
	if in.SOLPassword != nil {
		company.SOLPassword = *in.SOLPassword
	}
	if in.Status != nil {
		company.Status = *in.Status
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// UploadCertificate registra (o rota) el certificado digital de la empresa.
// El material llega en base64 (PEM o PKCS#12). La vigencia se extrae siempre
// del propio certificado; la autoridad la puede indicar el operador y, si no,
// se toma del emisor del certificado.
func (uc *CompanyUseCase) UploadCertificate(ctx context.Context, companyID string, in dto.UploadCertificateRequest) (*dto.CertificateResponse, error) {
	company, err := uc.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	material, err := base64.StdEncoding.DecodeString(in.Material)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	info, err := signer.DescribeCertificate(material, in.Password)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	authority := in.Authority
	if authority == "" {
		authority = info.Authority
	}
	now := time.Now()
	cert := &entity.Certificate{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Material:  material,
		Password:  in.Password,
		Authority: authority,
		IssuedAt:  info.IssuedAt,
		ExpiresAt: info.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !cert.ValidAt(now) {
		return nil, domain.ErrCertificateExpired
	}
	if err := uc.certRepo.Put(ctx, cert); err != nil {
		return nil, err
	}
	return &dto.CertificateResponse{
		ID:        cert.ID,
		CompanyID: cert.CompanyID,
		Authority: cert.Authority,
		IssuedAt:  cert.IssuedAt,
		ExpiresAt: cert.ExpiresAt,
		CreatedAt: cert.CreatedAt,
	}, nil
}

// GetCertificate devuelve los metadatos del certificado vigente de la empresa.
func (uc *CompanyUseCase) GetCertificate(ctx context.Context, companyID string) (*dto.CertificateResponse, error) {
	cert, err := uc.certRepo.GetByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, domain.ErrCertificateNotFound
	}
	return &dto.CertificateResponse{
		ID:        cert.ID,
		CompanyID: cert.CompanyID,
		Authority: cert.Authority,
		IssuedAt:  cert.IssuedAt,
		ExpiresAt: cert.ExpiresAt,
		CreatedAt: cert.CreatedAt,
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:           c.ID,
		RUC:          c.RUC,
		BusinessName: c.BusinessName,
		TradeName:    c.TradeName,
		Address:      c.Address,
		Ubigeo:       c.Ubigeo,
		Email:        c.Email,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
