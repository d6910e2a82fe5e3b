package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository construye el adaptador de comprobantes.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

const documentColumns = `
	id, company_id, doc_type, series, correlative, number, issue_date, currency,
	issuer_ruc, issuer_name, issuer_address,
	customer_identity_type, customer_identity_number, customer_name, COALESCE(customer_address, ''),
	COALESCE(ref_document_type, ''), COALESCE(ref_document_number, ''), COALESCE(note_reason, ''),
	subtotal, igv, total,
	xml_content, COALESCE(signed_xml, ''), state,
	COALESCE(ticket_id, ''), COALESCE(rejection_reason, ''),
	created_at, updated_at`

// Save persiste cabecera e ítems en una transacción. Un número duplicado
// (company_id, number) se traduce a ErrConflict.
func (r *DocumentRepo) Save(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save document: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertDoc = `
		INSERT INTO documents (
			id, company_id, doc_type, series, correlative, number, issue_date, currency,
			issuer_ruc, issuer_name, issuer_address,
			customer_identity_type, customer_identity_number, customer_name, customer_address,
			ref_document_type, ref_document_number, note_reason,
			subtotal, igv, total, xml_content, signed_xml, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err = tx.Exec(ctx, insertDoc,
		doc.ID, doc.CompanyID, doc.Type, doc.Series, doc.Correlative, doc.Number,
		doc.IssueDate, doc.Currency,
		doc.IssuerRUC, doc.IssuerName, doc.IssuerAddress,
		doc.CustomerIdentityType, doc.CustomerIdentityNumber, doc.CustomerName, nullIfEmpty(doc.CustomerAddress),
		nullIfEmpty(doc.RefDocumentType), nullIfEmpty(doc.RefDocumentNumber), nullIfEmpty(doc.NoteReason),
		doc.Subtotal, doc.IGV, doc.Total,
		doc.XML, nullIfEmpty(doc.SignedXML), doc.State,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el número %s ya existe para la empresa", domain.ErrConflict, doc.Number)
		}
		return fmt.Errorf("insert document: %w", err)
	}

	const insertItem = `
		INSERT INTO document_items (id, document_id, line, description, unit_code, quantity, unit_price, igv_affectation, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range doc.Items {
		item := &doc.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.DocumentID = doc.ID
		_, err = tx.Exec(ctx, insertItem,
			item.ID, doc.ID, i+1, item.Description, item.UnitCode,
			item.Quantity, item.UnitPrice, item.IGVAffectation, item.Tax, item.Total,
		)
		if err != nil {
			return fmt.Errorf("insert document item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save document: %w", err)
	}
	return nil
}

// GetByCompanyAndNumber recupera el comprobante completo (ítems y constancia).
// Devuelve nil, nil si no existe.
func (r *DocumentRepo) GetByCompanyAndNumber(ctx context.Context, companyID, number string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1 AND number = $2`
	var doc entity.Document
	err := r.pool.QueryRow(ctx, query, companyID, number).Scan(
		&doc.ID, &doc.CompanyID, &doc.Type, &doc.Series, &doc.Correlative, &doc.Number,
		&doc.IssueDate, &doc.Currency,
		&doc.IssuerRUC, &doc.IssuerName, &doc.IssuerAddress,
		&doc.CustomerIdentityType, &doc.CustomerIdentityNumber, &doc.CustomerName, &doc.CustomerAddress,
		&doc.RefDocumentType, &doc.RefDocumentNumber, &doc.NoteReason,
		&doc.Subtotal, &doc.IGV, &doc.Total,
		&doc.XML, &doc.SignedXML, &doc.State,
		&doc.TicketID, &doc.RejectionReason,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	items, err := r.itemsByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Items = items

	receipt, err := r.receiptByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Receipt = receipt
	return &doc, nil
}

func (r *DocumentRepo) itemsByDocumentID(ctx context.Context, documentID string) ([]entity.DocumentItem, error) {
	const query = `
		SELECT id, document_id, description, unit_code, quantity, unit_price, igv_affectation, tax, total
		FROM document_items WHERE document_id = $1 ORDER BY line`
	rows, err := r.pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	var items []entity.DocumentItem
	for rows.Next() {
		var it entity.DocumentItem
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Description, &it.UnitCode,
			&it.Quantity, &it.UnitPrice, &it.IGVAffectation, &it.Tax, &it.Total); err != nil {
			return nil, fmt.Errorf("scan document item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *DocumentRepo) receiptByDocumentID(ctx context.Context, documentID string) (*entity.Receipt, error) {
	const query = `
		SELECT response_code, description, raw_cdr, received_at
		FROM document_receipts WHERE document_id = $1`
	var rec entity.Receipt
	err := r.pool.QueryRow(ctx, query, documentID).Scan(
		&rec.ResponseCode, &rec.Description, &rec.RawCDR, &rec.ReceivedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document receipt: %w", err)
	}
	return &rec, nil
}

// SetState actualiza solo el estado del comprobante.
func (r *DocumentRepo) SetState(ctx context.Context, companyID, number, state string) error {
	const query = `
		UPDATE documents SET state = $3, updated_at = now()
		WHERE company_id = $1 AND number = $2`
	tag, err := r.pool.Exec(ctx, query, companyID, number, state)
	if err != nil {
		return fmt.Errorf("set document state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: comprobante %s", domain.ErrNotFound, number)
	}
	return nil
}

// SetSignedXML escribe el XML firmado.
func (r *DocumentRepo) SetSignedXML(ctx context.Context, companyID, number, signedXML string) error {
	const query = `
		UPDATE documents SET signed_xml = $3, updated_at = now()
		WHERE company_id = $1 AND number = $2`
	tag, err := r.pool.Exec(ctx, query, companyID, number, signedXML)
	if err != nil {
		return fmt.Errorf("set signed xml: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: comprobante %s", domain.ErrNotFound, number)
	}
	return nil
}

// SetTicket guarda el ticket de un envío asíncrono.
func (r *DocumentRepo) SetTicket(ctx context.Context, companyID, number, ticket string) error {
	const query = `
		UPDATE documents SET ticket_id = $3, updated_at = now()
		WHERE company_id = $1 AND number = $2`
	tag, err := r.pool.Exec(ctx, query, companyID, number, ticket)
	if err != nil {
		return fmt.Errorf("set document ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: comprobante %s", domain.ErrNotFound, number)
	}
	return nil
}

// AttachReceipt fija el estado terminal y adjunta la constancia en una sola
// transacción: o quedan ambos persistidos o ninguno.
func (r *DocumentRepo) AttachReceipt(ctx context.Context, companyID, number, state, reason string, receipt *entity.Receipt) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin attach receipt: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateDoc = `
		UPDATE documents SET state = $3, rejection_reason = $4, updated_at = now()
		WHERE company_id = $1 AND number = $2
		RETURNING id`
	var documentID string
	if err := tx.QueryRow(ctx, updateDoc, companyID, number, state, nullIfEmpty(reason)).Scan(&documentID); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: comprobante %s", domain.ErrNotFound, number)
		}
		return fmt.Errorf("attach receipt: update document: %w", err)
	}

	const insertReceipt = `
		INSERT INTO document_receipts (id, document_id, response_code, description, raw_cdr, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id) DO NOTHING`
	_, err = tx.Exec(ctx, insertReceipt,
		uuid.New().String(), documentID,
		receipt.ResponseCode, receipt.Description, receipt.RawCDR, receipt.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("attach receipt: insert receipt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit attach receipt: %w", err)
	}
	return nil
}

// ListByCompanyAndState lista comprobantes (solo cabeceras) por estado,
// más antiguos primero para que el reenvío respete el orden de emisión.
func (r *DocumentRepo) ListByCompanyAndState(ctx context.Context, companyID, state string, limit, offset int) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND state = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, companyID, state, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents by state: %w", err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		var doc entity.Document
		if err := rows.Scan(
			&doc.ID, &doc.CompanyID, &doc.Type, &doc.Series, &doc.Correlative, &doc.Number,
			&doc.IssueDate, &doc.Currency,
			&doc.IssuerRUC, &doc.IssuerName, &doc.IssuerAddress,
			&doc.CustomerIdentityType, &doc.CustomerIdentityNumber, &doc.CustomerName, &doc.CustomerAddress,
			&doc.RefDocumentType, &doc.RefDocumentNumber, &doc.NoteReason,
			&doc.Subtotal, &doc.IGV, &doc.Total,
			&doc.XML, &doc.SignedXML, &doc.State,
			&doc.TicketID, &doc.RejectionReason,
			&doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, &doc)
	}
	return list, rows.Err()
}
