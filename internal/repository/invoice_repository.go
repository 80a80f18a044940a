package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/errors"
)

// InvoiceRepository handles POS invoice data operations
type InvoiceRepository struct {
	db *database.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// GetByID retrieves an invoice by name with its voided items
func (r *InvoiceRepository) GetByID(ctx context.Context, name string) (*Invoice, error) {
	invoice := &Invoice{}

	query := `
		SELECT name, docstatus, status, branch, pos_profile, restaurant_table,
		       version, modified
		FROM pos_invoices
		WHERE name = $1
	`

	err := r.db.QueryRow(ctx, query, name).Scan(
		&invoice.Name,
		&invoice.DocStatus,
		&invoice.Status,
		&invoice.Branch,
		&invoice.POSProfile,
		&invoice.RestaurantTable,
		&invoice.Version,
		&invoice.Modified,
	)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("invoice", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get invoice")
	}

	items, err := r.GetVoidedItems(ctx, invoice.Name)
	if err != nil {
		return nil, err
	}
	invoice.VoidedItems = items

	return invoice, nil
}

// GetVoidedItems retrieves the void records of an invoice in append order
func (r *InvoiceRepository) GetVoidedItems(ctx context.Context, invoiceName string) ([]*VoidedItem, error) {
	query := `
		SELECT id::text, parent, idx, item,
		       rate::text, quantity::text, amount::text,
		       accountability, notes, voided_by, acting_user, created_at
		FROM pos_invoice_voided_items
		WHERE parent = $1
		ORDER BY idx
	`

	rows, err := r.db.Query(ctx, query, invoiceName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get voided items")
	}
	defer rows.Close()

	items := make([]*VoidedItem, 0)
	for rows.Next() {
		item := &VoidedItem{}
		var rate, quantity, amount string
		err := rows.Scan(
			&item.ID,
			&item.Parent,
			&item.Idx,
			&item.Item,
			&rate,
			&quantity,
			&amount,
			&item.Accountability,
			&item.Notes,
			&item.VoidedBy,
			&item.SessionUser,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan voided item")
		}

		if item.Rate, err = decimal.NewFromString(rate); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "invalid voided item rate")
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "invalid voided item quantity")
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "invalid voided item amount")
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read voided items")
	}

	return items, nil
}

// AppendVoidedItems persists a batch of void records in one transaction.
// The header update only matches a draft invoice still at the version that
// was loaded, so a concurrent save or finalization fails the whole batch
// with ErrCodeConflict. On success the invoice is updated in place.
func (r *InvoiceRepository) AppendVoidedItems(ctx context.Context, invoice *Invoice, items []*VoidedItem) error {
	var (
		version  int64
		modified time.Time
	)
	next := len(invoice.VoidedItems)

	err := r.db.InTransaction(ctx, func(tx pgx.Tx) error {
		bumpQuery := `
			UPDATE pos_invoices
			SET version = version + 1, modified = NOW()
			WHERE name = $1 AND version = $2 AND docstatus = $3
			RETURNING version, modified
		`
		err := tx.QueryRow(ctx, bumpQuery, invoice.Name, invoice.Version, DocStatusDraft).Scan(&version, &modified)
		if stderrors.Is(err, pgx.ErrNoRows) {
			return errors.New(errors.ErrCodeConflict,
				fmt.Sprintf("invoice %s was modified or finalized by another request", invoice.Name))
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to lock invoice")
		}

		for i, item := range items {
			item.ID = uuid.NewString()
			item.Parent = invoice.Name
			item.Idx = next + i + 1

			insertQuery := `
				INSERT INTO pos_invoice_voided_items (id, parent, idx, item,
				                                      rate, quantity, amount,
				                                      accountability, notes, voided_by, acting_user)
				VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11)
				RETURNING created_at
			`
			err := tx.QueryRow(ctx, insertQuery,
				item.ID,
				item.Parent,
				item.Idx,
				item.Item,
				item.Rate.String(),
				item.Quantity.String(),
				item.Amount.String(),
				item.Accountability,
				item.Notes,
				item.VoidedBy,
				item.SessionUser,
			).Scan(&item.CreatedAt)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to insert voided item")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	invoice.Version = version
	invoice.Modified = modified
	invoice.VoidedItems = append(invoice.VoidedItems, items...)
	return nil
}
