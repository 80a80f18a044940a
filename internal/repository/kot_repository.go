package repository

import (
	"context"

	"github.com/ury-pos/pos-core/internal/database"
	"github.com/ury-pos/pos-core/internal/errors"
)

// KOTRepository reads kitchen order tickets and their lines. Tickets are
// owned by the kitchen workflow; nothing here writes them.
type KOTRepository struct {
	db *database.DB
}

// NewKOTRepository creates a new KOTRepository.
func NewKOTRepository(db *database.DB) *KOTRepository {
	return &KOTRepository{db: db}
}

// ListByTableAndInvoice returns the tickets of a table and invoice, newest first.
// Items are not loaded.
func (r *KOTRepository) ListByTableAndInvoice(ctx context.Context, table, invoice string) ([]*KOT, error) {
	query := `
		SELECT name, restaurant_table, invoice, order_status, preparation_time,
		       date::text, start_time_prep::text, type
		FROM kots
		WHERE restaurant_table = $1 AND invoice = $2
		ORDER BY created_at DESC, name DESC
	`

	rows, err := r.db.Query(ctx, query, table, invoice)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list kots")
	}
	defer rows.Close()

	kots := make([]*KOT, 0)
	for rows.Next() {
		kot := &KOT{}
		err := rows.Scan(
			&kot.Name,
			&kot.Table,
			&kot.Invoice,
			&kot.OrderStatus,
			&kot.PreparationTime,
			&kot.Date,
			&kot.StartTimePrep,
			&kot.Type,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan kot")
		}
		kots = append(kots, kot)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read kots")
	}

	return kots, nil
}

// GetItems returns the lines of a ticket in entry order.
func (r *KOTRepository) GetItems(ctx context.Context, kotName string) ([]*KOTItem, error) {
	query := `
		SELECT parent, idx, item_name, quantity, preparation_time, striked
		FROM kot_items
		WHERE parent = $1
		ORDER BY idx
	`

	rows, err := r.db.Query(ctx, query, kotName)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get kot items")
	}
	defer rows.Close()

	items := make([]*KOTItem, 0)
	for rows.Next() {
		item := &KOTItem{}
		err := rows.Scan(
			&item.Parent,
			&item.Idx,
			&item.ItemName,
			&item.Quantity,
			&item.PreparationTime,
			&item.Striked,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan kot item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read kot items")
	}

	return items, nil
}
