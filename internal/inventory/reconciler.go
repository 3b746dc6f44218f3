package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
	"github.com/tarekulislam03/medix-v1-sub001/internal/events"
	"github.com/tarekulislam03/medix-v1-sub001/internal/imports"
)

// ErrEmptyCommit indicates an empty staged list reached the reconciler.
var ErrEmptyCommit = errors.New("nothing to commit")

// Reconciler applies confirmed staging lists as atomic inventory updates:
// either every staged line lands as a batch/stock change or none does.
type Reconciler struct {
	Pool   *pgxpool.Pool
	Events *events.Bus
	Logger zerolog.Logger
}

// Apply upserts one product batch per staged line and increments product
// stock inside a single transaction. Unknown medicines get a minimal
// catalog row so the batch has somewhere to live.
func (r *Reconciler) Apply(ctx context.Context, lines []imports.StagedLine) error {
	if r == nil || r.Pool == nil {
		return errors.New("inventory reconciler not configured")
	}
	if len(lines) == 0 {
		return ErrEmptyCommit
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batchID := uuid.New()
	for i, line := range lines {
		name := strings.TrimSpace(line.MedicineName)
		if name == "" {
			return fmt.Errorf("row %d: medicine name is required", i)
		}
		if line.Quantity < 0 {
			return fmt.Errorf("row %d: quantity must not be negative", i)
		}
		productID, err := r.resolveProduct(ctx, tx, name, line)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := r.upsertBatch(ctx, tx, productID, line); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET quantity = quantity + $1, updated_at = now() WHERE id = $2`,
			line.Quantity, productID,
		); err != nil {
			return fmt.Errorf("row %d: increment stock: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit inventory update: %w", err)
	}

	if r.Events != nil {
		if _, err := r.Events.Emit(ctx, events.TopicImportCommitted, batchID, map[string]any{
			"rows": len(lines),
		}); err != nil {
			r.Logger.Warn().Err(err).Msg("emit import committed event")
		}
	}
	return nil
}

func (r *Reconciler) resolveProduct(ctx context.Context, tx pgx.Tx, name string, line imports.StagedLine) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM products WHERE lower(name) = lower($1)`,
		name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("lookup product: %w", err)
	}

	id = uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO products (id, name, sku, category, cost_price, selling_price, mrp, tax_percent, quantity, min_stock_level, reorder_level, unit)
		 VALUES ($1, $2, $3, 'UNCATEGORIZED', $4, $5, $5, 0, 0, 0, 0, 'unit')`,
		id, name, generatedSKU(name), common.NumericFromDecimal(line.Rate), common.NumericFromDecimal(line.MRP),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create product: %w", err)
	}
	return id, nil
}

func (r *Reconciler) upsertBatch(ctx context.Context, tx pgx.Tx, productID uuid.UUID, line imports.StagedLine) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO product_batches (id, product_id, batch_number, expiry_date, quantity, mrp, rate)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (product_id, batch_number) DO UPDATE SET
		   quantity    = product_batches.quantity + EXCLUDED.quantity,
		   expiry_date = EXCLUDED.expiry_date,
		   mrp         = EXCLUDED.mrp,
		   rate        = EXCLUDED.rate,
		   updated_at  = now()`,
		uuid.New(), productID, line.BatchNumber, line.ExpiryDate, line.Quantity,
		common.NumericFromDecimal(line.MRP), common.NumericFromDecimal(line.Rate),
	)
	if err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

func generatedSKU(name string) string {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(name), "-"))
	if len(cleaned) > 24 {
		cleaned = cleaned[:24]
	}
	suffix := uuid.NewString()[:8]
	return cleaned + "-" + suffix
}
