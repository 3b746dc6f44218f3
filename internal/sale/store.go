package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
)

// Record is a finalized sale as persisted at checkout time. It carries the
// full aggregate and settlement snapshot so receipts can be reproduced
// without recomputation.
type Record struct {
	ID             uuid.UUID
	CustomerID     *uuid.UUID
	Lines          []CartLine
	Subtotal       decimal.Decimal
	TotalDiscount  decimal.Decimal
	TotalTax       decimal.Decimal
	GlobalDiscount decimal.Decimal
	DoctorFees     decimal.Decimal
	OtherCharges   decimal.Decimal
	GrandTotal     decimal.Decimal
	PaymentMethod  string
	AmountPaid     decimal.Decimal
	Change         decimal.Decimal
	Balance        decimal.Decimal
	CreatedAt      time.Time
}

// Store persists finalized sales.
type Store interface {
	InsertSale(ctx context.Context, rec Record) error
}

// PGStore writes sales and their lines in a single transaction, decrementing
// product stock for every sold line.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) InsertSale(ctx context.Context, rec Record) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin sale tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO sales (
			id, customer_id, subtotal, total_discount, total_tax,
			global_discount, doctor_fees, other_charges, grand_total,
			payment_method, amount_paid, change, balance, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rec.ID, rec.CustomerID,
		common.NumericFromDecimal(rec.Subtotal),
		common.NumericFromDecimal(rec.TotalDiscount),
		common.NumericFromDecimal(rec.TotalTax),
		common.NumericFromDecimal(rec.GlobalDiscount),
		common.NumericFromDecimal(rec.DoctorFees),
		common.NumericFromDecimal(rec.OtherCharges),
		common.NumericFromDecimal(rec.GrandTotal),
		rec.PaymentMethod,
		common.NumericFromDecimal(rec.AmountPaid),
		common.NumericFromDecimal(rec.Change),
		common.NumericFromDecimal(rec.Balance),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, ln := range rec.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_lines (
				sale_id, position, product_id, name, unit_price,
				quantity, discount_percent, tax_percent, line_total,
				batch_number, expiry_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			rec.ID, i, ln.ProductID, ln.Name,
			common.NumericFromDecimal(ln.CartPrice),
			ln.Quantity,
			common.NumericFromDecimal(ln.DiscountPercent),
			common.NumericFromDecimal(ln.TaxPercent),
			common.NumericFromDecimal(ln.LineTotal),
			ln.BatchNumber, ln.ExpiryDate,
		)
		if err != nil {
			return fmt.Errorf("insert sale line %d: %w", i, err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE products SET quantity = GREATEST(quantity - $1, 0), updated_at = now() WHERE id = $2`,
			ln.Quantity, ln.ProductID,
		)
		if err != nil {
			return fmt.Errorf("decrement stock for line %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale tx: %w", err)
	}
	return nil
}
