package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tarekulislam03/medix-v1-sub001/internal/common"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Store abstracts product persistence for the service layer.
type Store interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, id uuid.UUID, upd UpdateInput) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	List(ctx context.Context, params ListParams) ([]Product, int64, error)
}

// PGStore implements Store on Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, name, generic_name, sku, category, cost_price, selling_price, mrp,
	tax_percent, quantity, min_stock_level, reorder_level, unit, batch_number, expiry_date,
	created_at, updated_at`

// Create inserts a product row.
func (s *PGStore) Create(ctx context.Context, p Product) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO products (id, name, generic_name, sku, category, cost_price, selling_price, mrp,
		   tax_percent, quantity, min_stock_level, reorder_level, unit, batch_number, expiry_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Name, p.GenericName, p.SKU, p.Category,
		common.NumericFromDecimal(p.CostPrice), common.NumericFromDecimal(p.SellingPrice),
		common.NumericFromDecimal(p.MRP), common.NumericFromDecimal(p.TaxPercent),
		p.Quantity, p.MinStockLevel, p.ReorderLevel, p.Unit, p.BatchNumber, p.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update patches the provided fields and returns the stored row.
func (s *PGStore) Update(ctx context.Context, id uuid.UUID, upd UpdateInput) (Product, error) {
	sets := make([]string, 0, 13)
	args := make([]any, 0, 14)
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.GenericName != nil {
		add("generic_name", *upd.GenericName)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.CostPrice != nil {
		add("cost_price", common.NumericFromDecimal(*upd.CostPrice))
	}
	if upd.SellingPrice != nil {
		add("selling_price", common.NumericFromDecimal(*upd.SellingPrice))
	}
	if upd.MRP != nil {
		add("mrp", common.NumericFromDecimal(*upd.MRP))
	}
	if upd.TaxPercent != nil {
		add("tax_percent", common.NumericFromDecimal(*upd.TaxPercent))
	}
	if upd.Quantity != nil {
		add("quantity", *upd.Quantity)
	}
	if upd.MinStockLevel != nil {
		add("min_stock_level", *upd.MinStockLevel)
	}
	if upd.ReorderLevel != nil {
		add("reorder_level", *upd.ReorderLevel)
	}
	if upd.Unit != nil {
		add("unit", *upd.Unit)
	}
	if upd.BatchNumber != nil {
		add("batch_number", *upd.BatchNumber)
	}
	if upd.ExpiryDate != nil {
		add("expiry_date", *upd.ExpiryDate)
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE products SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns,
	)
	row := s.Pool.QueryRow(ctx, query, args...)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product row.
func (s *PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID loads a single product.
func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns a filtered product page plus the total match count.
func (s *PGStore) List(ctx context.Context, params ListParams) ([]Product, int64, error) {
	where := []string{"TRUE"}
	args := []any{}
	if q := strings.TrimSpace(params.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf(
			"(name ILIKE $%d OR generic_name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args), len(args)))
	}
	if params.LowStock {
		where = append(where, "quantity <= min_stock_level")
	}
	if params.Expiring {
		// expiry_date is advisory MM/YY text; unparseable values are excluded
		where = append(where,
			`expiry_date ~ '^[0-9]{2}/[0-9]{2}$' AND to_date(expiry_date, 'MM/YY') < now() + interval '90 days'`)
	}
	clause := strings.Join(where, " AND ")

	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.Limit
	args = append(args, params.Limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM products WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		productColumns, clause, len(args)-1, len(args),
	)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	items := make([]Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var costPrice, sellingPrice, mrp, taxPct pgtype.Numeric
	var genericName, batchNumber, expiryDate pgtype.Text
	err := row.Scan(
		&p.ID, &p.Name, &genericName, &p.SKU, &p.Category,
		&costPrice, &sellingPrice, &mrp, &taxPct,
		&p.Quantity, &p.MinStockLevel, &p.ReorderLevel, &p.Unit,
		&batchNumber, &expiryDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Product{}, err
	}
	p.CostPrice = common.DecimalFromNumeric(costPrice)
	p.SellingPrice = common.DecimalFromNumeric(sellingPrice)
	p.MRP = common.DecimalFromNumeric(mrp)
	p.TaxPercent = common.DecimalFromNumeric(taxPct)
	if genericName.Valid {
		v := genericName.String
		p.GenericName = &v
	}
	if batchNumber.Valid {
		v := batchNumber.String
		p.BatchNumber = &v
	}
	if expiryDate.Valid {
		v := expiryDate.String
		p.ExpiryDate = &v
	}
	return p, nil
}
