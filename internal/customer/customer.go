package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Customer is a pharmacy walk-in or repeat buyer.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store looks up customers for the search-as-you-type box.
type Store interface {
	Search(ctx context.Context, query string, limit int) ([]Customer, error)
	Create(ctx context.Context, c Customer) error
}

// PGStore searches customers by name or phone prefix.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) Search(ctx context.Context, query string, limit int) ([]Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Customer{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, phone, email, address, created_at
		FROM customers
		WHERE name ILIKE '%' || $1 || '%' OR phone LIKE $1 || '%'
		ORDER BY name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *PGStore) Create(ctx context.Context, c Customer) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO customers (id, name, phone, email, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}
