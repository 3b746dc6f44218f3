package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry for a medicine or retail article.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	GenericName   *string         `json:"genericName,omitempty"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	MRP           decimal.Decimal `json:"mrp"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	Quantity      int             `json:"quantity"`
	MinStockLevel int             `json:"minStockLevel"`
	ReorderLevel  int             `json:"reorderLevel"`
	Unit          string          `json:"unit"`
	BatchNumber   *string         `json:"batchNumber,omitempty"`
	ExpiryDate    *string         `json:"expiryDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CreateInput carries the fields accepted when registering a product.
type CreateInput struct {
	Name          string          `json:"name" validate:"required,max=200"`
	GenericName   *string         `json:"genericName" validate:"omitempty,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	Category      string          `json:"category" validate:"required,max=100"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	MRP           decimal.Decimal `json:"mrp"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	MinStockLevel int             `json:"minStockLevel" validate:"gte=0"`
	ReorderLevel  int             `json:"reorderLevel" validate:"gte=0"`
	Unit          string          `json:"unit" validate:"required,max=32"`
	BatchNumber   *string         `json:"batchNumber"`
	ExpiryDate    *string         `json:"expiryDate"`
}

// UpdateInput is the closed set of patchable product fields. Nil members
// leave the stored value untouched.
type UpdateInput struct {
	Name          *string          `json:"name" validate:"omitempty,max=200"`
	GenericName   *string          `json:"genericName" validate:"omitempty,max=200"`
	Category      *string          `json:"category" validate:"omitempty,max=100"`
	CostPrice     *decimal.Decimal `json:"costPrice"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	MRP           *decimal.Decimal `json:"mrp"`
	TaxPercent    *decimal.Decimal `json:"taxPercent"`
	Quantity      *int             `json:"quantity" validate:"omitempty,gte=0"`
	MinStockLevel *int             `json:"minStockLevel" validate:"omitempty,gte=0"`
	ReorderLevel  *int             `json:"reorderLevel" validate:"omitempty,gte=0"`
	Unit          *string          `json:"unit" validate:"omitempty,max=32"`
	BatchNumber   *string          `json:"batchNumber"`
	ExpiryDate    *string          `json:"expiryDate"`
}

// ListParams captures filters for product listing.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	LowStock bool
	Expiring bool
}

// ListResult bundles a product page with its total count.
type ListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}
