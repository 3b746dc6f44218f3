package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service orchestrates product persistence, validation, and caching.
type Service struct {
	store        Store
	cache        *Cache
	validate     *validator.Validate
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        Store
	Cache        *Cache
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog store is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		validate:     validator.New(),
		logger:       cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := checkAmounts(in.CostPrice, in.SellingPrice, in.MRP, in.TaxPercent); err != nil {
		return Product{}, err
	}
	p := Product{
		ID:            uuid.New(),
		Name:          in.Name,
		GenericName:   in.GenericName,
		SKU:           in.SKU,
		Category:      in.Category,
		CostPrice:     in.CostPrice,
		SellingPrice:  in.SellingPrice,
		MRP:           in.MRP,
		TaxPercent:    in.TaxPercent,
		Quantity:      in.Quantity,
		MinStockLevel: in.MinStockLevel,
		ReorderLevel:  in.ReorderLevel,
		Unit:          in.Unit,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Update patches an existing product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd UpdateInput) (Product, error) {
	if err := s.validate.Struct(upd); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, amount := range []*decimal.Decimal{upd.CostPrice, upd.SellingPrice, upd.MRP, upd.TaxPercent} {
		if amount != nil && amount.IsNegative() {
			return Product{}, fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
		}
	}
	p, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Get loads one product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.store.GetByID(ctx, id)
}

// List returns a filtered, paginated product page, served from cache when possible.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = s.defaultLimit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}

	if s.cache != nil {
		var cached ListResult
		if hit, err := s.cache.GetList(ctx, params, &cached); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache read")
		} else if hit {
			return cached, nil
		}
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}
	if s.cache != nil {
		if err := s.cache.SetList(ctx, params, result); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache write")
		}
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache invalidate")
	}
}

func checkAmounts(amounts ...decimal.Decimal) error {
	for _, amount := range amounts {
		if amount.IsNegative() {
			return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
		}
	}
	return nil
}
