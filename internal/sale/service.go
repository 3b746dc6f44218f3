package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tarekulislam03/medix-v1-sub001/internal/catalog"
	"github.com/tarekulislam03/medix-v1-sub001/internal/events"
)

// ProductSource resolves catalog products when lines are added.
type ProductSource interface {
	Get(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

// Service ties carts to the catalog, sale persistence, and the event bus.
type Service struct {
	Carts    *Registry
	Products ProductSource
	Store    Store
	Events   *events.Bus
	Logger   zerolog.Logger
}

// AddProduct resolves the product and appends a cart line primed with the
// catalog selling price and tax rate.
func (s *Service) AddProduct(ctx context.Context, cartID, productID uuid.UUID, quantity int) (View, error) {
	if s.Products == nil {
		return View{}, errors.New("sale service not configured")
	}
	cart, err := s.Carts.Get(cartID)
	if err != nil {
		return View{}, err
	}
	p, err := s.Products.Get(ctx, productID)
	if err != nil {
		return View{}, err
	}
	return cart.AddLine(CartLine{
		ProductID:      p.ID,
		Name:           p.Name,
		GenericName:    p.GenericName,
		ReferencePrice: p.SellingPrice,
		CartPrice:      p.SellingPrice,
		Quantity:       quantity,
		TaxPercent:     p.TaxPercent,
		BatchNumber:    p.BatchNumber,
		ExpiryDate:     p.ExpiryDate,
	}), nil
}

// Checkout persists the cart as a finalized sale. It refuses a zero grand
// total, and on success the cart is discarded and a sale.completed event is
// emitted.
func (s *Service) Checkout(ctx context.Context, cartID uuid.UUID) (Record, error) {
	if s.Store == nil {
		return Record{}, errors.New("sale service not configured")
	}
	cart, err := s.Carts.Get(cartID)
	if err != nil {
		return Record{}, err
	}
	view := cart.Snapshot()
	if !view.GrandTotal.IsPositive() {
		return Record{}, ErrEmptyCart
	}

	rec := Record{
		ID:             uuid.New(),
		CustomerID:     view.CustomerID,
		Lines:          view.Lines,
		Subtotal:       view.Subtotal,
		TotalDiscount:  view.TotalDiscount,
		TotalTax:       view.TotalTax,
		GlobalDiscount: view.Settlement.GlobalDiscount,
		DoctorFees:     view.Settlement.DoctorFees,
		OtherCharges:   view.Settlement.OtherCharges,
		GrandTotal:     view.GrandTotal,
		PaymentMethod:  string(view.Settlement.PaymentMethod),
		AmountPaid:     view.Settlement.AmountPaid,
		Change:         view.Change,
		Balance:        view.Balance,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Store.InsertSale(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("persist sale: %w", err)
	}

	s.Carts.Remove(cartID)

	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicSaleCompleted, rec.ID, map[string]any{
			"saleId":        rec.ID,
			"grandTotal":    rec.GrandTotal,
			"paymentMethod": rec.PaymentMethod,
			"lineCount":     len(rec.Lines),
		}); err != nil {
			s.Logger.Warn().Err(err).Str("sale_id", rec.ID.String()).Msg("emit sale.completed")
		}
	}
	return rec, nil
}
