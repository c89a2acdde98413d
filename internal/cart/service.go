package cart

import (
	"context"
	"log"

	"github.com/alterd/checkout/internal/catalog"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	store Store
	sfg   singleflight.Group // collapses concurrent reads of the same session
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		return s.store.Load(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	// callers sharing a flight must not see each other's edits
	return v.(*Cart).Clone(), nil
}

// Add merges the product into the session cart. Products with a known stock
// level cap the line's quantity.
func (s *Service) Add(ctx context.Context, sessionID string, p catalog.Product, size, color string, quantity int) (*Cart, error) {
	c, err := s.store.Update(ctx, sessionID, func(c *Cart) error {
		if quantity < 1 {
			return ErrInvalidQuantity
		}
		existing, _ := c.Item(Key{ProductID: p.ID, Size: size, Color: color})
		if p.Stock > 0 && existing.Quantity+quantity > p.Stock {
			return ErrInsufficientStock
		}
		return c.AddItem(p, size, color, quantity)
	})
	if err != nil {
		log.Printf("cart add item error: session=%s product=%s: %v", sessionID, p.ID, err)
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, k Key, quantity int) (*Cart, error) {
	return s.store.Update(ctx, sessionID, func(c *Cart) error {
		if li, ok := c.Item(k); ok && li.Product.Stock > 0 && quantity > li.Product.Stock {
			return ErrInsufficientStock
		}
		c.UpdateQuantity(k, quantity)
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, k Key) (*Cart, error) {
	return s.store.Update(ctx, sessionID, func(c *Cart) error {
		c.RemoveItem(k)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
