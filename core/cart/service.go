package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lojavirtual/backend/core/product"
	"github.com/lojavirtual/backend/validate"
	"github.com/sirupsen/logrus"
)

// Catalog is the slice of the product store the cart needs: price and name
// lookups when an item is added.
type Catalog interface {
	Fetch(ctx context.Context, id string) (product.Product, error)
}

// maxWriteAttempts bounds the read-modify-write retry loop. Each mutating
// operation re-reads the cart and writes conditionally on the version it
// saw; losing the race that many times surfaces ErrConflict to the caller.
const maxWriteAttempts = 3

type Service struct {
	repo    Repository
	catalog Catalog
	cache   Cache
	log     logrus.FieldLogger
}

func NewService(repo Repository, catalog Catalog, cache Cache, log logrus.FieldLogger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		log:     log,
	}
}

// AddItem merges quantity into an existing line of the same product or
// appends a new line with a price/name snapshot of the current catalog
// state. The stored total always equals the sum over the lines.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	p, err := s.catalog.Fetch(ctx, productID)
	if err != nil {
		return Cart{}, fmt.Errorf("fetching product[%s]: %w", productID, err)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		crt, err := s.repo.Fetch(ctx, userID)

		if errors.Is(err, ErrNotFound) {
			crt = Cart{
				ID:     validate.GenerateID(),
				UserID: userID,
				Items: []Item{{
					ProductID:   p.ID,
					Quantity:    quantity,
					UnitPrice:   p.Price,
					ProductName: p.Name,
				}},
				UpdatedAt: time.Now().UTC(),
			}
			crt.Total = crt.ComputeTotal()

			if err := s.repo.Insert(ctx, crt); err != nil {
				if errors.Is(err, ErrConflict) {
					continue
				}
				return Cart{}, fmt.Errorf("creating cart of user[%s]: %w", userID, err)
			}

			s.invalidate(userID)
			return crt, nil
		}
		if err != nil {
			return Cart{}, fmt.Errorf("fetching cart of user[%s]: %w", userID, err)
		}

		if i := crt.itemIndex(productID); i >= 0 {
			crt.Items[i].Quantity += quantity
		} else {
			crt.Items = append(crt.Items, Item{
				ProductID:   p.ID,
				Quantity:    quantity,
				UnitPrice:   p.Price,
				ProductName: p.Name,
			})
		}
		crt.Total = crt.ComputeTotal()
		crt.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, crt); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return Cart{}, fmt.Errorf("updating cart of user[%s]: %w", userID, err)
		}

		crt.Version++
		s.invalidate(userID)
		return crt, nil
	}

	return Cart{}, ErrConflict
}

// RemoveItem drops the product's line. A cart losing its last item is
// deleted, never stored empty; the caller gets the canonical empty
// representation back.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (Cart, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		crt, err := s.repo.Fetch(ctx, userID)
		if err != nil {
			return Cart{}, err
		}

		i := crt.itemIndex(productID)
		if i < 0 {
			return Cart{}, ErrItemNotFound
		}
		crt.Items = append(crt.Items[:i], crt.Items[i+1:]...)

		if len(crt.Items) == 0 {
			if err := s.repo.Delete(ctx, userID, crt.Version); err != nil {
				if errors.Is(err, ErrConflict) {
					continue
				}
				return Cart{}, err
			}

			s.invalidate(userID)
			return Empty(userID), nil
		}

		crt.Total = crt.ComputeTotal()
		crt.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, crt); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return Cart{}, err
		}

		crt.Version++
		s.invalidate(userID)
		return crt, nil
	}

	return Cart{}, ErrConflict
}

// SetQuantity overwrites the line's quantity. Callers must reject zero
// before getting here; this store never reinterprets it as a remove.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (Cart, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		crt, err := s.repo.Fetch(ctx, userID)
		if err != nil {
			return Cart{}, err
		}

		i := crt.itemIndex(productID)
		if i < 0 {
			return Cart{}, ErrItemNotFound
		}
		crt.Items[i].Quantity = quantity
		crt.Total = crt.ComputeTotal()
		crt.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, crt); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return Cart{}, err
		}

		crt.Version++
		s.invalidate(userID)
		return crt, nil
	}

	return Cart{}, ErrConflict
}

// GetCart never fails with not-found: a user without a cart is a valid
// steady state and gets the canonical empty representation.
func (s *Service) GetCart(ctx context.Context, userID string) (Cart, error) {
	crt, err := s.cache.Get(ctx, userID)
	if err == nil {
		return crt, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.WithField("user_id", userID).Warnf("cart cache get: %v", err)
	}

	crt, err = s.repo.Fetch(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Empty(userID), nil
	}
	if err != nil {
		return Cart{}, err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, userID, crt); err != nil {
			s.log.WithField("user_id", userID).Warnf("cart cache set: %v", err)
		}
	}()

	return crt, nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	s.invalidate(userID)
	return nil
}

// ClearCartByID deletes by storage identity rather than owner identity.
// Admin-only.
func (s *Service) ClearCartByID(ctx context.Context, id string) error {
	crt, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.invalidate(crt.UserID)
	return nil
}

func (s *Service) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.WithField("user_id", userID).Warnf("cart cache invalidate: %v", err)
	}
}
