package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/lojavirtual/backend/core/cart"
	"github.com/lojavirtual/backend/core/user"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Carts is the read-only slice of the cart store the aggregation needs:
// every document in one call.
type Carts interface {
	FetchAll(ctx context.Context) ([]cart.Cart, error)
}

// Directory resolves identities in bulk.
type Directory interface {
	FetchByIDs(ctx context.Context, ids []string) ([]user.User, error)
}

// OwnerNotFound fills the owner columns of carts whose user record is gone.
// An orphaned cart is tolerated, not fatal.
const OwnerNotFound = "Owner Not Found"

const topItemsLimit = 5

type ItemStat struct {
	ProductID           string `json:"productId"`
	Name                string `json:"name"`
	TotalQuantitySold   int    `json:"totalQuantitySold"`
	CartsContainingItem int    `json:"cartsContainingItem"`
}

type Dashboard struct {
	ActiveCartCount int             `json:"activeCartCount"`
	TotalCartValue  decimal.Decimal `json:"totalCartValue"`
	TopItems        []ItemStat      `json:"topItems"`
}

// OwnerCart is a cart annotated with its owner for the admin listing.
type OwnerCart struct {
	cart.Cart
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`
}

type Service struct {
	carts Carts
	users Directory
	sfg   singleflight.Group
}

func NewService(carts Carts, users Directory) *Service {
	return &Service{
		carts: carts,
		users: users,
	}
}

// ComputeDashboard scans every cart once and derives the active count, the
// sum of the stored totals and the top-selling ranking. The stored totals
// are trusted, not recomputed from the lines. Concurrent callers share one
// scan through singleflight.
func (s *Service) ComputeDashboard(ctx context.Context) (Dashboard, error) {
	v, err, _ := s.sfg.Do("dashboard", func() (any, error) {
		carts, err := s.carts.FetchAll(ctx)
		if err != nil {
			return Dashboard{}, fmt.Errorf("scanning carts: %w", err)
		}

		total := decimal.Zero

		// Tally in scan order; the stable sort below keeps that order
		// for ties.
		byProduct := make(map[string]int)
		stats := make([]ItemStat, 0)

		for _, crt := range carts {
			total = total.Add(crt.Total)

			for _, it := range crt.Items {
				i, ok := byProduct[it.ProductID]
				if !ok {
					i = len(stats)
					byProduct[it.ProductID] = i
					stats = append(stats, ItemStat{
						ProductID: it.ProductID,
						Name:      it.ProductName,
					})
				}
				stats[i].TotalQuantitySold += it.Quantity
				stats[i].CartsContainingItem++
			}
		}

		sort.SliceStable(stats, func(i, j int) bool {
			return stats[i].TotalQuantitySold > stats[j].TotalQuantitySold
		})
		if len(stats) > topItemsLimit {
			stats = stats[:topItemsLimit]
		}

		return Dashboard{
			ActiveCartCount: len(carts),
			TotalCartValue:  total,
			TopItems:        stats,
		}, nil
	})

	if err != nil {
		return Dashboard{}, err
	}
	return v.(Dashboard), nil
}

// ComputeOwnerSummary annotates every cart with its owner's name and email.
// Owner ids are collected first and resolved with one batched fetch instead
// of a lookup per cart; ids without a record get the placeholder.
func (s *Service) ComputeOwnerSummary(ctx context.Context) ([]OwnerCart, error) {
	carts, err := s.carts.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning carts: %w", err)
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, len(carts))
	for _, crt := range carts {
		if !seen[crt.UserID] {
			seen[crt.UserID] = true
			ids = append(ids, crt.UserID)
		}
	}

	owners, err := s.users.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving cart owners: %w", err)
	}

	byID := make(map[string]user.User, len(owners))
	for _, u := range owners {
		byID[u.ID] = u
	}

	summary := make([]OwnerCart, 0, len(carts))
	for _, crt := range carts {
		oc := OwnerCart{
			Cart:       crt,
			OwnerName:  OwnerNotFound,
			OwnerEmail: OwnerNotFound,
		}
		if u, ok := byID[crt.UserID]; ok {
			oc.OwnerName = u.Name
			oc.OwnerEmail = u.Email
		}
		summary = append(summary, oc)
	}

	return summary, nil
}
