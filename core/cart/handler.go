package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lojavirtual/backend/api/web"
	"github.com/lojavirtual/backend/api/weberr"
	"github.com/lojavirtual/backend/core/claims"
	"github.com/lojavirtual/backend/core/product"
	"github.com/lojavirtual/backend/validate"
)

func HandleAdd(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(in.ProductID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		crt, err := carts.AddItem(ctx, clm.UserID, in.ProductID, in.Quantity)
		if err != nil {
			return cartError(err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleRemoveItem(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		productID := web.Param(r, "product_id")
		if err := validate.CheckID(productID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		crt, err := carts.RemoveItem(ctx, clm.UserID, productID)
		if err != nil {
			return cartError(err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleUpdateQuantity(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var in QuantityUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := validate.CheckID(in.ProductID); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		crt, err := carts.SetQuantity(ctx, clm.UserID, in.ProductID, in.Quantity)
		if err != nil {
			return cartError(err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleShow(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		crt, err := carts.GetCart(ctx, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart of user[%s]: %w", clm.UserID, err)
		}

		return web.Respond(ctx, w, crt, http.StatusOK)
	}
}

func HandleClear(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := carts.ClearCart(ctx, clm.UserID); err != nil {
			return cartError(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleClearByID(carts *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := carts.ClearCartByID(ctx, id); err != nil {
			return cartError(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// cartError maps store errors onto the response taxonomy. Anything unmapped
// renders as a generic internal failure.
func cartError(err error) error {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrItemNotFound):
		return weberr.NotFound(err)
	case errors.Is(err, ErrConflict):
		return weberr.Conflict(err)
	}
	return err
}
