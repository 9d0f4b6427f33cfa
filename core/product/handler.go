package product

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lojavirtual/backend/api/web"
	"github.com/lojavirtual/backend/api/weberr"
	"github.com/lojavirtual/backend/core/claims"
	"github.com/lojavirtual/backend/validate"
)

func HandleCreate(products Storer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var pn ProductNew
		if err := web.Decode(w, r, &pn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(pn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if pn.Price.Sign() <= 0 {
			err := errors.New("price must be greater than 0")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		now := time.Now().UTC()
		p := Product{
			ID:          validate.GenerateID(),
			Name:        pn.Name,
			Price:       pn.Price,
			PhotoURL:    pn.PhotoURL,
			Description: pn.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if clm, err := claims.Get(ctx); err == nil {
			p.CreatedBy = &clm.UserID
		}

		if err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}

		return web.Respond(ctx, w, p, http.StatusCreated)
	}
}

func HandleList(products Storer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		all, err := products.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		return web.Respond(ctx, w, all, http.StatusOK)
	}
}

func HandleShow(products Storer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := products.Fetch(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleUpdate(products Storer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up ProductUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if up.Price != nil && up.Price.Sign() <= 0 {
			err := errors.New("price must be greater than 0")
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		p, err := products.Fetch(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("fetching product[%s]: %w", id, err)
		}

		if up.Name != nil {
			p.Name = *up.Name
		}
		if up.Price != nil {
			p.Price = *up.Price
		}
		if up.PhotoURL != nil {
			p.PhotoURL = *up.PhotoURL
		}
		if up.Description != nil {
			p.Description = *up.Description
		}
		p.UpdatedAt = time.Now().UTC()

		// Cart line items keep the price/name snapshot taken when the
		// item was added; a catalog edit never rewrites them.
		if err := products.Update(ctx, p); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				return weberr.NotFound(err)
			case errors.Is(err, ErrConflict):
				return weberr.Conflict(err)
			}
			return fmt.Errorf("updating product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleDelete(products Storer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := products.Delete(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("deleting product[%s]: %w", id, err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
