package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lojavirtual/backend/api/web"
)

func HandleDashboard(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		dash, err := svc.ComputeDashboard(ctx)
		if err != nil {
			return fmt.Errorf("computing dashboard: %w", err)
		}

		return web.Respond(ctx, w, dash, http.StatusOK)
	}
}

func HandleListCarts(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		summary, err := svc.ComputeOwnerSummary(ctx)
		if err != nil {
			return fmt.Errorf("computing owner summary: %w", err)
		}

		return web.Respond(ctx, w, summary, http.StatusOK)
	}
}
