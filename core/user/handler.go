package user

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lojavirtual/backend/api/web"
)

// HandleList returns every identity record. Admin-only, routed behind the
// admin middleware.
func HandleList(users *Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		all, err := users.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}

		return web.Respond(ctx, w, all, http.StatusOK)
	}
}
