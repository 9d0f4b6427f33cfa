package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/lojavirtual/backend/api/web"
	"github.com/lojavirtual/backend/api/weberr"
	"github.com/lojavirtual/backend/rate"
)

// RateLimit rejects clients exceeding the limiter's budget, keyed by the
// client IP. Used on the unauthenticated endpoints (signup, login).
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !lim.Check(ip) {
				err := errors.New("client exceeded the request rate limit")
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
