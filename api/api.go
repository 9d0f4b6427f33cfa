package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/lojavirtual/backend/api/middleware"
	"github.com/lojavirtual/backend/api/web"
	"github.com/lojavirtual/backend/core/admin"
	"github.com/lojavirtual/backend/core/auth"
	"github.com/lojavirtual/backend/core/cart"
	"github.com/lojavirtual/backend/core/product"
	"github.com/lojavirtual/backend/core/user"
	"github.com/lojavirtual/backend/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Users      *user.Store
	Products   product.Storer
	Carts      *cart.Service
	Admin      *admin.Service

	// Limiter guards the unauthenticated endpoints; nil disables limiting.
	Limiter *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admn := auth.Admin(cfg.Session)

	var limited web.Middleware
	if cfg.Limiter != nil {
		limited = middleware.RateLimit(cfg.Limiter)
	}

	a.Handle(http.MethodPost, "/usuarios", auth.HandleSignup(cfg.Users), limited)
	a.Handle(http.MethodPost, "/login", auth.HandleLogin(cfg.Users, cfg.Session), limited)
	a.Handle(http.MethodPost, "/logout", auth.HandleLogout(cfg.Session), authen)
	a.Handle(http.MethodGet, "/usuarios", user.HandleList(cfg.Users), admn)

	a.Handle(http.MethodGet, "/produtos", product.HandleList(cfg.Products))
	a.Handle(http.MethodGet, "/produtos/{id}", product.HandleShow(cfg.Products))
	a.Handle(http.MethodPost, "/produtos", product.HandleCreate(cfg.Products), admn)
	a.Handle(http.MethodPut, "/produtos/{id}", product.HandleUpdate(cfg.Products), admn)
	a.Handle(http.MethodDelete, "/produtos/{id}", product.HandleDelete(cfg.Products), admn)

	a.Handle(http.MethodGet, "/carrinho", cart.HandleShow(cfg.Carts), authen)
	a.Handle(http.MethodPost, "/carrinho", cart.HandleAdd(cfg.Carts), authen)
	a.Handle(http.MethodDelete, "/carrinho", cart.HandleClear(cfg.Carts), authen)
	a.Handle(http.MethodDelete, "/carrinho/item/{product_id}", cart.HandleRemoveItem(cfg.Carts), authen)
	a.Handle(http.MethodPatch, "/alterarQuantidade", cart.HandleUpdateQuantity(cfg.Carts), authen)

	a.Handle(http.MethodGet, "/carrinhos", admin.HandleListCarts(cfg.Admin), admn)
	a.Handle(http.MethodDelete, "/carrinho/por-id/{id}", cart.HandleClearByID(cfg.Carts), admn)
	a.Handle(http.MethodGet, "/admin/dashboard", admin.HandleDashboard(cfg.Admin), admn)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
