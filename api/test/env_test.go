package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/lojavirtual/backend/api"
	"github.com/lojavirtual/backend/config"
	"github.com/lojavirtual/backend/core/admin"
	"github.com/lojavirtual/backend/core/cart"
	"github.com/lojavirtual/backend/core/claims"
	"github.com/lojavirtual/backend/core/product"
	"github.com/lojavirtual/backend/core/user"
	"github.com/lojavirtual/backend/database"
	"github.com/lojavirtual/backend/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// TestEnv wires the whole API against a real document store, with one admin
// and one regular account already seeded.
type TestEnv struct {
	URL    string
	Server *httptest.Server

	AdminEmail string
	AdminPass  string
	UserEmail  string
	UserPass   string

	client *http.Client
}

// NewTestEnv builds the API against a fresh database named after the test.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, config.DB{URI: mongoURI, Name: name})
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	session := scs.New()
	session.Lifetime = time.Hour

	users := user.NewStore(db)
	products := product.NewStore(db)
	carts := cart.NewService(cart.NewRepository(db), products, cart.NopCache{}, log)
	adm := admin.NewService(cart.NewRepository(db), users)

	h := api.APIMux(api.APIConfig{
		Log:      log,
		Session:  session,
		Users:    users,
		Products: products,
		Carts:    carts,
		Admin:    adm,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Client().Disconnect(disconnectCtx)
	})

	env := &TestEnv{
		URL:        srv.URL,
		Server:     srv,
		AdminEmail: "admin@example.com",
		AdminPass:  "admin-secret",
		UserEmail:  "ana@example.com",
		UserPass:   "user-secret",
	}

	if err := seedUser(ctx, users, "Gerente", env.AdminEmail, env.AdminPass, claims.RoleAdmin); err != nil {
		return nil, err
	}
	if err := seedUser(ctx, users, "Ana Souza", env.UserEmail, env.UserPass, claims.RoleUser); err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	env.client = &http.Client{Jar: jar, Timeout: 10 * time.Second}

	return env, nil
}

func seedUser(ctx context.Context, users *user.Store, name, email, pass, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.MinCost)
	if err != nil {
		return err
	}

	return users.Create(ctx, user.User{
		ID:           validate.GenerateID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
}

// Client returns the cookie-carrying client the session travels on.
func (env *TestEnv) Client() *http.Client {
	return env.client
}

func (env *TestEnv) Login(t *testing.T, email, pass string) {
	t.Helper()

	status := env.request(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": pass,
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login as %s: status code %d", email, status)
	}
}

func (env *TestEnv) Logout(t *testing.T) {
	t.Helper()

	if status := env.request(t, http.MethodPost, "/logout", nil, nil); status != http.StatusNoContent {
		t.Fatalf("logout: status code %d", status)
	}
}

// request sends body as JSON and decodes the response into out when both are
// non-nil. It returns the status code.
func (env *TestEnv) request(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling %s %s body: %v", method, path, err)
		}
		rd = bytes.NewReader(raw)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatalf("building %s %s: %v", method, path, err)
	}

	w, err := env.client.Do(r)
	if err != nil {
		t.Fatalf("sending %s %s: %v", method, path, err)
	}
	defer w.Body.Close()

	if out != nil && w.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}

	return w.StatusCode
}
