package test

import (
	"net/http"
	"testing"

	"github.com/lojavirtual/backend/core/cart"
	"github.com/lojavirtual/backend/core/product"
	"github.com/shopspring/decimal"
)

type productTest struct {
	*TestEnv
}

// createProductOK creates a product as the currently logged-in admin.
func (pt *productTest) createProductOK(t *testing.T, name, price string) product.Product {
	t.Helper()

	body := map[string]string{
		"name":        name,
		"price":       price,
		"photoUrl":    "http://cdn.example.com/produtos/img.png",
		"description": "produto de teste",
	}

	var p product.Product
	if status := pt.request(t, http.MethodPost, "/produtos", body, &p); status != http.StatusCreated {
		t.Fatalf("creating product %s: status code %d", name, status)
	}
	return p
}

type cartTest struct {
	*TestEnv
}

func (rt *cartTest) addItemOK(t *testing.T, productID string, qty int) cart.Cart {
	t.Helper()

	var crt cart.Cart
	body := map[string]any{"productId": productID, "quantity": qty}
	if status := rt.request(t, http.MethodPost, "/carrinho", body, &crt); status != http.StatusOK {
		t.Fatalf("adding product %s: status code %d", productID, status)
	}
	return crt
}

func (rt *cartTest) getCartOK(t *testing.T) cart.Cart {
	t.Helper()

	var crt cart.Cart
	if status := rt.request(t, http.MethodGet, "/carrinho", nil, &crt); status != http.StatusOK {
		t.Fatalf("fetching cart: status code %d", status)
	}
	return crt
}

func assertTotal(t *testing.T, crt cart.Cart, want string) {
	t.Helper()

	if !crt.Total.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("cart total: got %s, want %s", crt.Total, want)
	}
}

func TestCart(t *testing.T) {
	env, err := NewTestEnv(t, "cart_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	pt := &productTest{env}
	rt := &cartTest{env}

	env.Login(t, env.AdminEmail, env.AdminPass)
	cafe := pt.createProductOK(t, "Café Torrado", "10.00")
	filtro := pt.createProductOK(t, "Filtro de Papel", "5.00")
	env.Logout(t)

	env.Login(t, env.UserEmail, env.UserPass)

	crt := rt.getCartOK(t)
	if len(crt.Items) != 0 {
		t.Fatalf("fresh cart has %d items", len(crt.Items))
	}
	assertTotal(t, crt, "0")

	crt = rt.addItemOK(t, cafe.ID, 2)
	assertTotal(t, crt, "20.00")

	// Re-adding merges into the existing line.
	crt = rt.addItemOK(t, cafe.ID, 3)
	if len(crt.Items) != 1 {
		t.Fatalf("re-add produced %d lines, want 1", len(crt.Items))
	}
	if crt.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity: got %d, want 5", crt.Items[0].Quantity)
	}
	assertTotal(t, crt, "50.00")

	// Zero is invalid input for the quantity update, not an implicit remove.
	body := map[string]any{"productId": cafe.ID, "quantity": 0}
	if status := env.request(t, http.MethodPatch, "/alterarQuantidade", body, nil); status != http.StatusBadRequest {
		t.Fatalf("quantity 0: status code %d, want 400", status)
	}

	body = map[string]any{"productId": cafe.ID, "quantity": 4}
	if status := env.request(t, http.MethodPatch, "/alterarQuantidade", body, &crt); status != http.StatusOK {
		t.Fatalf("setting quantity: status code %d", status)
	}
	assertTotal(t, crt, "40.00")

	crt = rt.addItemOK(t, filtro.ID, 1)
	if len(crt.Items) != 2 {
		t.Fatalf("cart has %d lines, want 2", len(crt.Items))
	}
	assertTotal(t, crt, "45.00")

	// A catalog price change must not rewrite the stored snapshot.
	if status := env.request(t, http.MethodGet, "/carrinho", nil, &crt); status != http.StatusOK {
		t.Fatalf("fetching cart: status code %d", status)
	}
	env.Logout(t)
	env.Login(t, env.AdminEmail, env.AdminPass)
	if status := env.request(t, http.MethodPut, "/produtos/"+cafe.ID, map[string]string{"price": "99.00"}, nil); status != http.StatusOK {
		t.Fatalf("updating product price: status code %d", status)
	}
	env.Logout(t)
	env.Login(t, env.UserEmail, env.UserPass)
	crt = rt.getCartOK(t)
	assertTotal(t, crt, "45.00")

	// Removing the cheaper line brings the total back down.
	if status := env.request(t, http.MethodDelete, "/carrinho/item/"+filtro.ID, nil, &crt); status != http.StatusOK {
		t.Fatalf("removing item: status code %d", status)
	}
	assertTotal(t, crt, "40.00")

	// Removing it again is a miss, not a silent success.
	if status := env.request(t, http.MethodDelete, "/carrinho/item/"+filtro.ID, nil, nil); status != http.StatusNotFound {
		t.Fatalf("removing absent item: status code %d, want 404", status)
	}

	// Removing the last line deletes the document; the response and a fresh
	// fetch both show the canonical empty cart.
	if status := env.request(t, http.MethodDelete, "/carrinho/item/"+cafe.ID, nil, &crt); status != http.StatusOK {
		t.Fatalf("removing last item: status code %d", status)
	}
	if len(crt.Items) != 0 {
		t.Fatalf("emptied cart has %d items", len(crt.Items))
	}
	assertTotal(t, crt, "0")

	crt = rt.getCartOK(t)
	if len(crt.Items) != 0 {
		t.Fatalf("deleted cart still has %d items", len(crt.Items))
	}

	// Clearing builds a cart up again and wipes it in one call.
	rt.addItemOK(t, cafe.ID, 1)
	if status := env.request(t, http.MethodDelete, "/carrinho", nil, nil); status != http.StatusNoContent {
		t.Fatalf("clearing cart: status code %d", status)
	}
	crt = rt.getCartOK(t)
	if len(crt.Items) != 0 {
		t.Fatalf("cleared cart still has %d items", len(crt.Items))
	}
}

func TestCartRequiresAuth(t *testing.T) {
	env, err := NewTestEnv(t, "cart_auth_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	// A client without a session cookie gets turned away.
	anon := &http.Client{}
	r, err := http.NewRequest(http.MethodGet, env.URL+"/carrinho", nil)
	if err != nil {
		t.Fatal(err)
	}
	w, err := anon.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous cart fetch: status code %d, want 401", w.StatusCode)
	}
}
