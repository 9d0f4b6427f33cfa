package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lojavirtual/backend/core/cart"
	"github.com/lojavirtual/backend/core/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCarts struct {
	carts []cart.Cart
}

func (f *fakeCarts) FetchAll(_ context.Context) ([]cart.Cart, error) {
	return f.carts, nil
}

type fakeDirectory struct {
	users map[string]user.User
}

func (f *fakeDirectory) FetchByIDs(_ context.Context, ids []string) ([]user.User, error) {
	found := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeDashboard(t *testing.T) {
	carts := &fakeCarts{carts: []cart.Cart{
		{
			ID: "c1", UserID: "u1",
			Items: []cart.Item{
				{ProductID: "pA", ProductName: "Café Torrado", Quantity: 2, UnitPrice: dec("10.00")},
				{ProductID: "pB", ProductName: "Filtro de Papel", Quantity: 1, UnitPrice: dec("5.00")},
			},
			Total: dec("25.00"),
		},
		{
			ID: "c2", UserID: "u2",
			Items: []cart.Item{
				{ProductID: "pA", ProductName: "Café Torrado", Quantity: 1, UnitPrice: dec("10.00")},
			},
			Total: dec("10.00"),
		},
	}}

	svc := NewService(carts, &fakeDirectory{})
	dash, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, dash.ActiveCartCount)
	assert.True(t, dash.TotalCartValue.Equal(dec("35.00")), "total = %s", dash.TotalCartValue)

	want := []ItemStat{
		{ProductID: "pA", Name: "Café Torrado", TotalQuantitySold: 3, CartsContainingItem: 2},
		{ProductID: "pB", Name: "Filtro de Papel", TotalQuantitySold: 1, CartsContainingItem: 1},
	}
	if diff := cmp.Diff(want, dash.TopItems); diff != "" {
		t.Fatalf("top items mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeDashboardEmpty(t *testing.T) {
	svc := NewService(&fakeCarts{}, &fakeDirectory{})

	dash, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, dash.ActiveCartCount)
	assert.True(t, dash.TotalCartValue.IsZero())
	assert.Empty(t, dash.TopItems)
}

// Tied quantities keep their first-encounter scan order.
func TestComputeDashboardTieOrder(t *testing.T) {
	carts := &fakeCarts{carts: []cart.Cart{
		{ID: "c1", UserID: "u1", Items: []cart.Item{
			{ProductID: "pX", ProductName: "X", Quantity: 2, UnitPrice: dec("1.00")},
			{ProductID: "pY", ProductName: "Y", Quantity: 2, UnitPrice: dec("1.00")},
		}, Total: dec("4.00")},
	}}

	svc := NewService(carts, &fakeDirectory{})
	dash, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.TopItems, 2)
	assert.Equal(t, "pX", dash.TopItems[0].ProductID)
	assert.Equal(t, "pY", dash.TopItems[1].ProductID)
}

func TestComputeDashboardTruncatesRanking(t *testing.T) {
	crt := cart.Cart{ID: "c1", UserID: "u1", Total: dec("0.00")}
	for i := 0; i < 8; i++ {
		crt.Items = append(crt.Items, cart.Item{
			ProductID:   fmt.Sprintf("p%d", i),
			ProductName: fmt.Sprintf("Produto %d", i),
			Quantity:    i + 1,
			UnitPrice:   dec("1.00"),
		})
	}

	svc := NewService(&fakeCarts{carts: []cart.Cart{crt}}, &fakeDirectory{})
	dash, err := svc.ComputeDashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, dash.TopItems, 5)
	assert.Equal(t, "p7", dash.TopItems[0].ProductID)
	assert.Equal(t, 8, dash.TopItems[0].TotalQuantitySold)
	assert.Equal(t, "p3", dash.TopItems[4].ProductID)
}

func TestComputeOwnerSummary(t *testing.T) {
	carts := &fakeCarts{carts: []cart.Cart{
		{ID: "c1", UserID: "u1", Items: []cart.Item{{ProductID: "pA", Quantity: 1, UnitPrice: dec("10.00")}}, Total: dec("10.00")},
		{ID: "c2", UserID: "ghost", Items: []cart.Item{{ProductID: "pB", Quantity: 1, UnitPrice: dec("5.00")}}, Total: dec("5.00")},
	}}
	users := &fakeDirectory{users: map[string]user.User{
		"u1": {ID: "u1", Name: "Ana Souza", Email: "ana@example.com"},
	}}

	svc := NewService(carts, users)
	summary, err := svc.ComputeOwnerSummary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary, 2)

	assert.Equal(t, "Ana Souza", summary[0].OwnerName)
	assert.Equal(t, "ana@example.com", summary[0].OwnerEmail)
	assert.Equal(t, "c1", summary[0].ID)

	// A cart whose user record is gone is listed with the placeholder,
	// never dropped.
	assert.Equal(t, OwnerNotFound, summary[1].OwnerName)
	assert.Equal(t, OwnerNotFound, summary[1].OwnerEmail)
	assert.Equal(t, "c2", summary[1].ID)
}
