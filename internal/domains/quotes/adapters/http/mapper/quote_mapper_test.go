package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

func TestFromView_MoneyAndStock(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	soldOut := domain.Product{ID: 2, Name: "Cable", Price: decimal.RequireFromString("9.5"), Available: 0}
	phone := domain.Product{ID: 1, Name: "Phone", Price: decimal.NewFromInt(1200), Available: 3}

	out := FromView(&ports.QuoteView{
		ID:       "q-1",
		Customer: domain.Customer{Company: "Acme"},
		Lines: []ports.LineView{
			{Product: phone, Quantity: 2, Subtotal: decimal.NewFromInt(2400)},
		},
		Items:                   2,
		Total:                   decimal.NewFromInt(2400),
		HasOutOfStockSelections: false,
		CreatedAt:               at,
		UpdatedAt:               at,
	})

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"total":2400.00`)
	require.Contains(t, string(raw), `"subtotal":2400.00`)

	require.False(t, FromProduct(soldOut).InStock)
	require.Equal(t, json.Number("9.50"), FromProduct(soldOut).Price)
}

func TestFromProducts_Empty(t *testing.T) {
	out := FromProducts(nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}
