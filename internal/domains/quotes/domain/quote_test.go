package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func product(id int64, price int64, available int) Product {
	return Product{ID: id, Name: "P", Price: decimal.NewFromInt(price), Available: available}
}

func TestTotal(t *testing.T) {
	phone := product(1, 22999, 25)
	pods := product(5, 6999, 3)
	q, err := NewQuote("Q-1", Customer{}, at)
	require.NoError(t, err)
	require.True(t, q.Add(phone, at))
	require.True(t, q.Add(phone, at))
	require.True(t, q.Add(pods, at))

	catalog := map[int64]Product{1: phone, 5: pods}
	require.True(t, decimal.NewFromInt(52997).Equal(q.Total(catalog)))
	require.Equal(t, 3, q.ItemCount())
}

func TestAdd_CapsAtAvailability(t *testing.T) {
	laptop := product(3, 45999, 2)
	q, _ := NewQuote("Q-1", Customer{}, at)

	require.True(t, q.Add(laptop, at))
	require.True(t, q.Add(laptop, at))
	require.False(t, q.Add(laptop, at))
	require.Equal(t, 2, q.Quantity(3))

	soldOut := product(5, 6999, 0)
	require.False(t, q.Add(soldOut, at))
	require.Len(t, q.Lines, 1)
}

func TestSetQuantity(t *testing.T) {
	tablet := product(4, 29999, 12)
	q, _ := NewQuote("Q-1", Customer{}, at)

	require.NoError(t, q.SetQuantity(tablet, 5, at))
	require.Equal(t, 5, q.Quantity(4))

	require.NoError(t, q.SetQuantity(tablet, 50, at))
	require.Equal(t, 12, q.Quantity(4))

	require.ErrorIs(t, q.SetQuantity(tablet, -1, at), ErrInvalidQuantity)
	require.Equal(t, 12, q.Quantity(4))

	require.NoError(t, q.SetQuantity(tablet, 0, at))
	require.Empty(t, q.Lines)
}

func TestHasOutOfStockSelections(t *testing.T) {
	phone := product(1, 22999, 25)
	q, _ := NewQuote("Q-1", Customer{}, at)
	require.True(t, q.Add(phone, at))

	require.False(t, q.HasOutOfStockSelections(map[int64]Product{1: phone}))

	phone.Available = 0
	require.True(t, q.HasOutOfStockSelections(map[int64]Product{1: phone}))
}

func TestReadyToSubmit(t *testing.T) {
	q, _ := NewQuote("Q-1", Customer{Company: "  "}, at)
	require.ErrorIs(t, q.ReadyToSubmit(), ErrEmptyQuote)

	require.True(t, q.Add(product(1, 100, 1), at))
	require.ErrorIs(t, q.ReadyToSubmit(), ErrEmptyCompany)

	q.Customer.Company = "Empresa ABC"
	require.NoError(t, q.ReadyToSubmit())
}

func TestNewQuote_RequiresID(t *testing.T) {
	_, err := NewQuote(" ", Customer{}, at)
	require.ErrorIs(t, err, ErrEmptyQuoteID)
}
