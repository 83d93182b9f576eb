package mapper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

func TestFromSaleResult(t *testing.T) {
	one := FromSaleResult(&ports.SaleResult{Product: "Widget", Sold: 1, UnitIDs: []int64{7}})
	require.Equal(t, "Sold 1 unit of Widget", one.Message)

	many := FromSaleResult(&ports.SaleResult{Product: "Widget", Sold: 2, UnitIDs: []int64{7, 8}})
	require.Equal(t, "Sold 2 units of Widget", many.Message)
	require.Equal(t, []int64{7, 8}, many.UnitIDs)
}

func TestFromCategories_NeverNull(t *testing.T) {
	out := FromCategories(&domain.Categories{Models: []string{"M1"}})
	require.Equal(t, []string{"M1"}, out.Models)
	require.NotNil(t, out.Batches)
	require.Empty(t, out.Batches)
}
