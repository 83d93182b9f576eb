package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
)

// DemoOrders returns the validation queue shown on a fresh dashboard.
func DemoOrders() []ports.PlaceOrderInput {
	return []ports.PlaceOrderInput{
		{
			ID:               "ORD-2024-001",
			Customer:         "Empresa Tecnológica ABC",
			Amount:           decimal.NewFromInt(127500),
			PaymentMethod:    "SPEI",
			PaymentReference: "SPEI240115001",
			Priority:         "High",
			OrderedAt:        "2024-01-15 14:30",
			Items:            []string{"5x iPhone 15 Pro Max", "3x iPad Pro 12.9\""},
		},
		{
			ID:               "ORD-2024-002",
			Customer:         "Distribuidora XYZ S.A.",
			Amount:           decimal.NewFromInt(89300),
			PaymentMethod:    "SPEI",
			PaymentReference: "SPEI240115002",
			Priority:         "Medium",
			OrderedAt:        "2024-01-15 11:15",
			Items:            []string{"8x Samsung Galaxy S24", "2x MacBook Air"},
		},
		{
			ID:               "ORD-2024-003",
			Customer:         "Corporativo DEF",
			Amount:           decimal.NewFromInt(234600),
			PaymentMethod:    "SPEI",
			PaymentReference: "SPEI240114003",
			Priority:         "Critical",
			OrderedAt:        "2024-01-14 16:45",
			Items:            []string{"10x iPhone 15 Pro", "5x iPad Pro", "3x MacBook Pro"},
		},
	}
}

// SeedDemo places the demo orders through svc, skipping any that already exist.
func SeedDemo(ctx context.Context, svc ports.Service) error {
	for _, input := range DemoOrders() {
		if _, err := svc.Get(ctx, input.ID); err == nil {
			continue
		}
		if _, err := svc.PlaceOrder(ctx, input); err != nil {
			return err
		}
	}
	return nil
}
