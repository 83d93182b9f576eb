package domain

import "github.com/shopspring/decimal"

// Product is a catalog entry offered for B2B quoting.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available int             `json:"available"`
}

// InStock reports whether at least one unit can be quoted.
func (p Product) InStock() bool {
	return p.Available > 0
}
