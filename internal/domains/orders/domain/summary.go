package domain

import "github.com/shopspring/decimal"

// Summary holds the validation dashboard counters.
type Summary struct {
	Pending            int
	ValidationRequired int
	PendingAmount      decimal.Decimal
	Approved           int
	Rejected           int
}

// Summarize counts orders by status. Pending includes both open states.
func Summarize(orders []*Order) Summary {
	summary := Summary{PendingAmount: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case StatusPendingValidation, StatusValidationRequired:
			summary.Pending++
			summary.PendingAmount = summary.PendingAmount.Add(o.Amount)
			if o.Status == StatusValidationRequired {
				summary.ValidationRequired++
			}
		case StatusApproved:
			summary.Approved++
		case StatusRejected:
			summary.Rejected++
		}
	}
	return summary
}
