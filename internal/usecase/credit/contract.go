package credit

import "context"

// Ledger counts credits spent per user per calendar day.
type Ledger interface {
	Used(ctx context.Context, userID, day string) (int64, error)
	// Add adds n (negative to refund) and returns the day's new total.
	Add(ctx context.Context, userID, day string, n int64) (int64, error)
}
