package postgres

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx stores an open transaction on the context so collaborators invoked inside it (audit
// appends, idempotency records) join the same commit.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Conn returns the transaction carried by ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
