package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// withTx binds a transaction handle to the context so nested store calls
// join the same transaction.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}
