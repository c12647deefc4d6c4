package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
)

type txContextKey struct{}

func contextWithTx(ctx context.Context, tx *firestore.Transaction) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext returns the transaction a RunInTx scope put into the context.
func txFromContext(ctx context.Context) (*firestore.Transaction, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*firestore.Transaction)
	return tx, ok
}
