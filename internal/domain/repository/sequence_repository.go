package repository

import "context"

// SequenceRepository hands out per-shop document numbers
type SequenceRepository interface {
	// Next returns the next value of the named sequence, starting at 1.
	// It must run inside a transaction to be gap free.
	Next(ctx context.Context, name string) (int64, error)
}

// Transactor runs fn in one database transaction. Repositories called with
// the ctx passed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
