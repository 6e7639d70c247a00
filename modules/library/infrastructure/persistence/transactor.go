package persistence

import (
	"context"

	"github.com/lingora/lingora/pkg/composables"
)

// Transactor runs fn inside a database transaction. The function receives
// a context carrying the transaction; returning an error rolls back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PgxTransactor struct{}

func NewTransactor() Transactor {
	return &PgxTransactor{}
}

func (t *PgxTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return composables.InTx(ctx, fn)
}
