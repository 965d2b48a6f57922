package database

import "context"

// TxManager runs fn inside a database transaction. The context given to fn
// carries the transaction; repositories pick it up through GetQuerier.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
