package repositories

import "context"

// TxFn runs inside a transaction; the context it receives carries the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-step mutations atomically. Repositories called with the
// context passed to fn participate in the same transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
