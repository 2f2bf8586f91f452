// Package database holds the storage-agnostic unit-of-work contract.
package database

import "context"

// TxManager runs fn as one atomic unit. Repositories called with the ctx passed to fn join that unit;
// a nested WithinTx joins the outer one. Returning an error from fn discards every write made in it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// AfterCommit defers fn until the outermost unit commits. Outside a unit fn runs immediately.
	AfterCommit(ctx context.Context, fn func())
}
