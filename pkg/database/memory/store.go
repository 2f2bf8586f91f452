// Package memory provides the locking and unit-of-work plumbing shared by the
// in-memory repositories used in tests and ephemeral environments.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
)

// Store guards every in-memory table with one RWMutex. A unit of work holds the
// write lock for its whole duration, so its writes become visible together.
// Units on different items are serialized too; the per-item parallelism of the
// Postgres driver does not apply here.
type Store struct {
	mu  sync.RWMutex
	seq atomic.Int64
}

func NewStore() *Store {
	return &Store{}
}

type txKey struct{}

// Tx records how to undo the writes made inside a unit of work.
type Tx struct {
	undo        []func()
	afterCommit []func()
}

// OnRollback registers f to run, in reverse registration order, if the unit fails.
func (t *Tx) OnRollback(f func()) {
	t.undo = append(t.undo, f)
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func txFrom(ctx context.Context) *Tx {
	tx, _ := ctx.Value(txKey{}).(*Tx)
	return tx
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx := &Tx{}
	if err := s.run(tx, func() error { return fn(context.WithValue(ctx, txKey{}, tx)) }); err != nil {
		return err
	}
	for _, f := range tx.afterCommit {
		f()
	}
	return nil
}

// run executes fn under the write lock and undoes tx if fn fails or panics.
func (s *Store) run(tx *Tx, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
	}()

	if err = fn(); err != nil {
		tx.rollback()
	}
	return err
}

func (s *Store) AfterCommit(ctx context.Context, fn func()) {
	if tx := txFrom(ctx); tx != nil {
		tx.afterCommit = append(tx.afterCommit, fn)
		return
	}
	fn()
}

// Read runs fn under the read lock unless ctx already belongs to a unit of work.
func (s *Store) Read(ctx context.Context, fn func()) {
	if txFrom(ctx) != nil {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Write runs fn with a Tx to record undo steps. Outside a unit of work fn gets its own
// single-statement unit, rolled back if fn fails.
func (s *Store) Write(ctx context.Context, fn func(tx *Tx) error) error {
	if tx := txFrom(ctx); tx != nil {
		return fn(tx)
	}
	tx := &Tx{}
	return s.run(tx, func() error { return fn(tx) })
}

// NextSequence returns a strictly increasing number, used to order ledger rows.
func (s *Store) NextSequence() int64 {
	return s.seq.Add(1)
}
