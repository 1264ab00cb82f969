package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	models "library/internal/domain/models/library"
	"library/internal/domain/repositories"
)

// DB is an in-process stand-in for the relational store. Repositories created from the
// same DB see the same data, and ExecTx gives all-or-nothing semantics by restoring a
// snapshot when the transaction function fails. Writes made outside a transaction wait
// for the running one to finish.
type DB struct {
	mu   sync.Mutex
	txMu sync.Mutex

	folders      map[string]models.Folder
	content      map[models.Visibility]map[string]models.Content
	interactions []models.Interaction

	clock func() time.Time
	last  time.Time
}

// NewDB creates an empty database
func NewDB() *DB {
	return &DB{
		folders: make(map[string]models.Folder),
		content: map[models.Visibility]map[string]models.Content{
			models.VisibilityPublic:  {},
			models.VisibilityPrivate: {},
		},
		clock: time.Now,
	}
}

// now returns strictly increasing timestamps so ordering by creation time is stable.
// Callers hold mu.
func (db *DB) now() time.Time {
	t := db.clock()
	if !t.After(db.last) {
		t = db.last.Add(time.Microsecond)
	}
	db.last = t
	return t
}

type snapshot struct {
	folders      map[string]models.Folder
	content      map[models.Visibility]map[string]models.Content
	interactions []models.Interaction
}

func (db *DB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := snapshot{
		folders:      maps.Clone(db.folders),
		content:      make(map[models.Visibility]map[string]models.Content, len(db.content)),
		interactions: append([]models.Interaction(nil), db.interactions...),
	}
	for v, rows := range db.content {
		s.content[v] = maps.Clone(rows)
	}
	return s
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.folders = s.folders
	db.content = s.content
	db.interactions = s.interactions
}

type txKey struct{}

// lockWrite takes mu for a write. Outside a transaction it waits for txMu first, so an
// autocommit write never lands between a snapshot and its rollback.
func (db *DB) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		db.mu.Lock()
		return db.mu.Unlock
	}
	db.txMu.Lock()
	db.mu.Lock()
	return func() {
		db.mu.Unlock()
		db.txMu.Unlock()
	}
}

// TransactionManager serialises transactions against a DB
type TransactionManager struct {
	db *DB
}

// NewTransactionManager creates a transaction manager for db
func NewTransactionManager(db *DB) repositories.TransactionManager {
	return &TransactionManager{db: db}
}

// ExecTx runs fn with exclusive access to the DB and rolls back on error
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.db.txMu.Lock()
	defer tm.db.txMu.Unlock()

	snap := tm.db.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tm.db.restore(snap)
		return err
	}
	return nil
}
