package service

import (
	"context"

	"captainhub.app/relay/common/logger"
	"captainhub.app/relay/core/db"
	"captainhub.app/relay/core/db/queries"
	"captainhub.app/relay/internal/store"
)

// StoreProvider hands a transactional operation its stores.
type StoreProvider interface {
	EventRecords() store.EventRecordStore
	Workspaces() store.WorkspaceStore
}

// TxRunner runs fn in one transaction; fn's stores are bound to it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	sc := logger.StartSpan(ctx, "db.tx")
	defer sc.End()
	ctx = sc.Context()

	err := r.db.WithTx(ctx, func(q *queries.Queries) error {
		return fn(store.NewStores(q))
	})
	sc.RecordError(err)
	return err
}
