package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// withTx executes fn within a transaction. Rollback is guaranteed on every
// exit path so a failed multi-statement write leaves zero rows visible.
func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
