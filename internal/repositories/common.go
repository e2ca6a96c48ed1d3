package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intconfig "voyage/internal/config"
	intdb "voyage/internal/db"
	"voyage/internal/domain"
)

func pickDB(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

// mapRowErr turns sql.ErrNoRows into a NotFoundError for resource.
func mapRowErr(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

// mapWriteErr turns duplicate-key violations into a ConflictError.
func mapWriteErr(err error, resource, msg string) error {
	if intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: resource, Msg: msg, Err: err}
	}
	return err
}

// requireAffected returns NotFoundError when an UPDATE/DELETE touched no row.
func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}

// withTx runs fn in a transaction and commits when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
