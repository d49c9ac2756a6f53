package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// AccountLockKey derives the advisory lock key for a user id.
func AccountLockKey(userID int64) int64 {
	return int64(xxhash.Sum64String("user:" + strconv.FormatInt(userID, 10)))
}

// AcquireAdvisoryLock takes an exclusive lock on key for the lifetime of tx.
//
// The lock is the InnoDB row lock on advisory_locks(lock_key). The upsert
// creates the row on first use and otherwise just locks it; a second
// transaction asking for the same key blocks until tx commits or rolls back.
// There is no explicit unlock.
func AcquireAdvisoryLock(ctx context.Context, tx *sql.Tx, key int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO advisory_locks (lock_key) VALUES (?) ON DUPLICATE KEY UPDATE lock_key = lock_key",
		key)
	return err
}
