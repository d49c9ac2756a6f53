// Package repository holds the MySQL-backed stores for users and refresh
// tokens, the transaction-scoped account lock, and the Redis profile cache.
//
// Lookups that match no row return sql.ErrNoRows unchanged so callers can
// branch on it with errors.Is.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned by UserRepo.Create when the unique index on
// users.email rejects the insert. Two registrations racing for the same
// address end here.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
