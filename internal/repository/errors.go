// Package repository holds the persistence substrates of the booking
// engine.  MySQLStore is the production store; MemoryStore backs tests and
// the in-process development mode.  Both signal a lost optimistic race
// with booking.ErrRevisionConflict and never block a caller on a lock held
// across requests.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers that mean "someone else got there first".
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// ErrInvalidSeed is returned when a seed file describes an impossible
// configuration, such as a space with no slot duration.
var ErrInvalidSeed = errors.New("invalid seed")

// isRaceError reports whether err is a MySQL error produced by a
// concurrent writer rather than by a bad statement.  Such errors are
// surfaced as revision conflicts so the ledger retries them.
func isRaceError(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case mysqlDuplicateEntry, mysqlLockWaitTimeout, mysqlDeadlock:
		return true
	}
	return false
}
