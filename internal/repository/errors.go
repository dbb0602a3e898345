// Package repository implements the MySQL data access layer for identities
// and reports. The sentinel errors below let the service layer tell apart
// the failure scenarios it maps onto API errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Create when the normalized email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrResetTokenInvalid is returned when a password reset token is unknown,
// already consumed or expired.
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
