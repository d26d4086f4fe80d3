// Package repository defines the MySQL data access layer and the error
// values that are reused across repositories. These sentinel values
// allow higher layers such as the booking ledger and the handlers to
// distinguish a missing row from a storage failure without inspecting
// driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrRoomNotFound is returned when no room matches the requested id.
var ErrRoomNotFound = errors.New("room not found")

// ErrUserNotFound is returned when no user matches the requested id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrBookingNotFound is returned when no booking matches the requested id
// or confirmation code.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEmailExists is returned by UserRepo.Create when the unique email
// index rejects the insert.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
