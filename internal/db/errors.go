package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants name the failing command in error context.
const (
	OpPing    = "PING"
	OpHGetAll = "HGETALL"
	OpExec    = "EXEC"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncr    = "INCR"
	OpIncrBy  = "INCRBY"
	OpExpire  = "EXPIRE"
	OpZRange  = "ZRANGE"

	OpSelect = "SELECT"
	OpInsert = "INSERT"
	OpSchema = "SCHEMA"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
