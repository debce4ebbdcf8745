package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ConstraintKind names the class of a database constraint violation.
type ConstraintKind int

const (
	UniqueViolation ConstraintKind = iota + 1
	ForeignKeyViolation
	CheckViolation
)

func (k ConstraintKind) String() string {
	switch k {
	case UniqueViolation:
		return "unique"
	case ForeignKeyViolation:
		return "foreign key"
	case CheckViolation:
		return "check"
	default:
		return "unknown"
	}
}

// ConstraintError wraps a driver error classified as a constraint
// violation, carrying the statement that triggered it.
type ConstraintError struct {
	Kind ConstraintKind
	SQL  string
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("schema: %s constraint violation: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsConstraintError reports whether err is any constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e)
}

// IsUniqueViolation reports whether err is a uniqueness violation.
func IsUniqueViolation(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) && e.Kind == UniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) && e.Kind == ForeignKeyViolation
}

// IsCheckViolation reports whether err is a check violation.
func IsCheckViolation(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) && e.Kind == CheckViolation
}

// Driver error probes. lib/pq errors expose SQLState, mysql errors
// expose Number, and modernc.org/sqlite errors expose Code.
type sqlStateError interface{ SQLState() string }
type errorNumberer interface{ Number() uint16 }
type errorCoder interface{ Code() int }

// PostgreSQL SQLSTATE class 23 codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451
	mysqlForeignKeyChild  = 1452
	mysqlCheckViolation   = 3819
)

// SQLite extended result codes.
const (
	sqliteConstraintCheck      = 275
	sqliteConstraintForeignKey = 787
	sqliteConstraintUnique     = 2067
)

// classifyConstraint maps a raw driver error onto a ConstraintKind.
func classifyConstraint(err error) (ConstraintKind, bool) {
	if err == nil {
		return 0, false
	}
	if e, ok := errorAs[sqlStateError](err); ok {
		switch e.SQLState() {
		case pgUniqueViolation:
			return UniqueViolation, true
		case pgForeignKeyViolation:
			return ForeignKeyViolation, true
		case pgCheckViolation:
			return CheckViolation, true
		}
	}
	if e, ok := errorAs[errorNumberer](err); ok {
		switch e.Number() {
		case mysqlDuplicateEntry:
			return UniqueViolation, true
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ForeignKeyViolation, true
		case mysqlCheckViolation:
			return CheckViolation, true
		}
	}
	if e, ok := errorAs[errorCoder](err); ok {
		switch e.Code() {
		case sqliteConstraintUnique:
			return UniqueViolation, true
		case sqliteConstraintForeignKey:
			return ForeignKeyViolation, true
		case sqliteConstraintCheck:
			return CheckViolation, true
		}
	}
	msg := err.Error()
	switch {
	case containsAny(msg, "violates unique constraint", "UNIQUE constraint failed", "Error 1062"):
		return UniqueViolation, true
	case containsAny(msg, "violates foreign key constraint", "FOREIGN KEY constraint failed", "Error 1451", "Error 1452"):
		return ForeignKeyViolation, true
	case containsAny(msg, "violates check constraint", "CHECK constraint failed", "Error 3819"):
		return CheckViolation, true
	}
	return 0, false
}

// wrapConstraint attaches the statement to a classified driver error
// and passes everything else through untouched.
func wrapConstraint(sqlStr string, err error) error {
	if kind, ok := classifyConstraint(err); ok {
		return &ConstraintError{Kind: kind, SQL: sqlStr, Err: err}
	}
	return err
}

func errorAs[T any](err error) (T, bool) {
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	var zero T
	return zero, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
