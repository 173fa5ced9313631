// Package sqlerr specifically handles PostgreSQL driver errors.
//
// It parses SQLSTATE codes from the driver and converts them into
// *Error values carrying a category (unique violation, undefined
// table, ...) and a message fit to be shown to API clients.
package sqlerr

import "fmt"

// Code is the category of a database error.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
	InvalidTextRepresentation
	UndefinedTable
	ConnectionFailure
	InsufficientResources
	QueryCanceled
)

var codeNames = map[Code]string{
	Other:                     "other",
	UniqueViolation:           "unique_violation",
	ForeignKeyViolation:       "foreign_key_violation",
	NotNullViolation:          "not_null_violation",
	CheckViolation:            "check_violation",
	InvalidTextRepresentation: "invalid_text_representation",
	UndefinedTable:            "undefined_table",
	ConnectionFailure:         "connection_failure",
	InsufficientResources:     "insufficient_resources",
	QueryCanceled:             "query_canceled",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// MapCode maps a SQLSTATE to a Code.
//
// Exact codes are checked first, then the two-character class.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidTextRepresentation
	case "42P01":
		return UndefinedTable
	case "57014":
		return QueryCanceled
	}

	if len(sqlState) < 2 {
		return Other
	}
	switch sqlState[:2] {
	case "08":
		return ConnectionFailure
	case "53":
		return InsufficientResources
	}
	return Other
}

// Severity is the severity reported by the server.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityError
	SeverityFatal
	SeverityPanic
	SeverityWarning
	SeverityNotice
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	case SeverityPanic:
		return "PANIC"
	case SeverityWarning:
		return "WARNING"
	case SeverityNotice:
		return "NOTICE"
	default:
		return "UNKNOWN"
	}
}

// MapSeverity maps the server's severity string to a Severity.
func MapSeverity(severity string) Severity {
	switch severity {
	case "ERROR":
		return SeverityError
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	case "NOTICE":
		return SeverityNotice
	default:
		return SeverityUnknown
	}
}

// Error is a normalized PostgreSQL error.
//
// Message is client-facing; the raw server message stays reachable
// through Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	AppCode        string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}
