package errors

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorType string

const (
	ErrTypeNotFound            ErrorType = "NOT_FOUND"
	ErrTypeValidation          ErrorType = "VALIDATION"
	ErrTypeStoreUnavailable    ErrorType = "STORE_UNAVAILABLE"
	ErrTypeConstraintViolation ErrorType = "CONSTRAINT_VIOLATION"
	ErrTypeSchemaMismatch      ErrorType = "SCHEMA_MISMATCH"
	ErrTypeUnavailable         ErrorType = "UNAVAILABLE"
	ErrTypeInternal            ErrorType = "INTERNAL"
)

const pgUniqueViolation = "23505"

// database/sql does not export the error returned after DB.Close.
const sqlDBClosed = "sql: database is closed"

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte

	// Details carries structured context for the response body, e.g. the
	// candidates tried while resolving an aggregation dimension.
	Details map[string]any
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

// WithDetail attaches a key to the response body and returns e for chaining.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Validation(message string, err error) *DomainError {
	return New(ErrTypeValidation, message, err)
}

func StoreUnavailable(message string, err error) *DomainError {
	return New(ErrTypeStoreUnavailable, message, err)
}

func ConstraintViolation(message string, err error) *DomainError {
	return New(ErrTypeConstraintViolation, message, err)
}

func SchemaMismatch(message string, err error) *DomainError {
	return New(ErrTypeSchemaMismatch, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// FromStore classifies an error returned by gorm or the underlying driver.
// Errors that are already a *DomainError pass through unchanged.
func FromStore(message string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return de
	}

	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(message, err)
	case IsDuplicateKey(err):
		return ConstraintViolation(message, err)
	case isConnectionError(err):
		return StoreUnavailable(message, err)
	default:
		return Internal(message, err)
	}
}

// IsDuplicateKey reports unique-index violations from either supported driver.
func IsDuplicateKey(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if stderrors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	if stderrors.Is(err, driver.ErrBadConn) || stderrors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), sqlDBClosed)
}

// TypeOf returns the ErrorType of err, or ErrTypeInternal for foreign errors.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch TypeOf(err) {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeValidation, ErrTypeSchemaMismatch:
		return http.StatusBadRequest
	case ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
