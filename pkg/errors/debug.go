package errors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
	constraintCheck
)

// DBFailure is the driver error found in an error chain.
type DBFailure struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`

	kind constraintKind
}

// ErrorDump flattens an error for structured logs.
type ErrorDump struct {
	TopMessage string     `json:"top_message"`
	Code       Code       `json:"code,omitempty"`
	Retryable  bool       `json:"retryable"`
	Chain      []string   `json:"chain,omitempty"`
	DB         *DBFailure `json:"db,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB = dbFailure(err)
	return d
}

// LogFields returns the driver fields worth attaching to an error log.
func (f *DBFailure) LogFields() map[string]any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"db_driver":     f.Driver,
		"db_code":       f.Code,
		"db_constraint": f.Constraint,
		"db_table":      f.Table,
		"db_detail":     f.Detail,
		"db_message":    f.Message,
	}
}

func dbFailure(err error) *DBFailure {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBFailure{
			Driver:     "postgres",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
			kind:       kindFromSQLState(pgxErr.Code),
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBFailure{
			Driver:     "postgres",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
			kind:       kindFromSQLState(string(pqErr.Code)),
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &DBFailure{
			Driver:  "sqlite",
			Code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
			kind:    kindFromSQLite(liteErr.ExtendedCode),
		}
	}
	return nil
}

func kindFromSQLState(code string) constraintKind {
	switch code {
	case pgUniqueViolation:
		return constraintUnique
	case pgForeignKeyViolation:
		return constraintForeignKey
	case pgCheckViolation:
		return constraintCheck
	}
	return constraintNone
}

func kindFromSQLite(code sqlite3.ErrNoExtended) constraintKind {
	switch code {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return constraintUnique
	case sqlite3.ErrConstraintForeignKey:
		return constraintForeignKey
	case sqlite3.ErrConstraintCheck:
		return constraintCheck
	}
	return constraintNone
}
