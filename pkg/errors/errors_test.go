package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusConflict, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if !IsCode(fmt.Errorf("outer: %w", wrapped), CodeConflict) {
		t.Fatalf("IsCode should see through fmt wrapping")
	}
	if Wrap(CodeInternal, nil, "nil cause").Unwrap() != nil {
		t.Fatalf("nil cause should not be wrapped")
	}
}

func TestFieldErrors(t *testing.T) {
	err := FieldErrors(map[string]string{"email": "must be a valid email"})
	if err.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", err.Code())
	}
	details, ok := err.Details().(map[string]string)
	if !ok || details["email"] == "" {
		t.Fatalf("expected email detail, got %#v", err.Details())
	}
}

func TestClassifyDB(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, want: CodeConflict},
		{name: "pq foreign key", err: &pq.Error{Code: "23503"}, want: CodeValidation},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: CodeConflict},
		{name: "sqlite foreign key", err: fmt.Errorf("delete: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}), want: CodeValidation},
		{name: "pgx deadlock", err: &pgconn.PgError{Code: "40P01"}, want: CodeDependency},
		{name: "other", err: stdErrors.New("connection refused"), want: CodeDependency},
		{name: "already typed", err: New(CodeNotFound, "gone"), want: CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := As(ClassifyDB(tt.err, "save"))
			if got == nil || got.Code() != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, got)
			}
		})
	}
	if ClassifyDB(nil, "noop") != nil {
		t.Fatalf("nil error should classify to nil")
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	err := Wrap(CodeConflict, &pgconn.PgError{Code: "23505", ConstraintName: "empleados_email_key", TableName: "empleados"}, "duplicate")
	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("unexpected code %s", d.Code)
	}
	if d.DB == nil || d.DB.Constraint != "empleados_email_key" || d.DB.Table != "empleados" {
		t.Fatalf("postgres fields not extracted: %+v", d)
	}
	if d.DB.Driver != "postgres" || d.Retryable {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	d := Dump(Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "load"))
	if d.DB != nil {
		t.Fatalf("expected no driver failure, got %+v", d.DB)
	}
	if !d.Retryable {
		t.Fatalf("dependency errors are retryable")
	}
	if (*DBFailure)(nil).LogFields() != nil {
		t.Fatalf("nil failure should yield no fields")
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	plain := Newf(CodeValidation, "%s is not available", "Chilaquiles")
	if plain.Error() != "VALIDATION_ERROR: Chilaquiles is not available" {
		t.Fatalf("unexpected message %q", plain.Error())
	}
	wrapped := Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "load dish")
	if wrapped.Error() != "DEPENDENCY_ERROR: load dish: dial tcp: refused" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
	var nilErr *Error
	if nilErr.Code() != CodeInternal || nilErr.WithDetails("x") != nil || IsCode(nil, CodeInternal) {
		t.Fatal("nil error should report internal and carry nothing")
	}
}
