package atelier

import "fmt"

// ErrorCode is the stable ATELIER-*-style code (§7) tests assert on.
type ErrorCode string

const (
	CodeSchemaViolation    ErrorCode = "ATELIER-LENS-VAL-SCHEMA-001"
	CodeBoundaryViolation  ErrorCode = "ATELIER-LENS-VAL-BOUNDARY-001"
	CodeHashMismatch       ErrorCode = "ATELIER-LENS-VAL-HASH-001"
	CodeInvalidPatchset    ErrorCode = "ATELIER-LENS-VAL-PATCHSET-001"
	CodeScopeViolation     ErrorCode = "ATELIER-LENS-VAL-SCOPE-001"
)

// Error is the single structured error type this package returns.
type Error struct {
	Code    ErrorCode
	Field   string
	Detail  string
	Actual  string
	Want    string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Detail, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// NewSchemaViolation reports a selection/patchset failing a structural
// precondition (wrong schema version, malformed range).
func NewSchemaViolation(detail string) *Error {
	return &Error{Code: CodeSchemaViolation, Detail: detail}
}

// NewBoundaryViolation reports an offset that does not land on a UTF-8
// rune boundary.
func NewBoundaryViolation(detail string) *Error {
	return &Error{Code: CodeBoundaryViolation, Detail: detail}
}

// NewHashMismatch reports a preimage hash field that does not match the
// recomputed value.
func NewHashMismatch(field, want, actual string) *Error {
	return &Error{
		Code:   CodeHashMismatch,
		Field:  field,
		Detail: "preimage hash mismatch",
		Want:   want,
		Actual: actual,
	}
}

// NewInvalidPatchset reports a patchset that is structurally inadmissible
// (empty ops, selection mismatch, boundary_normalization enabled).
func NewInvalidPatchset(detail string) *Error {
	return &Error{Code: CodeInvalidPatchset, Detail: detail}
}

// NewScopeViolation reports a patch application whose result would have
// modified a byte outside the declared selection range. Non-recoverable
// and irreversible (§7): the caller must discard the patch attempt.
func NewScopeViolation(detail string) *Error {
	return &Error{Code: CodeScopeViolation, Detail: detail}
}
