package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across the error taxonomy.
var (
	// ErrSchemaViolation is wrapped by every SchemaViolation.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrUnknownResource is wrapped by every UnknownResourceError.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrQuerySyntax is wrapped by every QuerySyntaxError.
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrSerialization is wrapped by every SerializationError.
	ErrSerialization = errors.New("serialization error")
)

// SchemaViolation reports a write rejected at the boundary: a categorical
// value outside its enumeration, a missing required property, or a
// predicate outside the catalog vocabulary. The store is left unchanged.
type SchemaViolation struct {
	Resource Resource
	Rule     string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation on %s: %s", e.Resource, e.Rule)
}

func (e *SchemaViolation) Is(target error) bool { return target == ErrSchemaViolation }

// UnknownResourceError reports a relationship that references a resource
// never created via AddEntity. The store is left unchanged.
type UnknownResourceError struct {
	Resource Resource
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource: %s", e.Resource)
}

func (e *UnknownResourceError) Is(target error) bool { return target == ErrUnknownResource }

// QuerySyntaxError reports a malformed pattern. The query is aborted and
// no partial results are returned.
type QuerySyntaxError struct {
	Detail string
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("query syntax error: %s", e.Detail)
}

func (e *QuerySyntaxError) Is(target error) bool { return target == ErrQuerySyntax }

// SerializationError reports a corrupt or unrecognized persisted file.
// The load is aborted and any existing in-memory store is untouched.
type SerializationError struct {
	Detail string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serialization error: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("serialization error: %s", e.Detail)
}

func (e *SerializationError) Unwrap() error { return e.Err }

func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }
