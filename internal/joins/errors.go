package joins

import (
	"fmt"
	"strings"
)

// SchemaNotFoundError reports a dotted path naming an undeclared entity.
type SchemaNotFoundError struct {
	Type string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema not found for type %q", e.Type)
}

// FieldNotFoundError reports a final path segment that is not a declared
// field on the resolved target type.
type FieldNotFoundError struct {
	Type  string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found on type %q", e.Field, e.Type)
}

// FieldNotIndexedError reports a cross-table filter target that is declared
// but not indexed. Filtering on unindexed related fields is rejected before
// any SQL executes.
type FieldNotIndexedError struct {
	Type  string
	Field string
}

func (e *FieldNotIndexedError) Error() string {
	return fmt.Sprintf("field %q on type %q is not searchable: add indexed: true to its declaration", e.Field, e.Type)
}

// RelationshipNotFoundError reports that no declared relationship path
// connects the two types.
type RelationshipNotFoundError struct {
	From string
	To   string
}

func (e *RelationshipNotFoundError) Error() string {
	return fmt.Sprintf("no relationship path from %q to %q", e.From, e.To)
}

// CircularReferenceError reports that resolving a path walked back into a
// type already on the search path. Cycle holds the full traversal, ending at
// the repeated type.
type CircularReferenceError struct {
	Cycle []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular relationship reference: %s", strings.Join(e.Cycle, " -> "))
}
