package importers

import (
	"fmt"
	"strings"
)

// ParseError reports a CSV document that could not be read. Nothing is
// written to the store when it is returned.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed CSV at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a column mapping that cannot drive an import
// because required fields are not mapped to an existing header.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("column mapping is missing required fields: %s", strings.Join(names, ", "))
}
