package tasks

import (
	"errors"
	"fmt"
)

var errBookIDRequired = errors.New("book_id is required for enrich_book task")

// UnknownTaskError is returned by NewTask for an unsupported task type.
type UnknownTaskError struct {
	Type string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task type: %s", e.Type)
}
