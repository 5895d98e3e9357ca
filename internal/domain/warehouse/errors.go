package warehouse

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks failures where the sink could not be reached at all.
var ErrUnavailable = errors.New("warehouse unavailable")

// BatchError identifies the batch a sink rejected.
type BatchError struct {
	Table string
	Batch int
	Rows  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("table %s batch %d (%d rows): %v", e.Table, e.Batch, e.Rows, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
