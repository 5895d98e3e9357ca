package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRunInProgress         = errors.New("pipeline run already in progress")
)

type LoadPhase string

const (
	LoadPhaseDimension LoadPhase = "dimension"
	LoadPhaseFact      LoadPhase = "fact"
)

// LoadError reports a table write that aborted its phase. Tables committed earlier stay.
type LoadError struct {
	Phase LoadPhase
	Table string
	Batch int
	Rows  int
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s phase failed at table %s batch %d (%d rows): %v", e.Phase, e.Table, e.Batch, e.Rows, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
