package datafile

import (
	"errors"
	"fmt"

	"github.com/hupe1980/georoute/model"
)

var (
	// ErrOpen wraps every failure of Open.
	ErrOpen = errors.New("datafile: open failed")
	// ErrClosed is returned when a closed store is accessed.
	ErrClosed = errors.New("datafile: store is closed")
	// ErrAlreadyOpen is returned by Open on an open store.
	ErrAlreadyOpen = errors.New("datafile: store is already open")
)

// ErrInvalidOffset indicates an offset outside the record area of a file.
type ErrInvalidOffset struct {
	File   string
	Offset model.FileOffset
}

func (e *ErrInvalidOffset) Error() string {
	return fmt.Sprintf("datafile: invalid offset %d in %s", e.Offset, e.File)
}
