package georoute

import (
	"errors"
	"fmt"

	"github.com/hupe1980/georoute/model"
)

var (
	// ErrNoDatabases is returned when a Service is created or opened without databases.
	ErrNoDatabases = errors.New("georoute: no databases")

	// ErrNotOpen is returned when a closed Service is queried.
	ErrNotOpen = errors.New("georoute: not open")

	// ErrDuplicateDatabase is returned when two databases share a path.
	ErrDuplicateDatabase = errors.New("georoute: duplicate database path")
)

// ErrUnknownDatabase indicates a database id that is not registered.
type ErrUnknownDatabase struct {
	ID model.DatabaseID
}

func (e *ErrUnknownDatabase) Error() string {
	return fmt.Sprintf("georoute: unknown database %d", e.ID)
}

// ErrOpenDatabase indicates which database failed to open.
//
// The underlying error is available via errors.Unwrap.
type ErrOpenDatabase struct {
	Path  string
	cause error
}

func (e *ErrOpenDatabase) Error() string {
	return fmt.Sprintf("georoute: open %s: %v", e.Path, e.cause)
}

func (e *ErrOpenDatabase) Unwrap() error { return e.cause }
