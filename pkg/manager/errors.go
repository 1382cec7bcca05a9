package manager

import (
	"errors"
	"fmt"

	"github.com/cabinetfs/go-cab/internal/types"
)

// CabFailure wraps an error from one cabinet in a batch with the path
// that produced it, so a caller juggling several cabinets in one
// Manager.Run call can tell which one failed without re-deriving it
// from Result.Request.
type CabFailure struct {
	CabinetPath string
	Err         error
}

func (e *CabFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.CabinetPath, e.Err)
}

func (e *CabFailure) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is, or wraps, a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, types.ErrCancelled)
}
