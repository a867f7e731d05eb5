package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Rule errors. A move rejected with one of these leaves the position unchanged.
var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidMove        = errors.New("invalid move")
	ErrUnknownMove        = errors.New("unknown move")
	ErrBlockedCannotMove  = errors.New("blocked piece can not move")
	ErrPieceNotFound      = errors.New("could not find the piece")
	ErrSkipNotAllowed     = errors.New("skipping turns is not allowed")
	ErrNothingToUndo      = errors.New("no move to undo")
)

// InvariantError reports a position whose masks contradict each other. It is
// never caused by user input; callers should stop rather than continue play.
type InvariantError struct {
	Square Square
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Square.IsValid() {
		return fmt.Sprintf("board invariant violated at %s: %s", e.Square, e.Reason)
	}
	return "board invariant violated: " + e.Reason
}

// IsInvariant reports whether err carries an *InvariantError.
func IsInvariant(err error) bool {
	var inv *InvariantError
	return errors.As(err, &inv)
}
