package manager

import (
	"errors"
	"fmt"

	"github.com/tecu23/sideduel-server/internal/rules"
	"github.com/tecu23/sideduel-server/pkg/repository"
)

// Request rejections. None of them change the session.
var (
	ErrSessionNotFound    = repository.ErrSessionNotFound
	ErrGameFinished       = errors.New("game already finished")
	ErrSideDuelInProgress = errors.New("side duel in progress")
	ErrNoSideDuel         = errors.New("no side duel in progress")
	ErrCapturePending     = errors.New("capture resolution pending")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNotParticipant     = errors.New("player not part of this game")
	ErrIllegalMove        = rules.ErrIllegalMove
	ErrDrawDuringDuel     = fmt.Errorf("cannot offer draw during side duel: %w", ErrSideDuelInProgress)
)

// InternalFaultError means the rules engine refused a move the manager had already
// validated. It is deliberately not unwrappable into ErrIllegalMove.
type InternalFaultError struct {
	Op  string
	Err error
}

func (e *InternalFaultError) Error() string {
	return fmt.Sprintf("internal fault: %s: %v", e.Op, e.Err)
}
