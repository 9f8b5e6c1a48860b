package auction

import (
	"errors"
	"fmt"
)

// Errors returned by auction operations. All are recoverable: the engine
// rejects the operation and leaves state unchanged.
var (
	ErrInvalidBid          = errors.New("bid does not beat the current price")
	ErrInsufficientBudget  = errors.New("bid exceeds remaining budget")
	ErrExceedsSquadReserve = errors.New("bid would leave too little budget to fill the remaining squad slots")
	ErrSquadFull           = errors.New("squad is already full")
	ErrNoActiveBid         = errors.New("no leading bidder to sell to")
	ErrCategoryExhausted   = errors.New("already on the last category")
	ErrNoLivePlayer        = errors.New("no player is up for auction")
	ErrNoBidderSelected    = errors.New("no bidder selected")
	ErrUnknownOwner        = errors.New("unknown team owner")
)

// PersistenceError wraps a store write failure during FinalizeSale or
// ResetAuction. In-memory state is left untouched when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
