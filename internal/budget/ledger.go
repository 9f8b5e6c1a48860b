// Package budget tracks each team owner's remaining purse during an auction
// and answers whether a given bid is legal under the squad-reserve rule.
package budget

import "fmt"

// account holds one owner's purse state.
type account struct {
	initial   int
	remaining int
	owned     int
}

// Ledger tracks remaining budgets and squad slots for all owners in a
// tournament. MaxBid and CanBid are pure queries; CommitSale is the single
// mutation point outside Reset. The Ledger is not safe for concurrent use;
// the auction engine serializes access.
type Ledger struct {
	maxPlayers int
	accounts   map[string]*account
}

// NewLedger creates an empty ledger. maxPlayers is the squad size every
// owner must be able to fill.
func NewLedger(maxPlayers int) *Ledger {
	return &Ledger{
		maxPlayers: maxPlayers,
		accounts:   make(map[string]*account),
	}
}

// Seed registers an owner with their configured initial budget and current
// state. remaining and owned come from the store so a restarted process can
// resume an in-progress auction.
func (l *Ledger) Seed(ownerID string, initialBudget, remaining, owned int) {
	l.accounts[ownerID] = &account{
		initial:   initialBudget,
		remaining: remaining,
		owned:     owned,
	}
}

// SlotsRemaining returns how many squad slots the owner has left to fill.
// Unknown owners have zero slots.
func (l *Ledger) SlotsRemaining(ownerID string) int {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return 0
	}
	return l.maxPlayers - acct.owned
}

// Remaining returns the owner's remaining budget.
func (l *Ledger) Remaining(ownerID string) int {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return 0
	}
	return acct.remaining
}

// Owned returns how many players the owner has bought so far.
func (l *Ledger) Owned(ownerID string) int {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return 0
	}
	return acct.owned
}

// MaxBid returns the most the owner could legally bid right now. The owner
// must keep enough budget back to fill every remaining slot after this
// purchase at minBasePrice, the cheapest base price among currently unsold
// players (0 if none).
func (l *Ledger) MaxBid(ownerID string, minBasePrice int) int {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return 0
	}
	slots := l.maxPlayers - acct.owned
	if slots <= 0 {
		return 0
	}
	max := acct.remaining - (slots-1)*minBasePrice
	if max < 0 {
		return 0
	}
	return max
}

// CanBid reports whether the owner may participate in bidding at all: they
// need an open slot and enough budget to fill every remaining slot at
// minBasePrice.
func (l *Ledger) CanBid(ownerID string, minBasePrice int) bool {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return false
	}
	slots := l.maxPlayers - acct.owned
	return slots > 0 && acct.remaining >= slots*minBasePrice
}

// CommitSale deducts amount from the owner's budget and consumes one squad
// slot. Callers must have validated the bid via MaxBid/CanBid first.
func (l *Ledger) CommitSale(ownerID string, amount int) error {
	acct, ok := l.accounts[ownerID]
	if !ok {
		return fmt.Errorf("unknown owner %s", ownerID)
	}
	acct.remaining -= amount
	acct.owned++
	return nil
}

// Reset restores every owner's budget to their initial amount and clears
// owned counts. Used only by full auction reset.
func (l *Ledger) Reset() {
	for _, acct := range l.accounts {
		acct.remaining = acct.initial
		acct.owned = 0
	}
}
