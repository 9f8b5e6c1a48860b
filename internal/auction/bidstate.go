package auction

import "github.com/jensholdgaard/fantasy-auction/internal/store"

// Bid status values.
const (
	StatusOpen    = "open"
	StatusBidding = "bidding"
	StatusSold    = "sold"
	StatusUnsold  = "unsold"
)

// BidState is the mutable state of the one player currently up for auction.
// It moves open -> bidding -> sold|unsold; a fresh BidState is created for
// every player transition. Price legality lives here; budget legality is
// the engine's job.
type BidState struct {
	Player        *store.Player
	Category      store.Category
	CurrentBid    int
	LeadingBidder string // owner ID, empty until a bid lands
	Status        string
}

// NewBidState opens bidding on a player at the player's base price.
func NewBidState(p *store.Player, cat store.Category) *BidState {
	return &BidState{
		Player:     p,
		Category:   cat,
		CurrentBid: p.BasePrice,
		Status:     StatusOpen,
	}
}

// Allows checks whether amount is a legal bid price right now, without
// changing state. A bid must exceed the current price, except that a
// different owner may take the current asking price exactly: the first bid
// lands at the base price, and a price raised by Raise is a proposal any
// owner other than the leading bidder can confirm at face value.
func (b *BidState) Allows(ownerID string, amount int) error {
	if b.Status != StatusOpen && b.Status != StatusBidding {
		return ErrNoLivePlayer
	}
	if amount > b.CurrentBid {
		return nil
	}
	if amount == b.CurrentBid && ownerID != b.LeadingBidder {
		return nil
	}
	return ErrInvalidBid
}

// Place records a bid. Callers must have validated the price with Allows
// and the bidder's budget with the ledger.
func (b *BidState) Place(ownerID string, amount int) error {
	if err := b.Allows(ownerID, amount); err != nil {
		return err
	}
	b.CurrentBid = amount
	b.LeadingBidder = ownerID
	b.Status = StatusBidding
	return nil
}

// Raise bumps the asking price by the category's adder and returns the new
// price. It is a price proposal only: no bidder is attached and no budget
// is checked, so a raise never commits anyone to anything.
func (b *BidState) Raise() (int, error) {
	if b.Status != StatusOpen && b.Status != StatusBidding {
		return 0, ErrNoLivePlayer
	}
	b.CurrentBid += b.Category.Adder
	return b.CurrentBid, nil
}

// MarkSold closes bidding with a sale to the leading bidder.
func (b *BidState) MarkSold() error {
	if b.Status != StatusOpen && b.Status != StatusBidding {
		return ErrNoLivePlayer
	}
	if b.LeadingBidder == "" || b.CurrentBid <= 0 {
		return ErrNoActiveBid
	}
	b.Status = StatusSold
	return nil
}

// MarkUnsold closes bidding without a sale. Legal whether or not a bid
// exists; the auctioneer may decline to finalize.
func (b *BidState) MarkUnsold() error {
	if b.Status != StatusOpen && b.Status != StatusBidding {
		return ErrNoLivePlayer
	}
	b.Status = StatusUnsold
	b.LeadingBidder = ""
	return nil
}
