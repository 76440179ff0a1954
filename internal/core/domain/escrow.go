package domain

import (
	"fmt"
	"time"
)

const (
	EscrowStatusProposed EscrowStatus = iota
	EscrowStatusSettled
	EscrowStatusCancelled
)

// EscrowStatus represents the status of an escrow. A proposed escrow can only
// be settled or cancelled, the record is removed in both cases.
type EscrowStatus int

func (s EscrowStatus) String() string {
	switch s {
	case EscrowStatusProposed:
		return "proposed"
	case EscrowStatusSettled:
		return "settled"
	case EscrowStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Escrow is a two-party exchange proposed by From to To. FromAssets are held
// in custody by the escrow until it gets settled or cancelled, ToAssets are
// what To must give in exchange, fixed at proposal time.
type Escrow struct {
	ID         uint64 `badgerhold:"key"`
	From       string `badgerhold:"index"`
	To         string `badgerhold:"index"`
	FromAssets AssetSet
	ToAssets   AssetSet
	Expiry     int64
	Payer      string
	CreatedAt  int64
	Status     EscrowStatus
}

// EscrowGlobal is the singleton record holding the latest assigned escrow id.
type EscrowGlobal struct {
	EscrowID uint64
}

// Next increments the counter and returns the new escrow id.
func (g *EscrowGlobal) Next() uint64 {
	g.EscrowID++
	return g.EscrowID
}

// NewEscrow validates the given arguments and returns a Proposed escrow.
func NewEscrow(
	id uint64, from, to string, fromAssets, toAssets AssetSet,
	expiry, now time.Time,
) (*Escrow, error) {
	if err := ValidateName(from); err != nil {
		return nil, err
	}
	if err := ValidateName(to); err != nil {
		return nil, err
	}
	if from == to {
		return nil, invalidInput("escrow parties must be different accounts")
	}
	if err := fromAssets.Validate(); err != nil {
		return nil, err
	}
	if fromAssets.IsEmpty() {
		return nil, invalidInput("escrow must offer some assets")
	}
	if err := toAssets.Validate(); err != nil {
		return nil, err
	}
	if !expiry.After(now) {
		return nil, invalidInput("escrow expiry must be in the future")
	}

	return &Escrow{
		ID:         id,
		From:       from,
		To:         to,
		FromAssets: fromAssets.Clone(),
		ToAssets:   toAssets.Clone(),
		Expiry:     expiry.Unix(),
		Payer:      from,
		CreatedAt:  now.Unix(),
		Status:     EscrowStatusProposed,
	}, nil
}

// IsExpired returns whether the expiry has been reached at the given time.
func (e *Escrow) IsExpired(now time.Time) bool {
	return !now.Before(time.Unix(e.Expiry, 0))
}

// IsProposed ...
func (e *Escrow) IsProposed() bool {
	return e.Status == EscrowStatusProposed
}

// ExpiryTime ...
func (e *Escrow) ExpiryTime() time.Time {
	return time.Unix(e.Expiry, 0)
}

// Accept brings the escrow to the Settled status. The acceptor must be the
// counterparty, the escrow must not be expired and the given assets must match
// exactly those fixed at proposal time.
func (e *Escrow) Accept(acceptor string, toAssets AssetSet, now time.Time) error {
	if !e.IsProposed() {
		return invalidInput("escrow %d is %s", e.ID, e.Status)
	}
	if acceptor != e.To {
		return fmt.Errorf(
			"%w: escrow %d can be accepted only by %s", ErrUnauthorized, e.ID, e.To,
		)
	}
	if e.IsExpired(now) {
		return fmt.Errorf("%w: escrow %d expired at %d", ErrExpiredEscrow, e.ID, e.Expiry)
	}
	if err := toAssets.Validate(); err != nil {
		return err
	}
	if !toAssets.Equal(e.ToAssets) {
		return invalidInput(
			"escrow %d expects %s, got %s", e.ID, e.ToAssets, toAssets,
		)
	}

	e.Status = EscrowStatusSettled
	return nil
}

// Cancel brings the escrow to the Cancelled status. Before expiry only the
// proposer can cancel, after expiry anyone can.
func (e *Escrow) Cancel(canceller string, now time.Time) error {
	if !e.IsProposed() {
		return invalidInput("escrow %d is %s", e.ID, e.Status)
	}
	if canceller != e.From && !e.IsExpired(now) {
		return fmt.Errorf(
			"%w: escrow %d can be cancelled only by %s before expiry",
			ErrUnauthorized, e.ID, e.From,
		)
	}

	e.Status = EscrowStatusCancelled
	return nil
}

// Expire is like Cancel but it fails if the expiry has not been reached.
func (e *Escrow) Expire(now time.Time) error {
	if !e.IsExpired(now) {
		return fmt.Errorf("%w: escrow %d", ErrEscrowNotExpired, e.ID)
	}
	return e.Cancel("", now)
}
