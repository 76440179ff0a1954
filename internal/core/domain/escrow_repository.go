package domain

import "context"

// EscrowRepository is the abstraction for any kind of database intended to
// persist Escrows, indexed by primary id and by both parties.
type EscrowRepository interface {
	// NextEscrowID increments the persisted escrow counter and returns the
	// new value. The counter is never decremented nor reused.
	NextEscrowID(ctx context.Context) (uint64, error)
	// AddEscrow stores a new escrow. It fails if the id is already taken.
	AddEscrow(ctx context.Context, escrow Escrow) error
	// GetEscrow returns the escrow with the given id or ErrEscrowNotFound.
	GetEscrow(ctx context.Context, id uint64) (*Escrow, error)
	// DeleteEscrow removes the escrow with the given id.
	DeleteEscrow(ctx context.Context, id uint64) error
	// GetEscrowsByFrom returns the open escrows proposed by the given account.
	GetEscrowsByFrom(ctx context.Context, from string) ([]Escrow, error)
	// GetEscrowsByTo returns the open escrows addressed to the given account.
	GetEscrowsByTo(ctx context.Context, to string) ([]Escrow, error)
	// GetExpiredEscrows returns the escrows with expiry lower or equal to the
	// given unix timestamp.
	GetExpiredEscrows(ctx context.Context, now int64) ([]Escrow, error)
	// ListEscrows returns the open escrows sorted by id.
	ListEscrows(ctx context.Context, page *Page) ([]Escrow, error)
}
