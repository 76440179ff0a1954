package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the held amount
	// of some asset.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAssetNotFound is returned when removing a non-fungible item that is
	// not held. It is a kind of ErrInsufficientBalance.
	ErrAssetNotFound = fmt.Errorf("%w: asset not found", ErrInsufficientBalance)
	// ErrInvalidDestination is returned when a transfer notification is not
	// addressed to the ledger account.
	ErrInvalidDestination = errors.New("invalid deposit destination")
	// ErrUnauthorized is returned when the operation misses the required
	// authorization.
	ErrUnauthorized = errors.New("missing required authorization")
	// ErrNotFound is the generic error for missing records.
	ErrNotFound = errors.New("not found")
	// ErrAccountNotFound ...
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	// ErrEscrowNotFound ...
	ErrEscrowNotFound = fmt.Errorf("escrow %w", ErrNotFound)
	// ErrExpiredEscrow is returned when settling an escrow past its expiry.
	ErrExpiredEscrow = errors.New("escrow is expired")
	// ErrEscrowNotExpired is returned when sweeping an escrow whose expiry
	// has not been reached yet.
	ErrEscrowNotExpired = errors.New("escrow is not expired yet")
	// ErrInvalidInput is returned for malformed asset bundles or identifiers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContractPaused is returned by every mutating operation while the
	// ledger is paused.
	ErrContractPaused = errors.New("contract is paused")
	// ErrActorBlocked ...
	ErrActorBlocked = errors.New("actor is not allowed")
	// ErrContractBlocked ...
	ErrContractBlocked = errors.New("contract is not allowed")
)

// AssetError reports which asset caused a balance operation to fail.
type AssetError struct {
	Asset string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s for %s", e.Err, e.Asset)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
