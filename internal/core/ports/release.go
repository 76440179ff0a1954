package ports

import (
	"context"

	"github.com/tdex-network/custodyd/internal/core/domain"
)

// ReleaseSender delivers a release request to the host, which moves the
// assets out of the ledger custody.
type ReleaseSender interface {
	SendRelease(ctx context.Context, release domain.Release) error
}
