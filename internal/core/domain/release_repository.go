package domain

import "context"

// ReleaseRepository is the outbox of release requests.
type ReleaseRepository interface {
	AddRelease(ctx context.Context, release Release) (uint64, error)
	GetRelease(ctx context.Context, id uint64) (*Release, error)
	// GetPendingReleases returns at most limit pending releases, oldest first.
	GetPendingReleases(ctx context.Context, limit int) ([]Release, error)
	UpdateRelease(
		ctx context.Context, id uint64,
		updateFn func(r *Release) (*Release, error),
	) error
	ListReleases(ctx context.Context, page *Page) ([]Release, error)
}
