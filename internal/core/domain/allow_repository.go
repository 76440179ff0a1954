package domain

import "context"

// AllowRepository persists the allow module state.
type AllowRepository interface {
	GetConfig(ctx context.Context) (*AllowConfig, error)
	SaveConfig(ctx context.Context, config AllowConfig) error
	// GetEntry returns nil without error if no entry exists.
	GetEntry(ctx context.Context, kind AllowKind, name string) (*AllowEntry, error)
	SaveEntry(ctx context.Context, entry AllowEntry) error
	ListEntries(ctx context.Context, kind AllowKind) ([]AllowEntry, error)
}
