package allow

import (
	"context"
	"fmt"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

// Service holds the pause switch and the actor and contract allow lists.
// Mutations are reserved to the host admin.
type Service struct {
	repoManager      ports.RepoManager
	authorizer       ports.Authorizer
	allowListEnabled bool
}

func NewService(
	repoManager ports.RepoManager, authorizer ports.Authorizer,
	allowListEnabled bool,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("missing authorizer")
	}
	return &Service{repoManager, authorizer, allowListEnabled}, nil
}

func (s *Service) SetPaused(ctx context.Context, paused bool) error {
	if err := s.authorizer.RequireAdmin(ctx); err != nil {
		return err
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := s.repoManager.AllowRepository()
			config, err := repo.GetConfig(ctx)
			if err != nil {
				return nil, err
			}
			config.Paused = paused
			return nil, repo.SaveConfig(ctx, *config)
		},
	)
	return err
}

func (s *Service) IsPaused(ctx context.Context) (bool, error) {
	config, err := s.repoManager.AllowRepository().GetConfig(ctx)
	if err != nil {
		return false, err
	}
	return config.Paused, nil
}

func (s *Service) SetActor(
	ctx context.Context, name string, allowed, blocked bool,
) error {
	return s.setEntry(ctx, domain.AllowKindActor, name, allowed, blocked)
}

func (s *Service) SetContract(
	ctx context.Context, name string, allowed, blocked bool,
) error {
	return s.setEntry(ctx, domain.AllowKindContract, name, allowed, blocked)
}

func (s *Service) ListActors(ctx context.Context) ([]domain.AllowEntry, error) {
	return s.repoManager.AllowRepository().ListEntries(ctx, domain.AllowKindActor)
}

func (s *Service) ListContracts(ctx context.Context) ([]domain.AllowEntry, error) {
	return s.repoManager.AllowRepository().ListEntries(ctx, domain.AllowKindContract)
}

// CheckNotPaused returns ErrContractPaused while the ledger is paused.
func (s *Service) CheckNotPaused(ctx context.Context) error {
	paused, err := s.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return domain.ErrContractPaused
	}
	return nil
}

// CheckActor returns ErrActorBlocked if name is not allowed to operate.
func (s *Service) CheckActor(ctx context.Context, name string) error {
	ok, err := s.permits(ctx, domain.AllowKindActor, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrActorBlocked, name)
	}
	return nil
}

// CheckContract returns ErrContractBlocked if assets issued by name are not
// accepted.
func (s *Service) CheckContract(ctx context.Context, name string) error {
	ok, err := s.permits(ctx, domain.AllowKindContract, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrContractBlocked, name)
	}
	return nil
}

// CheckContracts runs CheckContract for the issuer of every token of assets.
func (s *Service) CheckContracts(ctx context.Context, assets domain.AssetSet) error {
	for _, q := range assets.Tokens {
		if err := s.CheckContract(ctx, q.Issuer); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) setEntry(
	ctx context.Context, kind domain.AllowKind, name string,
	allowed, blocked bool,
) error {
	if err := s.authorizer.RequireAdmin(ctx); err != nil {
		return err
	}
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return nil, s.repoManager.AllowRepository().SaveEntry(ctx, domain.AllowEntry{
				Name:    name,
				Kind:    kind,
				Allowed: allowed,
				Blocked: blocked,
			})
		},
	)
	return err
}

func (s *Service) permits(
	ctx context.Context, kind domain.AllowKind, name string,
) (bool, error) {
	entry, err := s.repoManager.AllowRepository().GetEntry(ctx, kind, name)
	if err != nil {
		return false, err
	}
	return entry.Permits(s.allowListEnabled), nil
}
