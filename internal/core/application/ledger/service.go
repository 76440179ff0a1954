package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

// Service maps account names to the assets they hold in custody. Every
// method runs as a step on its own, or joins the step carried by ctx.
type Service struct {
	repoManager ports.RepoManager
}

func NewService(repoManager ports.RepoManager) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{repoManager}, nil
}

// Credit merges assets into the balance of account, creating the record if
// not existing. The record is stored with the given payer.
func (s *Service) Credit(
	ctx context.Context, account string, assets domain.AssetSet, payer string,
) error {
	if err := domain.ValidateName(account); err != nil {
		return err
	}
	if err := domain.ValidateName(payer); err != nil {
		return err
	}
	if err := assets.Validate(); err != nil {
		return err
	}
	if assets.IsEmpty() {
		return nil
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := s.repoManager.AccountRepository()

			acc, err := repo.GetAccount(ctx, account)
			if err != nil {
				if !errors.Is(err, domain.ErrAccountNotFound) {
					return nil, err
				}
				if acc, err = domain.NewAccount(account); err != nil {
					return nil, err
				}
			}

			if err := acc.Credit(assets); err != nil {
				return nil, err
			}
			acc.Payer = payer

			return nil, repo.SaveAccount(ctx, *acc)
		},
	)
	return err
}

// Debit subtracts assets from the balance of account. The record is removed
// once it holds nothing.
func (s *Service) Debit(
	ctx context.Context, account string, assets domain.AssetSet,
) error {
	if err := domain.ValidateName(account); err != nil {
		return err
	}
	if err := assets.Validate(); err != nil {
		return err
	}
	if assets.IsEmpty() {
		return nil
	}

	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := s.repoManager.AccountRepository()

			acc, err := repo.GetAccount(ctx, account)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return nil, fmt.Errorf("%w: %s", err, account)
				}
				return nil, err
			}

			if err := acc.Debit(assets); err != nil {
				return nil, err
			}

			if acc.IsEmpty() {
				return nil, repo.DeleteAccount(ctx, account)
			}
			return nil, repo.SaveAccount(ctx, *acc)
		},
	)
	return err
}

// BalanceOf returns the assets held by account, an empty set if the account
// does not exist.
func (s *Service) BalanceOf(
	ctx context.Context, account string,
) (domain.AssetSet, error) {
	if err := domain.ValidateName(account); err != nil {
		return domain.AssetSet{}, err
	}

	acc, err := s.repoManager.AccountRepository().GetAccount(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.AssetSet{}, nil
		}
		return domain.AssetSet{}, err
	}
	return acc.Assets, nil
}

// GetAccount returns the account record, ErrAccountNotFound if missing.
func (s *Service) GetAccount(
	ctx context.Context, account string,
) (*domain.Account, error) {
	return s.repoManager.AccountRepository().GetAccount(ctx, account)
}

func (s *Service) ListAccounts(
	ctx context.Context, page *domain.Page,
) ([]domain.Account, error) {
	return s.repoManager.AccountRepository().ListAccounts(ctx, page)
}
