package gateway

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/application/allow"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/application/pubsub"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

const withdrawMemo = "withdraw"

// Service moves assets in and out of the ledger custody. Deposits come from
// host transfer notifications, withdrawals produce release requests that are
// delivered to the host asynchronously.
type Service struct {
	repoManager ports.RepoManager
	ledger      *ledger.Service
	allow       *allow.Service
	pubsub      *pubsub.Service
	authorizer  ports.Authorizer
	cfg         Config
}

func NewService(
	repoManager ports.RepoManager,
	ledgerSvc *ledger.Service,
	allowSvc *allow.Service,
	pubsubSvc *pubsub.Service,
	authorizer ports.Authorizer,
	cfg Config,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("missing ledger service")
	}
	if allowSvc == nil {
		return nil, fmt.Errorf("missing allow service")
	}
	if authorizer == nil {
		return nil, fmt.Errorf("missing authorizer")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Service{
		repoManager, ledgerSvc, allowSvc, pubsubSvc, authorizer, cfg,
	}, nil
}

// OnIncomingTransfer classifies the transfer notification emitted by the
// given contract and, if it is a deposit, credits the sender. Transfers sent
// by the ledger itself and token transfers from system accounts are ignored.
func (s *Service) OnIncomingTransfer(
	ctx context.Context, contract string, payload []byte,
) error {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.onIncomingTransfer(ctx, contract, payload)
		},
	)
	if err != nil {
		return err
	}

	deposit, ok := res.(*domain.Deposit)
	if !ok || deposit == nil {
		return nil
	}

	log.WithFields(log.Fields{
		"account": deposit.Account,
		"assets":  deposit.Assets.String(),
	}).Debug("deposit credited")

	balance, err := s.ledger.BalanceOf(ctx, deposit.Account)
	if err != nil {
		log.WithError(err).Warn("error while fetching balance for deposit event")
	}
	if err := s.pubsub.PublishDepositEvent(*deposit, balance); err != nil {
		log.WithError(err).Warn("error while publishing deposit event")
	}
	return nil
}

// Withdraw debits assets from actor and requests their release to actor.
func (s *Service) Withdraw(
	ctx context.Context, actor string, assets domain.AssetSet,
) (*domain.Withdrawal, error) {
	if err := s.authorizer.RequireAuth(ctx, actor); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(actor); err != nil {
		return nil, err
	}
	if err := validateWithdrawal(assets); err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.allow.CheckNotPaused(ctx); err != nil {
				return nil, err
			}
			if err := s.allow.CheckActor(ctx, actor); err != nil {
				return nil, err
			}
			if err := s.allow.CheckContracts(ctx, assets); err != nil {
				return nil, err
			}

			if err := s.ledger.Debit(ctx, actor, assets); err != nil {
				return nil, err
			}
			return s.release(ctx, actor, assets, withdrawMemo, false)
		},
	)
	if err != nil {
		return nil, err
	}

	withdrawal := res.(*domain.Withdrawal)
	if err := s.pubsub.PublishWithdrawalEvent(*withdrawal); err != nil {
		log.WithError(err).Warn("error while publishing withdrawal event")
	}
	return withdrawal, nil
}

// WithdrawPrivileged requests the release of assets to account without
// touching the ledger. Reserved to the host admin, the caller is expected to
// have debited the assets beforehand.
func (s *Service) WithdrawPrivileged(
	ctx context.Context, account string, assets domain.AssetSet, memo string,
) (*domain.Withdrawal, error) {
	if err := s.authorizer.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(account); err != nil {
		return nil, err
	}
	if err := validateWithdrawal(assets); err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.release(ctx, account, assets, memo, true)
		},
	)
	if err != nil {
		return nil, err
	}

	withdrawal := res.(*domain.Withdrawal)
	if err := s.pubsub.PublishWithdrawalEvent(*withdrawal); err != nil {
		log.WithError(err).Warn("error while publishing withdrawal event")
	}
	return withdrawal, nil
}

func (s *Service) ListDeposits(
	ctx context.Context, account string, page *domain.Page,
) ([]domain.Deposit, error) {
	repo := s.repoManager.DepositRepository()
	if len(account) <= 0 {
		return repo.ListAllDeposits(ctx, page)
	}
	return repo.ListDepositsForAccount(ctx, account, page)
}

func (s *Service) ListWithdrawals(
	ctx context.Context, account string, page *domain.Page,
) ([]domain.Withdrawal, error) {
	repo := s.repoManager.WithdrawalRepository()
	if len(account) <= 0 {
		return repo.ListAllWithdrawals(ctx, page)
	}
	return repo.ListWithdrawalsForAccount(ctx, account, page)
}

func (s *Service) ListReleases(
	ctx context.Context, page *domain.Page,
) ([]domain.Release, error) {
	return s.repoManager.ReleaseRepository().ListReleases(ctx, page)
}

func (s *Service) onIncomingTransfer(
	ctx context.Context, contract string, payload []byte,
) (*domain.Deposit, error) {
	if err := s.allow.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	notification, err := parseNotification(payload)
	if err != nil {
		return nil, err
	}

	if notification.From == s.cfg.Contract {
		return nil, nil
	}

	var assets domain.AssetSet
	if len(s.cfg.NftContract) > 0 && contract == s.cfg.NftContract {
		if assets, err = domain.NewAssetSet(nil, notification.AssetIDs); err != nil {
			return nil, err
		}
	} else {
		if s.cfg.isSystemAccount(notification.From) {
			return nil, nil
		}
		quantity, err := domain.ParseQuantity(notification.Quantity, contract)
		if err != nil {
			return nil, err
		}
		assets = domain.AssetSet{Tokens: []domain.Quantity{quantity}}
	}

	if notification.To != s.cfg.Contract {
		return nil, fmt.Errorf(
			"%w: transfer is addressed to %s", domain.ErrInvalidDestination, notification.To,
		)
	}
	if assets.IsEmpty() {
		return nil, fmt.Errorf("%w: transfer carries no assets", domain.ErrInvalidInput)
	}
	if err := s.allow.CheckActor(ctx, notification.From); err != nil {
		return nil, err
	}
	if err := s.allow.CheckContracts(ctx, assets); err != nil {
		return nil, err
	}

	if err := s.ledger.Credit(
		ctx, notification.From, assets, s.cfg.Contract,
	); err != nil {
		return nil, err
	}

	deposit := domain.NewDeposit(notification.From, contract, assets, notification.Memo)
	id, err := s.repoManager.DepositRepository().AddDeposit(ctx, deposit)
	if err != nil {
		return nil, err
	}
	deposit.ID = id

	return &deposit, nil
}

// release enqueues a release request per asset kind and records the
// withdrawal. It must run within a step.
func (s *Service) release(
	ctx context.Context, account string, assets domain.AssetSet,
	memo string, privileged bool,
) (*domain.Withdrawal, error) {
	releaseRepo := s.repoManager.ReleaseRepository()

	legs := []domain.AssetSet{assets.TokensOnly(), assets.NftsOnly()}
	releaseIDs := make([]uint64, 0, len(legs))
	for _, leg := range legs {
		if leg.IsEmpty() {
			continue
		}
		release, err := domain.NewRelease(account, leg, memo)
		if err != nil {
			return nil, err
		}
		id, err := releaseRepo.AddRelease(ctx, *release)
		if err != nil {
			return nil, fmt.Errorf("enqueuing release: %w", err)
		}
		releaseIDs = append(releaseIDs, id)
	}

	withdrawal := domain.NewWithdrawal(account, assets, memo, privileged, releaseIDs)
	id, err := s.repoManager.WithdrawalRepository().AddWithdrawal(ctx, withdrawal)
	if err != nil {
		return nil, err
	}
	withdrawal.ID = id

	return &withdrawal, nil
}

func validateWithdrawal(assets domain.AssetSet) error {
	if err := assets.Validate(); err != nil {
		return err
	}
	if assets.IsEmpty() {
		return fmt.Errorf("%w: nothing to withdraw", domain.ErrInvalidInput)
	}
	return nil
}
