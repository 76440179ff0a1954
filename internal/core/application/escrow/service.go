package escrow

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/application/allow"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/application/pubsub"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

// Service manages two-party exchanges backed by the ledger. The offered
// assets leave the proposer's balance at proposal time and are held by the
// escrow until it is settled or cancelled.
type Service struct {
	repoManager ports.RepoManager
	ledger      *ledger.Service
	allow       *allow.Service
	pubsub      *pubsub.Service
	authorizer  ports.Authorizer
	// account paying for records credited by the registry itself
	contract string

	now func() time.Time
}

func NewService(
	repoManager ports.RepoManager,
	ledgerSvc *ledger.Service,
	allowSvc *allow.Service,
	pubsubSvc *pubsub.Service,
	authorizer ports.Authorizer,
	contract string,
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
	if err := domain.ValidateName(contract); err != nil {
		return nil, fmt.Errorf("invalid contract account: %w", err)
	}

	return &Service{
		repoManager: repoManager,
		ledger:      ledgerSvc,
		allow:       allowSvc,
		pubsub:      pubsubSvc,
		authorizer:  authorizer,
		contract:    contract,
		now:         time.Now,
	}, nil
}

// Propose moves fromAssets out of the balance of from into a new escrow that
// to can settle by giving toAssets before expiry.
func (s *Service) Propose(
	ctx context.Context, from, to string,
	fromAssets, toAssets domain.AssetSet, expiry time.Time,
) (*domain.Escrow, error) {
	if err := s.authorizer.RequireAuth(ctx, from); err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.checkActors(ctx, from, to); err != nil {
				return nil, err
			}
			if err := s.allow.CheckContracts(ctx, fromAssets); err != nil {
				return nil, err
			}
			if err := s.allow.CheckContracts(ctx, toAssets); err != nil {
				return nil, err
			}

			escrow, err := domain.NewEscrow(
				0, from, to, fromAssets, toAssets, expiry, s.now(),
			)
			if err != nil {
				return nil, err
			}

			if err := s.ledger.Debit(ctx, from, fromAssets); err != nil {
				return nil, err
			}

			repo := s.repoManager.EscrowRepository()
			id, err := repo.NextEscrowID(ctx)
			if err != nil {
				return nil, err
			}
			escrow.ID = id

			if err := repo.AddEscrow(ctx, *escrow); err != nil {
				return nil, err
			}
			return escrow, nil
		},
	)
	if err != nil {
		return nil, err
	}

	escrow := res.(*domain.Escrow)
	log.WithFields(log.Fields{
		"id":   escrow.ID,
		"from": escrow.From,
		"to":   escrow.To,
	}).Debug("escrow proposed")

	if err := s.pubsub.PublishEscrowProposedEvent(*escrow); err != nil {
		log.WithError(err).Warn("error while publishing escrow proposed event")
	}
	return escrow, nil
}

// Accept settles the escrow: acceptor gives toAssets to the proposer and
// receives the offered assets held by the escrow.
func (s *Service) Accept(
	ctx context.Context, id uint64, acceptor string, toAssets domain.AssetSet,
) (*domain.Escrow, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			repo := s.repoManager.EscrowRepository()

			escrow, err := repo.GetEscrow(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := s.authorizer.RequireAuth(ctx, acceptor); err != nil {
				return nil, err
			}
			if err := s.checkActors(ctx, acceptor); err != nil {
				return nil, err
			}

			if err := escrow.Accept(acceptor, toAssets, s.now()); err != nil {
				return nil, err
			}

			if err := s.ledger.Debit(ctx, acceptor, escrow.ToAssets); err != nil {
				return nil, err
			}
			if err := s.ledger.Credit(
				ctx, acceptor, escrow.FromAssets, s.contract,
			); err != nil {
				return nil, err
			}
			if err := s.ledger.Credit(
				ctx, escrow.From, escrow.ToAssets, s.contract,
			); err != nil {
				return nil, err
			}

			if err := repo.DeleteEscrow(ctx, id); err != nil {
				return nil, err
			}
			return escrow, nil
		},
	)
	if err != nil {
		return nil, err
	}

	escrow := res.(*domain.Escrow)
	if err := s.pubsub.PublishEscrowSettledEvent(*escrow); err != nil {
		log.WithError(err).Warn("error while publishing escrow settled event")
	}
	return escrow, nil
}

// Cancel gives the offered assets back to the proposer. Before expiry only
// the proposer can cancel, after expiry anyone can.
func (s *Service) Cancel(
	ctx context.Context, id uint64, canceller string,
) (*domain.Escrow, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.allow.CheckNotPaused(ctx); err != nil {
				return nil, err
			}

			escrow, err := s.repoManager.EscrowRepository().GetEscrow(ctx, id)
			if err != nil {
				return nil, err
			}

			now := s.now()
			if !escrow.IsExpired(now) {
				if canceller != escrow.From {
					return nil, fmt.Errorf(
						"%w: escrow %d can be cancelled only by %s before expiry",
						domain.ErrUnauthorized, id, escrow.From,
					)
				}
				if err := s.authorizer.RequireAuth(ctx, canceller); err != nil {
					return nil, err
				}
			}

			if err := escrow.Cancel(canceller, now); err != nil {
				return nil, err
			}
			return escrow, s.refund(ctx, escrow)
		},
	)
	if err != nil {
		return nil, err
	}

	escrow := res.(*domain.Escrow)
	if err := s.pubsub.PublishEscrowCancelledEvent(*escrow); err != nil {
		log.WithError(err).Warn("error while publishing escrow cancelled event")
	}
	return escrow, nil
}

// SweepExpired cancels every escrow whose expiry is reached at the given
// time, each in its own step. It returns the ids of the cancelled escrows.
// Escrows that fail to be cancelled are logged and skipped.
func (s *Service) SweepExpired(
	ctx context.Context, now time.Time,
) ([]uint64, error) {
	if err := s.allow.CheckNotPaused(ctx); err != nil {
		return nil, err
	}

	expired, err := s.repoManager.EscrowRepository().GetExpiredEscrows(
		ctx, now.Unix(),
	)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(expired))
	for _, e := range expired {
		res, err := s.repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				escrow, err := s.repoManager.EscrowRepository().GetEscrow(ctx, e.ID)
				if err != nil {
					return nil, err
				}
				if err := escrow.Expire(now); err != nil {
					return nil, err
				}
				return escrow, s.refund(ctx, escrow)
			},
		)
		if err != nil {
			log.WithError(err).WithField("id", e.ID).Warn(
				"error while cancelling expired escrow",
			)
			continue
		}

		escrow := res.(*domain.Escrow)
		ids = append(ids, escrow.ID)
		if err := s.pubsub.PublishEscrowCancelledEvent(*escrow); err != nil {
			log.WithError(err).Warn("error while publishing escrow cancelled event")
		}
	}
	return ids, nil
}

func (s *Service) GetEscrow(ctx context.Context, id uint64) (*domain.Escrow, error) {
	return s.repoManager.EscrowRepository().GetEscrow(ctx, id)
}

// ListEscrowsFrom returns the open escrows proposed by account.
func (s *Service) ListEscrowsFrom(
	ctx context.Context, account string,
) ([]domain.Escrow, error) {
	return s.repoManager.EscrowRepository().GetEscrowsByFrom(ctx, account)
}

// ListEscrowsTo returns the open escrows addressed to account.
func (s *Service) ListEscrowsTo(
	ctx context.Context, account string,
) ([]domain.Escrow, error) {
	return s.repoManager.EscrowRepository().GetEscrowsByTo(ctx, account)
}

func (s *Service) ListEscrows(
	ctx context.Context, page *domain.Page,
) ([]domain.Escrow, error) {
	return s.repoManager.EscrowRepository().ListEscrows(ctx, page)
}

func (s *Service) checkActors(ctx context.Context, actors ...string) error {
	if err := s.allow.CheckNotPaused(ctx); err != nil {
		return err
	}
	for _, actor := range actors {
		if err := s.allow.CheckActor(ctx, actor); err != nil {
			return err
		}
	}
	return nil
}

// refund credits the offered assets back to the proposer and removes the
// escrow. It must run within a step.
func (s *Service) refund(ctx context.Context, escrow *domain.Escrow) error {
	if err := s.ledger.Credit(
		ctx, escrow.From, escrow.FromAssets, s.contract,
	); err != nil {
		return err
	}
	return s.repoManager.EscrowRepository().DeleteEscrow(ctx, escrow.ID)
}
