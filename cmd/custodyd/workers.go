package main

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

type expiredEscrowSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) ([]uint64, error)
}

// escrowSweeper periodically cancels the expired escrows. A zero interval
// disables it.
type escrowSweeper struct {
	svc      expiredEscrowSweeper
	interval time.Duration

	quitChan chan struct{}
	wg       *sync.WaitGroup
}

func newEscrowSweeper(svc expiredEscrowSweeper, interval time.Duration) *escrowSweeper {
	return &escrowSweeper{
		svc:      svc,
		interval: interval,
		quitChan: make(chan struct{}),
		wg:       &sync.WaitGroup{},
	}
}

func (s *escrowSweeper) start() {
	if s.interval <= 0 {
		log.Info("escrow sweeper disabled")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.quitChan:
				return
			case now := <-ticker.C:
				ids, err := s.svc.SweepExpired(context.Background(), now)
				if err != nil {
					log.WithError(err).Warn("error while sweeping expired escrows")
					continue
				}
				if len(ids) > 0 {
					log.WithField("ids", ids).Info("cancelled expired escrows")
				}
			}
		}
	}()
	log.Infof("escrow sweeper started, runs every %s", s.interval)
}

func (s *escrowSweeper) stop() {
	select {
	case <-s.quitChan:
	default:
		close(s.quitChan)
	}
	s.wg.Wait()
}

// consumeNotifications hands every notification of the feed to the gateway
// until the feed is closed.
func consumeNotifications(
	feed <-chan ports.TransferNotification, handler ports.TransferHandler,
) {
	for n := range feed {
		if err := handler.OnIncomingTransfer(
			context.Background(), n.Contract, n.Payload,
		); err != nil {
			log.WithError(err).WithField("contract", n.Contract).Warn(
				"error while processing transfer notification",
			)
		}
	}
	log.Debug("notification feed closed")
}
