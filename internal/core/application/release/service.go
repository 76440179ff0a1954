package release

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"go.uber.org/ratelimit"
)

const (
	// DefaultBatchSize is the max number of pending releases delivered at
	// every round.
	DefaultBatchSize = 50
	// DefaultMaxAttempts is the number of failed deliveries after which a
	// release is marked as failed.
	DefaultMaxAttempts = 5
)

// Service delivers the pending releases of the outbox to the host through
// a ReleaseSender, with at most rateLimit deliveries per second.
type Service struct {
	repoManager ports.RepoManager
	sender      ports.ReleaseSender
	limiter     ratelimit.Limiter
	interval    time.Duration
	maxAttempts int
	batchSize   int

	lock     *sync.Mutex
	quitChan chan struct{}
	doneChan chan struct{}
}

func NewService(
	repoManager ports.RepoManager, sender ports.ReleaseSender,
	interval time.Duration, rateLimit, maxAttempts int,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if sender == nil {
		return nil, fmt.Errorf("missing release sender")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("dispatch interval must be a positive duration")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit)
	}

	return &Service{
		repoManager: repoManager,
		sender:      sender,
		limiter:     limiter,
		interval:    interval,
		maxAttempts: maxAttempts,
		batchSize:   DefaultBatchSize,
		lock:        &sync.Mutex{},
	}, nil
}

// Start delivers the pending releases periodically until Stop is called.
func (s *Service) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quitChan != nil {
		return
	}
	s.quitChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	go func(quit, done chan struct{}) {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Debug("release dispatcher started")
		for {
			select {
			case <-ticker.C:
				if _, err := s.DispatchPending(context.Background()); err != nil {
					log.WithError(err).Warn("error while dispatching releases")
				}
			case <-quit:
				log.Debug("release dispatcher stopped")
				return
			}
		}
	}(s.quitChan, s.doneChan)
}

// Stop terminates the dispatch loop and waits for the current round to
// complete.
func (s *Service) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.quitChan == nil {
		return
	}
	close(s.quitChan)
	<-s.doneChan
	s.quitChan, s.doneChan = nil, nil
}

// DispatchPending tries to deliver a batch of pending releases, oldest first,
// and returns the number of those successfully sent. A failed delivery is
// recorded on the release and retried at the next round until the max number
// of attempts is reached.
func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	releases, err := s.repoManager.ReleaseRepository().GetPendingReleases(
		ctx, s.batchSize,
	)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range releases {
		s.limiter.Take()

		sendErr := s.sender.SendRelease(ctx, r)
		if err := s.updateRelease(
			ctx, r.ID, func(release *domain.Release) (*domain.Release, error) {
				// updated by someone else while delivering.
				if release.Status != domain.ReleaseStatusPending {
					return release, nil
				}
				if sendErr != nil {
					release.MarkAttemptFailed(sendErr, s.maxAttempts)
					return release, nil
				}
				release.MarkSent()
				return release, nil
			},
		); err != nil {
			return count, err
		}

		logger := log.WithFields(log.Fields{"id": r.ID, "to": r.To})
		if sendErr != nil {
			logger.WithError(sendErr).Warn("failed to deliver release")
			continue
		}
		logger.Debug("release delivered")
		count++
	}
	return count, nil
}

// RetryRelease brings a failed release back to pending, resetting its
// attempts counter.
func (s *Service) RetryRelease(ctx context.Context, id uint64) error {
	return s.updateRelease(
		ctx, id, func(release *domain.Release) (*domain.Release, error) {
			if release.Status != domain.ReleaseStatusFailed {
				return nil, fmt.Errorf(
					"%w: release %d is %s", domain.ErrInvalidInput, id, release.Status,
				)
			}
			release.Status = domain.ReleaseStatusPending
			release.Attempts = 0
			release.UpdatedAt = time.Now().Unix()
			return release, nil
		},
	)
}

func (s *Service) updateRelease(
	ctx context.Context, id uint64,
	updateFn func(r *domain.Release) (*domain.Release, error),
) error {
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return nil, s.repoManager.ReleaseRepository().UpdateRelease(
				ctx, id, updateFn,
			)
		},
	)
	return err
}
