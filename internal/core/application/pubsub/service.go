package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

const (
	TopicDeposit         = "DEPOSIT"
	TopicWithdrawal      = "WITHDRAWAL"
	TopicEscrowProposed  = "ESCROW_PROPOSED"
	TopicEscrowSettled   = "ESCROW_SETTLED"
	TopicEscrowCancelled = "ESCROW_CANCELLED"
)

var topics = map[string]struct{}{
	TopicDeposit:         {},
	TopicWithdrawal:      {},
	TopicEscrowProposed:  {},
	TopicEscrowSettled:   {},
	TopicEscrowCancelled: {},
	ports.AnyTopic:       {},
}

// Service publishes ledger events to webhook subscribers. A nil Service, or
// one without a pubsub, publishes nothing.
type Service struct {
	pubsub ports.PubSub
}

func NewService(pubsub ports.PubSub) *Service {
	return &Service{pubsub}
}

func (s *Service) AddWebhook(
	_ context.Context, topic, endpoint, secret string,
) (string, error) {
	if !s.enabled() {
		return "", fmt.Errorf("webhooks are not enabled")
	}
	if _, ok := topics[topic]; !ok {
		return "", fmt.Errorf("%w: unknown webhook topic %q", domain.ErrInvalidInput, topic)
	}
	if len(endpoint) <= 0 {
		return "", fmt.Errorf("%w: missing webhook endpoint", domain.ErrInvalidInput)
	}
	return s.pubsub.Subscribe(topic, endpoint, secret)
}

func (s *Service) RemoveWebhook(_ context.Context, id string) error {
	if !s.enabled() {
		return fmt.Errorf("webhooks are not enabled")
	}
	return s.pubsub.Unsubscribe(ports.UnspecifiedTopic, id)
}

func (s *Service) ListWebhooks(
	_ context.Context, topic string,
) ([]ports.Subscription, error) {
	if !s.enabled() {
		return nil, nil
	}
	if topic == ports.UnspecifiedTopic {
		return s.pubsub.ListSubscriptionsForTopic(topic), nil
	}
	if _, ok := topics[topic]; !ok {
		return nil, fmt.Errorf("%w: unknown webhook topic %q", domain.ErrInvalidInput, topic)
	}
	return s.pubsub.ListSubscriptionsForTopic(topic), nil
}

func (s *Service) PublishDepositEvent(
	deposit domain.Deposit, balance domain.AssetSet,
) error {
	return s.publish(TopicDeposit, map[string]interface{}{
		"id":       deposit.ID,
		"account":  deposit.Account,
		"contract": deposit.Contract,
		"assets":   getAssetsPayload(deposit.Assets),
		"memo":     deposit.Memo,
		"balance":  getAssetsPayload(balance),
		"date":     time.Unix(deposit.Timestamp, 0).Format(time.RFC3339),
	})
}

func (s *Service) PublishWithdrawalEvent(withdrawal domain.Withdrawal) error {
	return s.publish(TopicWithdrawal, map[string]interface{}{
		"id":          withdrawal.ID,
		"account":     withdrawal.Account,
		"assets":      getAssetsPayload(withdrawal.Assets),
		"memo":        withdrawal.Memo,
		"privileged":  withdrawal.Privileged,
		"release_ids": withdrawal.ReleaseIDs,
		"date":        time.Unix(withdrawal.Timestamp, 0).Format(time.RFC3339),
	})
}

func (s *Service) PublishEscrowProposedEvent(escrow domain.Escrow) error {
	return s.publish(TopicEscrowProposed, getEscrowPayload(escrow))
}

func (s *Service) PublishEscrowSettledEvent(escrow domain.Escrow) error {
	return s.publish(TopicEscrowSettled, getEscrowPayload(escrow))
}

func (s *Service) PublishEscrowCancelledEvent(escrow domain.Escrow) error {
	return s.publish(TopicEscrowCancelled, getEscrowPayload(escrow))
}

func (s *Service) enabled() bool {
	return s != nil && s.pubsub != nil
}

func (s *Service) publish(topic string, payload map[string]interface{}) error {
	if !s.enabled() {
		return nil
	}

	payload["event"] = topic
	message, _ := json.Marshal(payload)
	return s.pubsub.Publish(topic, string(message))
}
