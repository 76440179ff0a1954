package gateway_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/application/allow"
	"github.com/tdex-network/custodyd/internal/core/application/gateway"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/application/pubsub"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/tdex-network/custodyd/internal/infrastructure/storage/db/inmemory"
)

const (
	self          = "custody"
	tokenContract = "eosio.token"
	nftContract   = "atomicassets"
)

var ctx = context.Background()

type testSuite struct {
	gateway     *gateway.Service
	ledger      *ledger.Service
	allow       *allow.Service
	repoManager ports.RepoManager
}

func TestOnIncomingTransfer(t *testing.T) {
	t.Run("token_deposit", func(t *testing.T) {
		s := newTestSuite(t)

		err := s.gateway.OnIncomingTransfer(ctx, tokenContract, tokenTransfer(
			t, "alice", self, "100.0000 X", "hello",
		))
		require.NoError(t, err)

		account, err := s.ledger.GetAccount(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(1000000), account.Assets.Amount(x(t, 0).Key()))
		require.Equal(t, self, account.Payer)

		deposits, err := s.gateway.ListDeposits(ctx, "alice", nil)
		require.NoError(t, err)
		require.Len(t, deposits, 1)
		require.Equal(t, tokenContract, deposits[0].Contract)
		require.Equal(t, "hello", deposits[0].Memo)
	})

	t.Run("nft_deposit", func(t *testing.T) {
		s := newTestSuite(t)

		err := s.gateway.OnIncomingTransfer(ctx, nftContract, nftTransfer(
			t, "alice", self, 42, 43,
		))
		require.NoError(t, err)

		balance, err := s.ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.ElementsMatch(t, []uint64{42, 43}, balance.Nfts)
		require.Empty(t, balance.Tokens)
	})

	t.Run("ignored", func(t *testing.T) {
		tests := []struct {
			name     string
			contract string
			payload  []byte
		}{
			{
				name:     "reflected_token_transfer",
				contract: tokenContract,
				payload:  tokenTransfer(t, self, "alice", "1.0000 X", ""),
			},
			{
				name:     "reflected_nft_transfer",
				contract: nftContract,
				payload:  nftTransfer(t, self, "alice", 42),
			},
			{
				name:     "system_account",
				contract: tokenContract,
				payload:  tokenTransfer(t, "eosio.stake", self, "1.0000 X", ""),
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := newTestSuite(t)

				err := s.gateway.OnIncomingTransfer(ctx, tt.contract, tt.payload)
				require.NoError(t, err)
				requireEmptyLedger(t, s)
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name        string
			contract    string
			payload     []byte
			expectedErr error
		}{
			{
				name:        "invalid_destination",
				contract:    tokenContract,
				payload:     tokenTransfer(t, "alice", "bob", "1.0000 X", ""),
				expectedErr: domain.ErrInvalidDestination,
			},
			{
				name:        "malformed_quantity",
				contract:    tokenContract,
				payload:     tokenTransfer(t, "alice", self, "1.0000", ""),
				expectedErr: domain.ErrInvalidInput,
			},
			{
				name:        "malformed_payload",
				contract:    tokenContract,
				payload:     []byte("{"),
				expectedErr: domain.ErrInvalidInput,
			},
			{
				name:        "duplicate_nfts",
				contract:    nftContract,
				payload:     nftTransfer(t, "alice", self, 1, 1),
				expectedErr: domain.ErrInvalidInput,
			},
			{
				name:        "no_nfts",
				contract:    nftContract,
				payload:     nftTransfer(t, "alice", self),
				expectedErr: domain.ErrInvalidInput,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := newTestSuite(t)

				err := s.gateway.OnIncomingTransfer(ctx, tt.contract, tt.payload)
				require.ErrorIs(t, err, tt.expectedErr)
				requireEmptyLedger(t, s)
			})
		}
	})

	t.Run("paused", func(t *testing.T) {
		s := newTestSuite(t)
		require.NoError(t, s.allow.SetPaused(adminContext(ctx), true))

		err := s.gateway.OnIncomingTransfer(ctx, tokenContract, tokenTransfer(
			t, "alice", self, "1.0000 X", "",
		))
		require.ErrorIs(t, err, domain.ErrContractPaused)
		requireEmptyLedger(t, s)
	})

	t.Run("blocked_contract", func(t *testing.T) {
		s := newTestSuite(t)
		require.NoError(t, s.allow.SetContract(adminContext(ctx), "fake.token", false, true))

		err := s.gateway.OnIncomingTransfer(ctx, "fake.token", tokenTransfer(
			t, "alice", self, "1.0000 X", "",
		))
		require.ErrorIs(t, err, domain.ErrContractBlocked)
		requireEmptyLedger(t, s)
	})
}

func TestWithdraw(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := newTestSuite(t)
		deposit(t, s, "alice", 1000000)
		require.NoError(t, s.gateway.OnIncomingTransfer(
			ctx, nftContract, nftTransfer(t, "alice", self, 42),
		))

		assets := domain.AssetSet{
			Tokens: []domain.Quantity{x(t, 400000)},
			Nfts:   []uint64{42},
		}
		withdrawal, err := s.gateway.Withdraw(ctx, "alice", assets)
		require.NoError(t, err)
		require.False(t, withdrawal.Privileged)
		require.Len(t, withdrawal.ReleaseIDs, 2)

		balance, err := s.ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(600000), balance.Amount(x(t, 0).Key()))
		require.Empty(t, balance.Nfts)

		releases, err := s.repoManager.ReleaseRepository().GetPendingReleases(ctx, 0)
		require.NoError(t, err)
		require.Len(t, releases, 2)
		for _, r := range releases {
			require.Equal(t, "alice", r.To)
			require.Equal(t, "withdraw", r.Memo)
		}
		require.True(t, releases[0].Assets.Equal(assets.TokensOnly()))
		require.True(t, releases[1].Assets.Equal(assets.NftsOnly()))

		withdrawals, err := s.gateway.ListWithdrawals(ctx, "", nil)
		require.NoError(t, err)
		require.Len(t, withdrawals, 1)
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		s := newTestSuite(t)
		deposit(t, s, "alice", 300000)

		_, err := s.gateway.Withdraw(ctx, "alice", domain.AssetSet{
			Tokens: []domain.Quantity{x(t, 500000)},
		})
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)

		balance, err := s.ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(300000), balance.Amount(x(t, 0).Key()))

		releases, err := s.gateway.ListReleases(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, releases)
		withdrawals, err := s.gateway.ListWithdrawals(ctx, "alice", nil)
		require.NoError(t, err)
		require.Empty(t, withdrawals)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name        string
			actor       string
			assets      domain.AssetSet
			expectedErr error
		}{
			{
				name:        "unauthorized",
				actor:       "bob",
				assets:      domain.AssetSet{Tokens: []domain.Quantity{x(t, 1)}},
				expectedErr: domain.ErrUnauthorized,
			},
			{
				name:        "missing_actor",
				actor:       "",
				assets:      domain.AssetSet{Tokens: []domain.Quantity{x(t, 1)}},
				expectedErr: domain.ErrUnauthorized,
			},
			{
				name:        "empty_assets",
				actor:       "alice",
				assets:      domain.AssetSet{},
				expectedErr: domain.ErrInvalidInput,
			},
			{
				name:        "missing_nft",
				actor:       "alice",
				assets:      domain.AssetSet{Nfts: []uint64{7}},
				expectedErr: domain.ErrAssetNotFound,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := newTestSuite(t)
				deposit(t, s, "alice", 100)
				deposit(t, s, "bob", 100)

				_, err := s.gateway.Withdraw(ctx, tt.actor, tt.assets)
				require.ErrorIs(t, err, tt.expectedErr)

				releases, err := s.gateway.ListReleases(ctx, nil)
				require.NoError(t, err)
				require.Empty(t, releases)
			})
		}
	})

	t.Run("paused", func(t *testing.T) {
		s := newTestSuite(t)
		deposit(t, s, "alice", 100)
		require.NoError(t, s.allow.SetPaused(adminContext(ctx), true))

		_, err := s.gateway.Withdraw(ctx, "alice", domain.AssetSet{
			Tokens: []domain.Quantity{x(t, 100)},
		})
		require.ErrorIs(t, err, domain.ErrContractPaused)
	})

	t.Run("blocked_actor", func(t *testing.T) {
		s := newTestSuite(t)
		deposit(t, s, "alice", 100)
		require.NoError(t, s.allow.SetActor(adminContext(ctx), "alice", false, true))

		_, err := s.gateway.Withdraw(ctx, "alice", domain.AssetSet{
			Tokens: []domain.Quantity{x(t, 100)},
		})
		require.ErrorIs(t, err, domain.ErrActorBlocked)

		balance, err := s.ledger.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(100), balance.Amount(x(t, 0).Key()))
	})
}

func TestWithdrawPrivileged(t *testing.T) {
	s := newTestSuite(t)
	assets := domain.AssetSet{Tokens: []domain.Quantity{x(t, 100)}}

	_, err := s.gateway.WithdrawPrivileged(ctx, "alice", assets, "refund")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	withdrawal, err := s.gateway.WithdrawPrivileged(
		adminContext(ctx), "alice", assets, "refund",
	)
	require.NoError(t, err)
	require.True(t, withdrawal.Privileged)
	require.Len(t, withdrawal.ReleaseIDs, 1)

	release, err := s.repoManager.ReleaseRepository().GetRelease(ctx, withdrawal.ReleaseIDs[0])
	require.NoError(t, err)
	require.Equal(t, "refund", release.Memo)
	require.True(t, release.IsPending())

	// the ledger is untouched.
	requireEmptyLedger(t, s)
}

func newTestSuite(t *testing.T) testSuite {
	repoManager := inmemory.NewRepoManager()
	authorizer := newMockAuthorizer("alice")

	ledgerSvc, err := ledger.NewService(repoManager)
	require.NoError(t, err)
	allowSvc, err := allow.NewService(repoManager, authorizer, false)
	require.NoError(t, err)
	gatewaySvc, err := gateway.NewService(
		repoManager, ledgerSvc, allowSvc, pubsub.NewService(nil), authorizer,
		gateway.Config{Contract: self, NftContract: nftContract},
	)
	require.NoError(t, err)

	return testSuite{gatewaySvc, ledgerSvc, allowSvc, repoManager}
}

func deposit(t *testing.T, s testSuite, account string, amount int64) {
	q := x(t, amount)
	err := s.gateway.OnIncomingTransfer(ctx, tokenContract, tokenTransfer(
		t, account, self, q.Decimal().StringFixed(4)+" X", "",
	))
	require.NoError(t, err)
}

func requireEmptyLedger(t *testing.T, s testSuite) {
	accounts, err := s.ledger.ListAccounts(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, accounts)

	deposits, err := s.gateway.ListDeposits(ctx, "", nil)
	require.NoError(t, err)
	require.Empty(t, deposits)
}

func x(t *testing.T, amount int64) domain.Quantity {
	q, err := domain.NewQuantity(amount, "X", 4, tokenContract)
	require.NoError(t, err)
	return q
}

func tokenTransfer(t *testing.T, from, to, quantity, memo string) []byte {
	payload, err := json.Marshal(gateway.TransferNotification{
		From: from, To: to, Quantity: quantity, Memo: memo,
	})
	require.NoError(t, err)
	return payload
}

func nftTransfer(t *testing.T, from, to string, ids ...uint64) []byte {
	payload, err := json.Marshal(gateway.TransferNotification{
		From: from, To: to, AssetIDs: ids,
	})
	require.NoError(t, err)
	return payload
}
