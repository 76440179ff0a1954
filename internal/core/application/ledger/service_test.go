package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/tdex-network/custodyd/internal/infrastructure/storage/db/inmemory"
)

const self = "custody"

var ctx = context.Background()

func TestCreditDebit(t *testing.T) {
	svc, repoManager := newTestService(t)

	t.Run("round_trip_removes_account", func(t *testing.T) {
		assets := domain.AssetSet{
			Tokens: []domain.Quantity{x(t, 100)},
			Nfts:   []uint64{42},
		}
		require.NoError(t, svc.Credit(ctx, "alice", assets, self))

		balance, err := svc.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.True(t, assets.Equal(balance))

		require.NoError(t, svc.Debit(ctx, "alice", assets))

		_, err = repoManager.AccountRepository().GetAccount(ctx, "alice")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)

		balance, err = svc.BalanceOf(ctx, "alice")
		require.NoError(t, err)
		require.True(t, balance.IsEmpty())
	})

	t.Run("credit_accumulates", func(t *testing.T) {
		require.NoError(t, svc.Credit(ctx, "bob", tokens(t, 30), self))
		require.NoError(t, svc.Credit(ctx, "bob", tokens(t, 20), "bob"))

		account, err := svc.GetAccount(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, int64(50), account.Assets.Amount(x(t, 0).Key()))
		require.Equal(t, "bob", account.Payer)

		require.NoError(t, svc.Debit(ctx, "bob", tokens(t, 10)))
		account, err = svc.GetAccount(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, int64(40), account.Assets.Amount(x(t, 0).Key()))
		require.Equal(t, "bob", account.Payer)
	})

	t.Run("empty_sets_are_noops", func(t *testing.T) {
		require.NoError(t, svc.Credit(ctx, "carol", domain.AssetSet{}, self))
		require.NoError(t, svc.Debit(ctx, "carol", domain.AssetSet{}))

		_, err := svc.GetAccount(ctx, "carol")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestFailingDebit(t *testing.T) {
	svc, _ := newTestService(t)

	held := domain.AssetSet{
		Tokens: []domain.Quantity{x(t, 30)},
		Nfts:   []uint64{42},
	}
	require.NoError(t, svc.Credit(ctx, "alice", held, self))

	tests := []struct {
		name        string
		account     string
		assets      domain.AssetSet
		expectedErr error
	}{
		{
			name:        "missing_account",
			account:     "bob",
			assets:      tokens(t, 1),
			expectedErr: domain.ErrNotFound,
		},
		{
			name:        "insufficient_balance",
			account:     "alice",
			assets:      tokens(t, 50),
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name:    "missing_nft",
			account: "alice",
			assets: domain.AssetSet{
				Tokens: []domain.Quantity{x(t, 10)},
				Nfts:   []uint64{43},
			},
			expectedErr: domain.ErrAssetNotFound,
		},
		{
			name:        "invalid_account",
			account:     "Alice",
			assets:      tokens(t, 1),
			expectedErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Debit(ctx, tt.account, tt.assets)
			require.ErrorIs(t, err, tt.expectedErr)

			balance, err := svc.BalanceOf(ctx, "alice")
			require.NoError(t, err)
			require.True(t, held.Equal(balance))
		})
	}
}

func TestListAccounts(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"bob", "alice"} {
		require.NoError(t, svc.Credit(ctx, name, tokens(t, 1), self))
	}

	accounts, err := svc.ListAccounts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, "alice", accounts[0].ID)
}

func newTestService(t *testing.T) (*ledger.Service, ports.RepoManager) {
	repoManager := inmemory.NewRepoManager()
	svc, err := ledger.NewService(repoManager)
	require.NoError(t, err)
	return svc, repoManager
}

func x(t *testing.T, amount int64) domain.Quantity {
	q, err := domain.NewQuantity(amount, "X", 4, "eosio.token")
	require.NoError(t, err)
	return q
}

func tokens(t *testing.T, amount int64) domain.AssetSet {
	return domain.AssetSet{Tokens: []domain.Quantity{x(t, amount)}}
}
