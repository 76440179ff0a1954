package dbbadger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/core/ports"
	dbbadger "github.com/tdex-network/custodyd/internal/infrastructure/storage/db/badger"
)

var ctx = context.Background()

func TestRunTransaction(t *testing.T) {
	repoManager := newTestRepoManager(t)
	accountRepo := repoManager.AccountRepository()

	t.Run("commit", func(t *testing.T) {
		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				return nil, accountRepo.SaveAccount(ctx, newTestAccount(t, "alice", 10))
			},
		)
		require.NoError(t, err)

		account, err := accountRepo.GetAccount(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, int64(10), account.Assets.Tokens[0].Amount)
	})

	t.Run("discard", func(t *testing.T) {
		stepErr := errors.New("step failed")
		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				if err := accountRepo.SaveAccount(ctx, newTestAccount(t, "bob", 5)); err != nil {
					return nil, err
				}
				if err := accountRepo.DeleteAccount(ctx, "alice"); err != nil {
					return nil, err
				}
				return nil, stepErr
			},
		)
		require.ErrorIs(t, err, stepErr)

		_, err = accountRepo.GetAccount(ctx, "bob")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
		_, err = accountRepo.GetAccount(ctx, "alice")
		require.NoError(t, err)
	})

	t.Run("nested", func(t *testing.T) {
		stepErr := errors.New("outer step failed")
		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				if _, err := repoManager.RunTransaction(
					ctx, false, func(ctx context.Context) (interface{}, error) {
						return nil, accountRepo.SaveAccount(ctx, newTestAccount(t, "carol", 1))
					},
				); err != nil {
					return nil, err
				}
				return nil, stepErr
			},
		)
		require.ErrorIs(t, err, stepErr)

		_, err = accountRepo.GetAccount(ctx, "carol")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestAccountRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	accountRepo := repoManager.AccountRepository()

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, accountRepo.SaveAccount(ctx, newTestAccount(t, name, 1)))
	}

	accounts, err := accountRepo.ListAccounts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	require.Equal(t, "alice", accounts[0].ID)
	require.Equal(t, "carol", accounts[2].ID)

	page := domain.NewPage(2, 2)
	accounts, err = accountRepo.ListAccounts(ctx, &page)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "carol", accounts[0].ID)

	require.NoError(t, accountRepo.DeleteAccount(ctx, "bob"))
	require.NoError(t, accountRepo.DeleteAccount(ctx, "bob"))
	_, err = accountRepo.GetAccount(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEscrowRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	escrowRepo := repoManager.EscrowRepository()
	now := time.Now()

	_, err := escrowRepo.NextEscrowID(ctx)
	require.Error(t, err)

	parties := [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}}
	for i, p := range parties {
		_, err := repoManager.RunTransaction(
			ctx, false, func(ctx context.Context) (interface{}, error) {
				id, err := escrowRepo.NextEscrowID(ctx)
				if err != nil {
					return nil, err
				}
				require.Equal(t, uint64(i+1), id)

				escrow, err := domain.NewEscrow(
					id, p[0], p[1], newTestAssets(t, 10), domain.AssetSet{},
					now.Add(time.Duration(i+1)*time.Hour), now,
				)
				if err != nil {
					return nil, err
				}
				return nil, escrowRepo.AddEscrow(ctx, *escrow)
			},
		)
		require.NoError(t, err)
	}

	escrow, err := escrowRepo.GetEscrow(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "carol", escrow.To)
	require.Equal(t, "alice", escrow.Payer)

	byFrom, err := escrowRepo.GetEscrowsByFrom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byFrom, 2)

	byTo, err := escrowRepo.GetEscrowsByTo(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, byTo, 2)

	expired, err := escrowRepo.GetExpiredEscrows(ctx, now.Add(2*time.Hour).Unix())
	require.NoError(t, err)
	require.Len(t, expired, 2)

	require.NoError(t, escrowRepo.DeleteEscrow(ctx, 1))
	_, err = escrowRepo.GetEscrow(ctx, 1)
	require.ErrorIs(t, err, domain.ErrEscrowNotFound)
	err = escrowRepo.DeleteEscrow(ctx, 1)
	require.ErrorIs(t, err, domain.ErrEscrowNotFound)

	byFrom, err = escrowRepo.GetEscrowsByFrom(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, byFrom, 1)

	// ids are never reused after a removal.
	_, err = repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			id, err := escrowRepo.NextEscrowID(ctx)
			require.Equal(t, uint64(4), id)
			return nil, err
		},
	)
	require.NoError(t, err)
}

func TestHistoryRepositories(t *testing.T) {
	repoManager := newTestRepoManager(t)
	depositRepo := repoManager.DepositRepository()
	withdrawalRepo := repoManager.WithdrawalRepository()

	for i, account := range []string{"alice", "bob", "alice"} {
		id, err := depositRepo.AddDeposit(
			ctx, domain.NewDeposit(account, "eosio.token", newTestAssets(t, 1), "hi"),
		)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), id)

		id, err = withdrawalRepo.AddWithdrawal(
			ctx, domain.NewWithdrawal(account, newTestAssets(t, 1), "withdraw", false, []uint64{1}),
		)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), id)
	}

	// ids keep growing within steps too.
	res, err := repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return depositRepo.AddDeposit(
				ctx, domain.NewDeposit("bob", "eosio.token", newTestAssets(t, 1), ""),
			)
		},
	)
	require.NoError(t, err)
	require.Equal(t, uint64(4), res.(uint64))

	deposits, err := depositRepo.ListDepositsForAccount(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, deposits, 2)

	require.Equal(t, uint64(1), deposits[0].ID)
	require.Equal(t, uint64(3), deposits[1].ID)

	accountPage := domain.NewPage(2, 1)
	deposits, err = depositRepo.ListDepositsForAccount(ctx, "alice", &accountPage)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	require.Equal(t, uint64(3), deposits[0].ID)

	deposits, err = depositRepo.ListAllDeposits(ctx, nil)
	require.NoError(t, err)
	require.Len(t, deposits, 4)

	withdrawals, err := withdrawalRepo.ListWithdrawalsForAccount(ctx, "bob", nil)
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)

	page := domain.NewPage(1, 2)
	withdrawals, err = withdrawalRepo.ListAllWithdrawals(ctx, &page)
	require.NoError(t, err)
	require.Len(t, withdrawals, 2)
}

func TestReleaseRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	releaseRepo := repoManager.ReleaseRepository()

	ids := make([]uint64, 0)
	for i := 0; i < 5; i++ {
		release, err := domain.NewRelease("alice", newTestAssets(t, 1), "withdraw")
		require.NoError(t, err)
		id, err := releaseRepo.AddRelease(ctx, *release)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), id)
		ids = append(ids, id)
	}

	err := releaseRepo.UpdateRelease(
		ctx, ids[0], func(r *domain.Release) (*domain.Release, error) {
			r.MarkSent()
			return r, nil
		},
	)
	require.NoError(t, err)

	pending, err := releaseRepo.GetPendingReleases(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	pending, err = releaseRepo.GetPendingReleases(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, ids[1], pending[0].ID)
	require.Equal(t, ids[2], pending[1].ID)

	release, err := releaseRepo.GetRelease(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, domain.ReleaseStatusSent, release.Status)
	require.Equal(t, 1, release.Attempts)

	_, err = releaseRepo.GetRelease(ctx, 1000)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllowRepository(t *testing.T) {
	repoManager := newTestRepoManager(t)
	allowRepo := repoManager.AllowRepository()

	config, err := allowRepo.GetConfig(ctx)
	require.NoError(t, err)
	require.False(t, config.Paused)

	require.NoError(t, allowRepo.SaveConfig(ctx, domain.AllowConfig{Paused: true}))
	config, err = allowRepo.GetConfig(ctx)
	require.NoError(t, err)
	require.True(t, config.Paused)

	entry, err := allowRepo.GetEntry(ctx, domain.AllowKindActor, "alice")
	require.NoError(t, err)
	require.Nil(t, entry)

	require.NoError(t, allowRepo.SaveEntry(ctx, domain.AllowEntry{
		Name: "alice", Kind: domain.AllowKindActor, Blocked: true,
	}))
	require.NoError(t, allowRepo.SaveEntry(ctx, domain.AllowEntry{
		Name: "alice", Kind: domain.AllowKindContract, Allowed: true,
	}))

	entry, err = allowRepo.GetEntry(ctx, domain.AllowKindActor, "alice")
	require.NoError(t, err)
	require.True(t, entry.Blocked)

	entries, err := allowRepo.ListEntries(ctx, domain.AllowKindContract)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].Allowed)
}

func newTestRepoManager(t *testing.T) ports.RepoManager {
	repoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(repoManager.Close)
	return repoManager
}

func newTestAssets(t *testing.T, amount int64) domain.AssetSet {
	q, err := domain.NewQuantity(amount, "XPR", 4, "eosio.token")
	require.NoError(t, err)
	return domain.AssetSet{Tokens: []domain.Quantity{q}}
}

func newTestAccount(t *testing.T, name string, amount int64) domain.Account {
	account, err := domain.NewAccount(name)
	require.NoError(t, err)
	require.NoError(t, account.Credit(newTestAssets(t, amount)))
	return *account
}
