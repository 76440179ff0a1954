package inmemory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

func TestRunTransactionRollback(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	accountRepo := repoManager.AccountRepository()
	escrowRepo := repoManager.EscrowRepository()
	depositRepo := repoManager.DepositRepository()
	releaseRepo := repoManager.ReleaseRepository()

	alice := newTestAccount(t, "alice", 10)
	require.NoError(t, accountRepo.SaveAccount(ctx, alice))

	stepErr := errors.New("step failed")
	_, err := repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := accountRepo.DeleteAccount(ctx, "alice"); err != nil {
				return nil, err
			}
			id, err := escrowRepo.NextEscrowID(ctx)
			if err != nil {
				return nil, err
			}
			escrow, err := domain.NewEscrow(
				id, "alice", "bob", alice.Assets, domain.AssetSet{},
				time.Now().Add(time.Hour), time.Now(),
			)
			if err != nil {
				return nil, err
			}
			if err := escrowRepo.AddEscrow(ctx, *escrow); err != nil {
				return nil, err
			}
			if _, err := depositRepo.AddDeposit(
				ctx, domain.NewDeposit("alice", "eosio.token", alice.Assets, ""),
			); err != nil {
				return nil, err
			}
			release, err := domain.NewRelease("alice", alice.Assets, "withdraw")
			if err != nil {
				return nil, err
			}
			if _, err := releaseRepo.AddRelease(ctx, *release); err != nil {
				return nil, err
			}
			return nil, stepErr
		},
	)
	require.ErrorIs(t, err, stepErr)

	account, err := accountRepo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, alice.Assets.Equal(account.Assets))

	escrows, err := escrowRepo.ListEscrows(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, escrows)

	deposits, err := depositRepo.ListAllDeposits(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, deposits)

	releases, err := releaseRepo.GetPendingReleases(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, releases)

	// the escrow counter is rolled back too.
	_, err = repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			id, err := escrowRepo.NextEscrowID(ctx)
			require.Equal(t, uint64(1), id)
			return nil, err
		},
	)
	require.NoError(t, err)
}

func TestRunTransactionRollbackOverwrites(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	accountRepo := repoManager.AccountRepository()
	releaseRepo := repoManager.ReleaseRepository()
	allowRepo := repoManager.AllowRepository()

	require.NoError(t, accountRepo.SaveAccount(ctx, newTestAccount(t, "alice", 10)))
	release, err := domain.NewRelease("alice", newTestAccount(t, "alice", 1).Assets, "withdraw")
	require.NoError(t, err)
	releaseID, err := releaseRepo.AddRelease(ctx, *release)
	require.NoError(t, err)
	require.NoError(t, allowRepo.SaveEntry(ctx, domain.AllowEntry{
		Name: "alice", Kind: domain.AllowKindActor, Allowed: true,
	}))

	stepErr := errors.New("step failed")
	_, err = repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			for _, amount := range []int64{20, 30} {
				if err := accountRepo.SaveAccount(
					ctx, newTestAccount(t, "alice", amount),
				); err != nil {
					return nil, err
				}
			}
			if err := accountRepo.SaveAccount(ctx, newTestAccount(t, "bob", 5)); err != nil {
				return nil, err
			}
			if err := releaseRepo.UpdateRelease(
				ctx, releaseID, func(r *domain.Release) (*domain.Release, error) {
					r.MarkSent()
					return r, nil
				},
			); err != nil {
				return nil, err
			}
			if _, err := releaseRepo.AddRelease(ctx, *release); err != nil {
				return nil, err
			}
			if err := allowRepo.SaveConfig(ctx, domain.AllowConfig{Paused: true}); err != nil {
				return nil, err
			}
			if err := allowRepo.SaveEntry(ctx, domain.AllowEntry{
				Name: "alice", Kind: domain.AllowKindActor, Blocked: true,
			}); err != nil {
				return nil, err
			}
			return nil, stepErr
		},
	)
	require.ErrorIs(t, err, stepErr)

	account, err := accountRepo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	require.True(t, newTestAccount(t, "alice", 10).Assets.Equal(account.Assets))

	_, err = accountRepo.GetAccount(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	r, err := releaseRepo.GetRelease(ctx, releaseID)
	require.NoError(t, err)
	require.Equal(t, domain.ReleaseStatusPending, r.Status)

	// the id of the discarded release is given to the next one.
	id, err := releaseRepo.AddRelease(ctx, *release)
	require.NoError(t, err)
	require.Equal(t, releaseID+1, id)

	config, err := allowRepo.GetConfig(ctx)
	require.NoError(t, err)
	require.False(t, config.Paused)

	entry, err := allowRepo.GetEntry(ctx, domain.AllowKindActor, "alice")
	require.NoError(t, err)
	require.True(t, entry.Allowed)
	require.False(t, entry.Blocked)
}

func TestListAccountsPagination(t *testing.T) {
	repoManager := inmemory.NewRepoManager()
	accountRepo := repoManager.AccountRepository()

	for _, name := range []string{"dave", "carol", "alice", "bob"} {
		require.NoError(t, accountRepo.SaveAccount(ctx, newTestAccount(t, name, 1)))
	}

	tests := []struct {
		page     domain.Page
		expected []string
	}{
		{domain.NewPage(1, 3), []string{"alice", "bob", "carol"}},
		{domain.NewPage(2, 3), []string{"dave"}},
		{domain.NewPage(3, 3), []string{}},
	}

	for _, tt := range tests {
		page := tt.page
		accounts, err := accountRepo.ListAccounts(ctx, &page)
		require.NoError(t, err)
		names := make([]string, 0, len(accounts))
		for _, a := range accounts {
			names = append(names, a.ID)
		}
		require.Equal(t, tt.expected, names)
	}
}

func newTestAccount(t *testing.T, name string, amount int64) domain.Account {
	q, err := domain.NewQuantity(amount, "XPR", 4, "eosio.token")
	require.NoError(t, err)
	account, err := domain.NewAccount(name)
	require.NoError(t, err)
	require.NoError(t, account.Credit(domain.AssetSet{Tokens: []domain.Quantity{q}}))
	return *account
}
