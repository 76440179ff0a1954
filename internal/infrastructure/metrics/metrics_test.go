package metrics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/custodyd/internal/core/domain"
	"github.com/tdex-network/custodyd/internal/infrastructure/metrics"
	"github.com/tdex-network/custodyd/internal/infrastructure/storage/db/inmemory"
)

func TestStorageCollector(t *testing.T) {
	ctx := context.Background()
	repoManager := inmemory.NewRepoManager()

	accounts := []domain.Account{
		{ID: "alice", Payer: "custody", Assets: domain.AssetSet{Nfts: []uint64{1}}},
		{ID: "bob", Payer: "custody", Assets: domain.AssetSet{Nfts: []uint64{2}}},
		{ID: "carol", Payer: "carol", Assets: domain.AssetSet{Nfts: []uint64{3}}},
	}
	for _, a := range accounts {
		require.NoError(t, repoManager.AccountRepository().SaveAccount(ctx, a))
	}
	require.NoError(t, repoManager.EscrowRepository().AddEscrow(ctx, domain.Escrow{
		ID: 1, From: "alice", To: "bob", Payer: "alice",
		FromAssets: domain.AssetSet{Nfts: []uint64{4}},
		Expiry:     time.Now().Add(time.Hour).Unix(),
	}))

	expected := `
# HELP custody_stored_records Number of records stored per payer.
# TYPE custody_stored_records gauge
custody_stored_records{kind="account",payer="carol"} 1
custody_stored_records{kind="account",payer="custody"} 2
custody_stored_records{kind="escrow",payer="alice"} 1
`
	err := testutil.CollectAndCompare(
		metrics.NewStorageCollector(repoManager), strings.NewReader(expected),
		"custody_stored_records",
	)
	require.NoError(t, err)
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewHTTPMetrics(reg)
	require.NoError(t, err)

	m.Observe("/v1/withdraw", http.MethodPost, http.StatusOK, time.Millisecond)
	m.Observe("/v1/withdraw", http.MethodPost, http.StatusOK, time.Millisecond)
	m.Observe("/v1/withdraw", http.MethodPost, http.StatusConflict, time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "custody_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// already registered
	_, err = metrics.NewHTTPMetrics(reg)
	require.Error(t, err)

	var nilMetrics *metrics.HTTPMetrics
	nilMetrics.Observe("/", http.MethodGet, http.StatusOK, 0)
}

func TestRegistryHandler(t *testing.T) {
	reg, err := metrics.NewRegistry(inmemory.NewRepoManager())
	require.NoError(t, err)

	reg.HTTP.Observe("/v1/accounts", http.MethodGet, http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "custody_http_requests_total")
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
