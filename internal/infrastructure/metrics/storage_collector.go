package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

const (
	namespace = "custody"

	recordKindAccount = "account"
	recordKindEscrow  = "escrow"

	collectTimeout = 10 * time.Second
)

type recordKey struct {
	kind  string
	payer string
}

// storageCollector exports the number of stored records per payer, read from
// the repositories at every scrape.
type storageCollector struct {
	repoManager ports.RepoManager
	records     *prometheus.Desc
}

func NewStorageCollector(repoManager ports.RepoManager) prometheus.Collector {
	return &storageCollector{
		repoManager: repoManager,
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "stored_records"),
			"Number of records stored per payer.",
			[]string{"kind", "payer"}, nil,
		),
	}
}

func (c *storageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
}

func (c *storageCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	counts := make(map[recordKey]int)

	accounts, err := c.repoManager.AccountRepository().ListAccounts(ctx, nil)
	if err != nil {
		log.WithError(err).Warn("failed to collect account records")
		ch <- prometheus.NewInvalidMetric(c.records, err)
		return
	}
	for _, a := range accounts {
		counts[recordKey{recordKindAccount, a.Payer}]++
	}

	escrows, err := c.repoManager.EscrowRepository().ListEscrows(ctx, nil)
	if err != nil {
		log.WithError(err).Warn("failed to collect escrow records")
		ch <- prometheus.NewInvalidMetric(c.records, err)
		return
	}
	for _, e := range escrows {
		counts[recordKey{recordKindEscrow, e.Payer}]++
	}

	for key, count := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.records, prometheus.GaugeValue, float64(count), key.kind, key.payer,
		)
	}
}
