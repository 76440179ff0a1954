package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/config"
	"github.com/tdex-network/custodyd/internal/core/application"
	"github.com/tdex-network/custodyd/internal/core/application/gateway"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/tdex-network/custodyd/internal/infrastructure/auth"
	"github.com/tdex-network/custodyd/internal/infrastructure/metrics"
	wsnotifier "github.com/tdex-network/custodyd/internal/infrastructure/notifier/ws"
	pubsubinfra "github.com/tdex-network/custodyd/internal/infrastructure/pubsub"
	releaseinfra "github.com/tdex-network/custodyd/internal/infrastructure/release"
	httpinterface "github.com/tdex-network/custodyd/internal/interfaces/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("error while loading config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	dbType := config.GetString(config.DBTypeKey)
	dbLogger := log.New()
	dbLogger.SetLevel(log.GetLevel())

	authorizer, err := auth.NewAuthorizer(config.GetString(config.AuthSecretKey))
	if err != nil {
		log.WithError(err).Fatal("error while initializing authorizer")
	}

	var webhooksDir string
	if dbType == config.DBBadger {
		webhooksDir = filepath.Join(config.GetDatadir(), config.WebhooksLocation)
	}
	webhookPubSub, err := pubsubinfra.NewService(webhooksDir, dbLogger)
	if err != nil {
		log.WithError(err).Fatal("error while opening webhooks db")
	}

	var releaseSender ports.ReleaseSender
	if endpoint := config.GetString(config.ReleaseEndpointKey); len(endpoint) > 0 {
		if releaseSender, err = releaseinfra.NewHTTPSender(endpoint); err != nil {
			log.WithError(err).Fatal("error while initializing release sender")
		}
	} else {
		log.Warnf(
			"%s not set, releases will be enqueued but never delivered",
			config.ReleaseEndpointKey,
		)
	}

	appConfig := &application.Config{
		DBType:             dbType,
		DBConfig:           config.GetDbDir(),
		DBLogger:           dbLogger,
		Authorizer:         authorizer,
		PubSub:             webhookPubSub,
		ReleaseSender:      releaseSender,
		ReleaseInterval:    config.GetDuration(config.ReleaseIntervalKey),
		ReleaseRateLimit:   config.GetInt(config.ReleaseRateLimitKey),
		ReleaseMaxAttempts: config.GetInt(config.ReleaseMaxAttemptsKey),
		Gateway: gateway.Config{
			Contract:       config.GetString(config.ContractAccountKey),
			NftContract:    config.GetString(config.NftContractKey),
			SystemAccounts: config.GetStringSlice(config.SystemAccountsKey),
		},
		AllowListEnabled: config.GetBool(config.AllowListEnabledKey),
	}
	if err := appConfig.Validate(); err != nil {
		log.WithError(err).Fatal("error while initializing services")
	}

	metricsRegistry, err := metrics.NewRegistry(appConfig.RepoManager())
	if err != nil {
		log.WithError(err).Fatal("error while initializing metrics")
	}

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:        config.GetInt(config.ListeningPortKey),
		MetricsPort: config.GetInt(config.MetricsPortKey),
		LedgerSvc:   appConfig.LedgerService(),
		GatewaySvc:  appConfig.GatewayService(),
		EscrowSvc:   appConfig.EscrowService(),
		AllowSvc:    appConfig.AllowService(),
		PubSubSvc:   appConfig.PubSubService(),
		ReleaseSvc:  appConfig.ReleaseService(),
		Authorizer:  authorizer,
		Metrics:     metricsRegistry,
	})
	if err != nil {
		log.WithError(err).Fatal("error while initializing http interface")
	}

	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("error while starting http interface")
	}

	releaseSvc := appConfig.ReleaseService()
	if releaseSvc != nil {
		releaseSvc.Start()
		log.Info("release dispatcher started")
	}

	sweeper := newEscrowSweeper(
		appConfig.EscrowService(), config.GetDuration(config.EscrowSweepIntervalKey),
	)
	sweeper.start()

	var notifier ports.Notifier
	if wsURL := config.GetString(config.NotifierWsURLKey); len(wsURL) > 0 {
		notifier, err = wsnotifier.NewNotifier(wsURL, wsnotifier.DefaultReconnectInterval)
		if err != nil {
			log.WithError(err).Fatal("error while initializing notifier")
		}
		feed, err := notifier.Start()
		if err != nil {
			log.WithError(err).Fatal("error while connecting to notifier")
		}
		go consumeNotifications(feed, appConfig.GatewayService())
		log.Infof("listening for transfer notifications on %s", wsURL)
	}

	log.Info("custody daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")

	if notifier != nil {
		notifier.Stop()
	}
	sweeper.stop()
	if releaseSvc != nil {
		releaseSvc.Stop()
	}
	httpSvc.Stop()
	if err := webhookPubSub.Close(); err != nil {
		log.WithError(err).Warn("error while closing webhooks db")
	}
	appConfig.RepoManager().Close()

	log.Info("exiting")
}
