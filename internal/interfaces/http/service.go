package httpinterface

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custodyd/internal/core/application/allow"
	"github.com/tdex-network/custodyd/internal/core/application/escrow"
	"github.com/tdex-network/custodyd/internal/core/application/gateway"
	"github.com/tdex-network/custodyd/internal/core/application/ledger"
	"github.com/tdex-network/custodyd/internal/core/application/pubsub"
	"github.com/tdex-network/custodyd/internal/core/application/release"
	"github.com/tdex-network/custodyd/internal/core/ports"
	"github.com/tdex-network/custodyd/internal/infrastructure/auth"
	"github.com/tdex-network/custodyd/internal/infrastructure/metrics"
	interfaces "github.com/tdex-network/custodyd/internal/interfaces"
)

const shutdownTimeout = 5 * time.Second

// Authorizer is the authorizer used by the API: it verifies the bearer
// tokens of the requests and can issue new ones.
type Authorizer interface {
	ports.Authorizer
	ParseToken(token string) (*auth.Claims, error)
	IssueToken(account string, admin bool, ttl time.Duration) (string, error)
}

type ServiceOpts struct {
	Port        int
	MetricsPort int
	// AllowedOrigins are the CORS origins, any origin if empty.
	AllowedOrigins []string

	LedgerSvc  *ledger.Service
	GatewaySvc *gateway.Service
	EscrowSvc  *escrow.Service
	AllowSvc   *allow.Service
	PubSubSvc  *pubsub.Service
	// ReleaseSvc is nil if no release endpoint is configured.
	ReleaseSvc *release.Service
	Authorizer Authorizer
	Metrics    *metrics.Registry
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 {
		return fmt.Errorf("missing listening port")
	}
	if o.MetricsPort > 0 && o.MetricsPort == o.Port {
		return fmt.Errorf("metrics port must be different from listening port")
	}
	if o.LedgerSvc == nil {
		return fmt.Errorf("missing ledger service")
	}
	if o.GatewaySvc == nil {
		return fmt.Errorf("missing gateway service")
	}
	if o.EscrowSvc == nil {
		return fmt.Errorf("missing escrow service")
	}
	if o.AllowSvc == nil {
		return fmt.Errorf("missing allow service")
	}
	if o.Authorizer == nil {
		return fmt.Errorf("missing authorizer")
	}
	return nil
}

func (o ServiceOpts) address() string {
	return fmt.Sprintf(":%d", o.Port)
}

func (o ServiceOpts) metricsAddress() string {
	return fmt.Sprintf(":%d", o.MetricsPort)
}

type service struct {
	opts          ServiceOpts
	server        *http.Server
	metricsServer *http.Server
}

// NewService returns the HTTP/JSON interface of the daemon. Prometheus
// metrics are served on the same port unless a dedicated one is given.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	handler, err := NewHandler(opts)
	if err != nil {
		return nil, err
	}

	svc := &service{
		opts:   opts,
		server: &http.Server{Handler: handler},
	}
	if opts.Metrics != nil && opts.MetricsPort > 0 {
		svc.metricsServer = &http.Server{Handler: opts.Metrics.Handler()}
	}
	return svc, nil
}

// NewHandler returns the router serving the API, wrapped by the CORS
// handler.
func NewHandler(opts ServiceOpts) (http.Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Metrics != nil {
		router.Use(withMetrics(opts.Metrics.HTTP))
	}
	router.Use(withLogger(), withAuth(opts.Authorizer))

	h := &handler{opts}
	h.registerRoutes(router)
	if opts.Metrics != nil && opts.MetricsPort <= 0 {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	origins := opts.AllowedOrigins
	if len(origins) <= 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router), nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.address())
	if err != nil {
		return err
	}
	go serve(s.server, lis)
	log.Infof("http api listening on %s", s.opts.address())

	if s.metricsServer != nil {
		lis, err := net.Listen("tcp", s.opts.metricsAddress())
		if err != nil {
			s.server.Close()
			return err
		}
		go serve(s.metricsServer, lis)
		log.Infof("metrics listening on %s", s.opts.metricsAddress())
	}
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error while shutting down http api")
	}
	log.Debug("stopped http api")

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("error while shutting down metrics server")
		}
		log.Debug("stopped metrics server")
	}
}

func serve(server *http.Server, lis net.Listener) {
	if err := server.Serve(lis); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("http server stopped unexpectedly")
	}
}
