package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/interfaces"
	httphandler "github.com/tdex-network/tdex-otc/internal/interfaces/http/handler"
	"github.com/tdex-network/tdex-otc/internal/interfaces/http/middleware"
	"github.com/tdex-network/tdex-otc/pkg/stats"
)

const shutdownTimeout = 10 * time.Second

type service struct {
	server *http.Server
}

type ServiceOpts struct {
	Address string

	SettlementSvc application.SettlementService
	AdminSvc      application.AdminService
	QuerySvc      application.QueryService
	BuildInfo     application.BuildInfo

	// Ledger exposes balances and allowances if not nil.
	Ledger httphandler.Ledger
	// EventStream serves the websocket event stream at /v1/events if not nil.
	EventStream http.Handler
	// Registry is where http metrics are registered and served from at
	// /metrics. Defaults to the prometheus default registry.
	Registry *prometheus.Registry
}

func (o ServiceOpts) validate() error {
	if o.SettlementSvc == nil {
		return fmt.Errorf("settlement app service must not be null")
	}
	if o.AdminSvc == nil {
		return fmt.Errorf("admin app service must not be null")
	}
	if o.QuerySvc == nil {
		return fmt.Errorf("query app service must not be null")
	}
	return nil
}

func (o ServiceOpts) registerer() prometheus.Registerer {
	if o.Registry == nil {
		return prometheus.DefaultRegisterer
	}
	return o.Registry
}

func (o ServiceOpts) gatherer() prometheus.Gatherer {
	if o.Registry == nil {
		return prometheus.DefaultGatherer
	}
	return o.Registry
}

// NewService returns the http interface of the daemon listening on
// opts.Address.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	router, err := NewRouter(opts)
	if err != nil {
		return nil, err
	}
	return &service{
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// NewRouter returns the http handler serving all the routes of the daemon.
func NewRouter(opts ServiceOpts) (http.Handler, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	metrics, err := stats.NewHTTPMetrics(opts.registerer())
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics(metrics))

	r.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(opts.gatherer(), promhttp.HandlerOpts{}),
	))

	offerHandler := httphandler.NewOfferHandler(
		opts.SettlementSvc, opts.QuerySvc, opts.BuildInfo,
	)
	adminHandler := httphandler.NewAdminHandler(opts.AdminSvc)

	v1 := r.Group("/v1")
	v1.GET("/info", offerHandler.GetInfo)
	v1.GET("/params", offerHandler.GetParams)
	v1.GET("/offers", offerHandler.ListActiveOffers)
	v1.GET("/offers/:id", offerHandler.GetOffer)
	v1.GET("/accounts/:account/offers", offerHandler.ListAccountOffers)
	v1.GET("/accounts/:account/profile", offerHandler.GetProfile)
	if opts.EventStream != nil {
		v1.GET("/events", gin.WrapH(opts.EventStream))
	}

	authenticated := v1.Group("", middleware.RequireAccount())
	authenticated.POST("/offers", offerHandler.CreateOffer)
	authenticated.POST("/offers/:id/accept", offerHandler.AcceptOffer)
	authenticated.POST("/offers/:id/cancel", offerHandler.RequestCancel)
	authenticated.POST("/offers/:id/finalize-cancel", offerHandler.FinalizeCancel)
	authenticated.POST("/offers/:id/reclaim", offerHandler.ReclaimExpired)

	admin := authenticated.Group("/admin")
	admin.PUT("/min-stake", adminHandler.UpdateMinStake)
	admin.PUT("/fee", adminHandler.UpdateFee)
	admin.PUT("/fee-recipient", adminHandler.UpdateFeeRecipient)
	admin.PUT("/admin", adminHandler.TransferAdmin)
	admin.POST("/withdraw-fees", adminHandler.WithdrawFees)
	admin.GET("/webhooks", adminHandler.ListWebhooks)
	admin.POST("/webhooks", adminHandler.AddWebhook)
	admin.DELETE("/webhooks/:id", adminHandler.RemoveWebhook)

	if opts.Ledger != nil {
		ledgerHandler := httphandler.NewLedgerHandler(opts.Ledger)
		v1.GET("/accounts/:account/balances", ledgerHandler.GetBalances)
		authenticated.POST("/ledger/approve", ledgerHandler.Approve)
	}

	return r, nil
}

func (s *service) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(listener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http interface stopped unexpectedly")
		}
	}()
	log.Infof("http interface listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
	}
	log.Debug("disabled http interface")
}
