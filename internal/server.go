package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/notify"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	workoutsmcp "github.com/2beens/fittrack/internal/workouts/mcp"
	"github.com/2beens/fittrack/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	location *time.Location
	backends *Backends

	tracker   *workouts.Tracker
	hub       *notify.Hub
	tokenAuth *middleware.TokenAuth

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	VersionInfo string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	cfg := params.Config

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.HoneycombEnabled, "fittrack")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	s := &Server{
		config:       cfg,
		location:     location,
		versionInfo:  params.VersionInfo,
		otelShutdown: otelShutdown,
		tokenAuth:    middleware.NewTokenAuth(cfg.APITokenHash),
	}
	defer func() {
		if err != nil {
			s.closeResources()
		}
	}()

	var collectors []prometheus.Collector
	s.backends, err = OpenBackends(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if s.backends.DBPool != nil {
		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			s.backends.DBPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}

	s.promRegistry = metrics.SetupPrometheus(collectors...)
	s.metricsManager = metrics.NewManager("fittrack", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	templates, overrides, err := s.backends.Stores(s.metricsManager)
	if err != nil {
		return nil, err
	}

	s.hub = notify.NewHub(cfg.AllowedOrigins, s.metricsManager)
	s.tracker = workouts.NewTracker(workouts.NewTrackerParams{
		Templates: templates,
		Overrides: overrides,
		StreakCap: cfg.StreakCap,
		Notifier:  s.hub,
		Metrics:   s.metricsManager,
	})

	if !s.tokenAuth.Enabled() {
		log.Warnln("no api token hash configured, write routes are open")
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	writeMiddleware := []mux.MiddlewareFunc{s.tokenAuth.Check()}
	if s.config.WriteRateLimit > 0 && s.backends.Redis != nil {
		writeMiddleware = append(writeMiddleware, middleware.RateLimit(
			redis_rate.NewLimiter(s.backends.Redis),
			"fittrack-writes",
			s.config.WriteRateLimit,
			s.metricsManager,
		))
	}

	workoutsHandler := workouts.NewHandler(s.tracker, s.location)
	workoutsHandler.SetupRoutes(r, writeMiddleware...)

	r.Handle("/ws/changes", s.hub).Methods("GET").Name("ws-changes")

	if s.config.MCPEnabled {
		mcpServer := workoutsmcp.NewServer(s.tracker, s.location)
		r.PathPrefix("/mcp").Handler(
			otelhttp.NewHandler(workoutsmcp.NewHTTPHandler(mcpServer), "mcp"),
		).Name("mcp")
	}

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:           s.routerSetup(),
		Addr:              ipAndPort,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// Tracker exposes the service core, e.g. for seeding a memory-backed instance.
func (s *Server) Tracker() *workouts.Tracker {
	return s.tracker
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()

	// websocket connections are hijacked, http.Server.Shutdown does not wait for them
	s.hub.Close()

	g, gCtx := errgroup.WithContext(ctx)
	for name, srv := range map[string]*http.Server{
		"http":    s.httpServer,
		"metrics": s.metricsHttpServer,
	} {
		if srv == nil {
			continue
		}
		g.Go(func() error {
			if err := srv.Shutdown(gCtx); err != nil {
				return fmt.Errorf("shutdown %s server: %w", name, err)
			}
			log.Warnf("%s server shut down", name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf(" >>> %s", err)
	}

	s.closeResources()
}

func (s *Server) closeResources() {
	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.backends != nil {
		s.backends.Close()
	}
}
