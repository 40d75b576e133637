package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tandemwire/tandem/pkg/middleware"
	"github.com/tandemwire/tandem/pkg/mux"
	"github.com/tandemwire/tandem/pkg/transport/ws"
)

func serveCmd() *cobra.Command {
	var (
		configPath   string
		addr         string
		pingInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the demo catalog over websocket",
		Long: `Serve accepts websocket connections on /ws and answers the demo
catalog (ping, echo, reverse, stats, fail). /metrics exposes Prometheus
metrics and /healthz answers liveness probes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultServeConfig()
			if configPath != "" {
				var err error
				if cfg, err = loadServeConfig(configPath, cfg); err != nil {
					return err
				}
			}
			// Flags beat the file.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("ping-interval") {
				cfg.PingInterval = pingInterval
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", ":8433", "HTTP listen address")
	cmd.Flags().DurationVar(&pingInterval, "ping-interval", 30*time.Second, "Websocket heartbeat interval")

	return cmd
}

// server hosts the demo handlers and their shared counters.
type server struct {
	demo    *demoCatalog
	logger  *slog.Logger
	started time.Time

	requests   atomic.Uint64
	perMessage map[string]*atomic.Uint64

	mw     []mux.Middleware
	wsOpts []ws.Option
}

func runServe(cfg serveConfig) error {
	logger := slog.Default()

	srv := &server{
		demo:    newDemoCatalog(),
		logger:  logger,
		started: time.Now(),
		perMessage: map[string]*atomic.Uint64{
			"ping": {}, "echo": {}, "reverse": {}, "stats": {}, "fail": {},
		},
		wsOpts: []ws.Option{
			ws.WithPingInterval(cfg.PingInterval),
			ws.WithReadLimit(cfg.ReadLimit),
			ws.WithLogger(logger),
		},
	}

	// One metrics middleware instance shared by all peers, default
	// registry.
	srv.mw = []mux.Middleware{
		middleware.Recover(),
		middleware.Prometheus(middleware.WithNamespace(cfg.MetricsNamespace)),
		srv.countRequests(),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", srv.handleWS)

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// countRequests tallies per-message totals for the stats reply.
func (s *server) countRequests() mux.Middleware {
	return func(next mux.HandlerFunc) mux.HandlerFunc {
		return func(ctx context.Context, req *mux.Request) ([]byte, error) {
			s.requests.Add(1)
			if c, ok := s.perMessage[req.Name]; ok {
				c.Add(1)
			}
			return next(ctx, req)
		}
	}
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Upgrade(w, r, s.wsOpts...)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sessionLogger := s.logger.With("session_id", uuid.NewString()[:8], "remote", r.RemoteAddr)
	sessionLogger.Info("peer connected")

	peer := mux.NewPeer(conn, s.demo.Catalog,
		mux.WithLogger(sessionLogger),
		mux.WithMiddleware(s.mw...))
	s.bind(peer)
	peer.Start()

	go func() {
		if err := peer.Wait(); err != nil {
			sessionLogger.Warn("peer terminated", "error", err)
			return
		}
		sessionLogger.Info("peer disconnected")
	}()
}

// bind attaches the demo handlers to one peer.
func (s *server) bind(peer *mux.Peer) {
	s.demo.Ping.Bind(peer, func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, nil
	})

	s.demo.Echo.Bind(peer, func(ctx context.Context, req []byte) ([]byte, error) {
		return req, nil
	})

	s.demo.Reverse.Bind(peer, func(ctx context.Context, req string) (string, error) {
		return reverseString(req), nil
	})

	s.demo.Stats.Bind(peer, func(ctx context.Context, _ struct{}) (statsReply, error) {
		per := make(map[string]uint64, len(s.perMessage))
		for name, c := range s.perMessage {
			per[name] = c.Load()
		}
		return statsReply{
			UptimeSeconds: time.Since(s.started).Seconds(),
			Requests:      s.requests.Load(),
			PerMessage:    per,
		}, nil
	})

	s.demo.Fail.Bind(peer, func(ctx context.Context, reason string) (struct{}, error) {
		if reason == "" {
			reason = "failure requested"
		}
		return struct{}{}, &failError{reason: reason}
	})
}

// failError is the fail handler's deliberate failure; only its text
// reaches the caller.
type failError struct {
	reason string
}

func (e *failError) Error() string {
	return e.reason
}
