// Command hangmen starts the Hangmen game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the game API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, rules directory, log level, rate limiting, session
// housekeeping and optional ngrok tunneling. Every flag can also be set from
// the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15/v3"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/hangmen/api"
	"github.com/wricardo/hangmen/game/config"
	"github.com/wricardo/hangmen/game/service"
	"github.com/wricardo/hangmen/game/session"
	"github.com/wricardo/hangmen/logging"
	"github.com/wricardo/hangmen/transport/mcp"
	"github.com/wricardo/hangmen/transport/websocket"
	"go.uber.org/multierr"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	ngrokLog "golang.ngrok.com/ngrok/log/log15"
	"golang.org/x/sync/errgroup"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Hangmen Server"
)

const (
	shutdownTimeout      = 10 * time.Second
	limiterPruneInterval = time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

// serverConfig is the resolved command line and environment configuration.
type serverConfig struct {
	Host           string
	Port           int
	RulesDir       string
	DefaultRules   string
	LogLevel       string
	RateLimitRPS   float64
	RateLimitBurst int
	SweepInterval  time.Duration
	SessionTTL     time.Duration
	ExternalURL    string

	NgrokEnabled bool
	NgrokAuth    string
	NgrokDomain  string
}

func (c serverConfig) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

func main() {
	// Load .env file if it exists
	dotenvErr := godotenv.Load()

	if err := newCommand(dotenvErr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

// newCommand builds the CLI. dotenvErr is reported once logging is set up.
func newCommand(dotenvErr error) *cli.Command {
	serve := func(ctx context.Context, cmd *cli.Command) error {
		cfg, logger, err := setup(cmd, dotenvErr)
		if err != nil {
			return err
		}
		return runHTTPServer(ctx, cfg, logger)
	}

	return &cli.Command{
		Name:    "hangmen",
		Usage:   "Multiplayer reverse hangman over a polling HTTP API",
		Version: Version,
		Flags:   globalFlags(),
		Action:  serve,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, reusing a running API or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "external-url",
						Usage:   "API to reuse when it is reachable (default http://<host>:<port>)",
						Sources: cli.EnvVars("EXTERNAL_URL"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, logger, err := setup(cmd, dotenvErr)
					if err != nil {
						return err
					}
					return runStdioMCPWithInternalServer(ctx, cfg, logger)
				},
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Value:   3000,
			Usage:   "HTTP server port",
			Sources: cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "HTTP server host",
			Sources: cli.EnvVars("HOST"),
		},
		&cli.StringFlag{
			Name:    "rules-dir",
			Value:   "rules",
			Usage:   "Directory containing rules sets",
			Sources: cli.EnvVars("RULES_DIR"),
		},
		&cli.StringFlag{
			Name:    "default-rules",
			Value:   config.DefaultRulesName,
			Usage:   "Rules set used when new-session names none",
			Sources: cli.EnvVars("DEFAULT_RULES"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level: debug, info, warn, error or crit",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.Float64Flag{
			Name:    "rate-limit-rps",
			Usage:   "Requests per second per client, 0 disables rate limiting",
			Sources: cli.EnvVars("RATE_LIMIT_RPS"),
		},
		&cli.IntFlag{
			Name:    "rate-limit-burst",
			Value:   20,
			Usage:   "Burst size per client",
			Sources: cli.EnvVars("RATE_LIMIT_BURST"),
		},
		&cli.DurationFlag{
			Name:    "sweep-interval",
			Usage:   "Remove sessions found empty on two consecutive sweeps, 0 disables",
			Sources: cli.EnvVars("SWEEP_INTERVAL"),
		},
		&cli.DurationFlag{
			Name:    "session-ttl",
			Usage:   "Remove sessions idle for longer than this, 0 keeps them",
			Sources: cli.EnvVars("SESSION_TTL"),
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func configFromCommand(cmd *cli.Command) serverConfig {
	return serverConfig{
		Host:           cmd.String("host"),
		Port:           cmd.Int("port"),
		RulesDir:       cmd.String("rules-dir"),
		DefaultRules:   cmd.String("default-rules"),
		LogLevel:       cmd.String("log-level"),
		RateLimitRPS:   cmd.Float64("rate-limit-rps"),
		RateLimitBurst: cmd.Int("rate-limit-burst"),
		SweepInterval:  cmd.Duration("sweep-interval"),
		SessionTTL:     cmd.Duration("session-ttl"),
		ExternalURL:    cmd.String("external-url"),
		NgrokEnabled:   cmd.Bool("ngrok"),
		NgrokAuth:      cmd.String("ngrok-auth"),
		NgrokDomain:    cmd.String("ngrok-domain"),
	}
}

// setup resolves configuration and builds the root logger.
func setup(cmd *cli.Command, dotenvErr error) (serverConfig, log15.Logger, error) {
	cfg := configFromCommand(cmd)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return cfg, nil, err
	}

	switch {
	case dotenvErr == nil:
		logger.Debug("Loaded environment variables from .env file")
	case !errors.Is(dotenvErr, os.ErrNotExist):
		logger.Warn("Error loading .env file", "err", dotenvErr)
	}

	logger.Info("Starting "+AppName, "version", Version, "mode", cmd.Name)
	return cfg, logger, nil
}

// services bundles what both modes need.
type services struct {
	game     service.GameService
	sessions *session.Manager
}

// initializeServices wires the rules manager, session registry and game service.
func initializeServices(cfg serverConfig, logger log15.Logger) (*services, error) {
	rulesManager, err := config.NewManager(cfg.RulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create rules manager: %w", err)
	}
	if cfg.DefaultRules != "" && cfg.DefaultRules != config.DefaultRulesName {
		if err := rulesManager.SetDefault(cfg.DefaultRules); err != nil {
			return nil, fmt.Errorf("failed to set default rules %q: %w", cfg.DefaultRules, err)
		}
	}

	sessionManager := session.NewManager(session.WithLogger(logger.New("component", "session")))

	return &services{
		game:     service.NewGameService(sessionManager, rulesManager),
		sessions: sessionManager,
	}, nil
}

// buildHandler mounts the API, WebSocket and /mcp endpoint on one router.
func buildHandler(svc *services, hub *websocket.Hub, limiter *api.RateLimiter, mcpClient *mcp.Client, logger log15.Logger) http.Handler {
	opts := []api.Option{api.WithLogger(logger.New("component", "api"))}
	if limiter != nil {
		opts = append(opts, api.WithRateLimiter(limiter))
	}
	apiServer := api.NewServer(svc.game, hub, opts...)

	mainRouter := mux.NewRouter()
	if mcpClient != nil {
		mainRouter.Handle("/mcp", mcpHandler(mcpClient)).Methods(http.MethodPost)
	}
	mainRouter.PathPrefix("/").Handler(apiServer)
	return mainRouter
}

// mcpHandler answers one MCP JSON-RPC message per POST.
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer serves the game API, WebSocket hub and /mcp endpoint until
// ctx is cancelled or a signal arrives. With ngrok enabled the same handler
// is also served through a public tunnel.
func runHTTPServer(ctx context.Context, cfg serverConfig, logger log15.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := initializeServices(cfg, logger)
	if err != nil {
		return err
	}

	var limiter *api.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger.New("component", "ratelimit"))
	}

	addr := cfg.addr()
	hub := websocket.NewHub(logger.New("component", "websocket"))
	mcpClient := mcp.NewClient("http://" + addr)
	handler := buildHandler(svc, hub, limiter, mcpClient, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("Endpoints", "game", "http://"+addr+"/new-session",
			"websocket", "ws://"+addr+"/ws?sid=<session_id>", "mcp", "http://"+addr+"/mcp")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runHousekeeping(gctx, cfg, svc.sessions, limiter, logger)
		return nil
	})

	if cfg.NgrokEnabled {
		g.Go(func() error {
			runNgrok(gctx, cfg, handler, logger.New("component", "ngrok"))
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
		if n := svc.sessions.Count(); n > 0 {
			logger.Info("Discarding in-memory sessions", "count", n)
		}
		return errs
	})

	err = g.Wait()
	logger.Info("Server stopped")
	return err
}

// runHousekeeping drives the dormant sweep, idle expiry and rate limiter
// pruning. Disabled tasks never tick.
func runHousekeeping(ctx context.Context, cfg serverConfig, manager *session.Manager, limiter *api.RateLimiter, logger log15.Logger) {
	tick := func(d time.Duration) (<-chan time.Time, func()) {
		if d <= 0 {
			return nil, func() {}
		}
		t := time.NewTicker(d)
		return t.C, t.Stop
	}

	sweepC, stopSweep := tick(cfg.SweepInterval)
	defer stopSweep()

	// Check expiry a few times per TTL window.
	expireC, stopExpire := tick(cfg.SessionTTL / 4)
	defer stopExpire()

	var pruneC <-chan time.Time
	if limiter != nil {
		var stopPrune func()
		pruneC, stopPrune = tick(limiterPruneInterval)
		defer stopPrune()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-sweepC:
			if removed := manager.SweepDormant(); removed > 0 {
				logger.Info("Removed dormant sessions", "count", removed)
			}

		case <-expireC:
			if removed := manager.CleanupExpiredSessions(cfg.SessionTTL); removed > 0 {
				logger.Info("Cleaned up expired sessions", "count", removed)
			}

		case <-pruneC:
			if removed := limiter.Prune(limiterMaxIdle); removed > 0 {
				logger.Debug("Pruned idle rate limiters", "count", removed)
			}
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done. Tunnel
// failures are logged and leave the local server running.
func runNgrok(ctx context.Context, cfg serverConfig, handler http.Handler, logger log15.Logger) {
	if cfg.NgrokAuth == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var opts []ngrokConfig.HTTPEndpointOption
	if cfg.NgrokDomain != "" {
		opts = append(opts, ngrokConfig.WithDomain(cfg.NgrokDomain))
		logger.Info("Using custom ngrok domain", "domain", cfg.NgrokDomain)
	}

	logger.Info("Starting ngrok tunnel...")
	tun, err := ngrok.Listen(ctx,
		ngrokConfig.HTTPEndpoint(opts...),
		ngrok.WithAuthtoken(cfg.NgrokAuth),
		ngrok.WithLogger(ngrokLog.NewLogger(logger)),
	)
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", "err", err)
		return
	}

	ngrokURL := tun.URL()
	logger.Info("Ngrok tunnel established", "url", ngrokURL,
		"websocket", ngrokURL+"/ws?sid=<session_id>", "mcp", ngrokURL+"/mcp")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("Ngrok server error", "err", err)
	}
	logger.Info("Ngrok tunnel closed")
}

// probeAPI reports whether a Hangmen API answers at baseURL.
func probeAPI(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an
// external API when one answers; otherwise it starts an internal HTTP API on
// a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, cfg serverConfig, logger log15.Logger) error {
	externalURL := cfg.ExternalURL
	if externalURL == "" {
		externalURL = "http://" + cfg.addr()
	}

	baseURL := externalURL
	logger.Info("Checking for external API server", "url", externalURL)

	if probeAPI(ctx, externalURL) {
		logger.Info("External API server found, using it for MCP", "url", externalURL)
	} else {
		logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		svc, err := initializeServices(cfg, logger)
		if err != nil {
			listener.Close()
			return err
		}

		hub := websocket.NewHub(logger.New("component", "websocket"))
		hubCtx, stopHub := context.WithCancel(ctx)
		defer stopHub()
		go hub.Run(hubCtx)

		httpServer := &http.Server{Handler: buildHandler(svc, hub, nil, nil, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("Internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)

	readyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mcpClient.WaitReady(readyCtx); err != nil {
		return err
	}

	logger.Info("MCP stdio server ready", "api", baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
