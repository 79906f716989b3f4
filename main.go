// Command mastermind runs the Mastermind game.
//
// It supports four commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket updates, metrics and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" runs an interactive game in the terminal
//  4. "leaderboard" prints the five best winners
//
// Flags control host/port, config directory, leaderboard file, logging, and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mastermind/api"
	"github.com/wricardo/mastermind/game/config"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/service"
	"github.com/wricardo/mastermind/game/session"
	"github.com/wricardo/mastermind/transport/mcp"
	"github.com/wricardo/mastermind/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Mastermind"
)

// Services bundles everything a command needs to run the game
type Services struct {
	Game     service.GameService
	Sessions *session.Manager
	Board    *leaderboard.Store
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mastermind",
		Usage:   "Guess the hidden code in as few attempts as possible",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "leaderboard",
				Value:   "leaderboard.txt",
				Usage:   "File holding the top five winners",
				Sources: cli.EnvVars("LEADERBOARD_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "pretty",
				Usage:   "Human-friendly console logs instead of JSON",
				Sources: cli.EnvVars("LOG_PRETTY"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, setupLogging(cmd.String("log-level"), cmd.Bool("pretty"), os.Stderr)
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			leaderboardCommand(),
		},
	}
}

// setupLogging configures the global zerolog logger
func setupLogging(level string, pretty bool, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// initializeServices wires the leaderboard, session and config managers and the game service
func initializeServices(configDir, leaderboardPath string) (*Services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	board, err := leaderboard.NewStore(leaderboardPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open leaderboard: %w", err)
	}

	sessionManager := session.NewManagerWithLeaderboard(board)

	return &Services{
		Game:     service.NewGameService(sessionManager, configManager),
		Sessions: sessionManager,
		Board:    board,
	}, nil
}

func servicesFromCommand(cmd *cli.Command) (*Services, error) {
	return initializeServices(cmd.String("config-dir"), cmd.String("leaderboard"))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "Run the HTTP server with REST API, WebSocket, metrics and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.DurationFlag{
				Name:  "session-ttl",
				Value: 24 * time.Hour,
				Usage: "Remove sessions not accessed within this window",
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
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			services, err := servicesFromCommand(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			go sessionCleanupRoutine(ctx, services.Sessions, time.Hour, cmd.Duration("session-ttl"))

			return runHTTPServer(ctx, services.Game, httpOptions{
				addr:        fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port"))),
				ngrok:       cmd.Bool("ngrok"),
				ngrokAuth:   cmd.String("ngrok-auth"),
				ngrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

type httpOptions struct {
	addr        string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// newRouter combines the REST API with the /mcp HTTP endpoint
func newRouter(gameService service.GameService, hub *websocket.Hub, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(gameService, hub))

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer serves the game until ctx is done. If ngrok is enabled it
// also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService, opts httpOptions) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	mcpClient := mcp.NewClient("http://" + opts.addr)
	router := newRouter(gameService, hub, mcpClient)

	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", opts.addr).
			Str("api", "http://"+opts.addr+"/api").
			Str("ws", "ws://"+opts.addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+opts.addr+"/mcp").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveNgrok(ctx, router, opts)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return runErr
}

func serveNgrok(ctx context.Context, router http.Handler, opts httpOptions) {
	if opts.ngrokAuth == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	// Serve returns once the tunnel is closed
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

	if err := http.Serve(tun, router); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server backed by the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "Existing API server to use; an internal one is started if unreachable",
				Sources: cli.EnvVars("MASTERMIND_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			services, err := servicesFromCommand(cmd)
			if err != nil {
				return err
			}
			return runStdioMCP(ctx, services.Game, cmd.String("api-url"))
		},
	}
}

// apiAvailable reports whether a game API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and returns its base URL
func startInternalAPI(ctx context.Context, gameService service.GameService) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	return "http://" + listener.Addr().String(), httpServer, nil
}

// runStdioMCP serves MCP over stdio. It reuses the API at externalURL when
// one is running, otherwise it starts an internal API.
func runStdioMCP(ctx context.Context, gameService service.GameService, externalURL string) error {
	baseURL := externalURL
	if apiAvailable(externalURL) {
		log.Info().Str("url", externalURL).Msg("using external API server for MCP")
	} else {
		internalURL, httpServer, err := startInternalAPI(ctx, gameService)
		if err != nil {
			return err
		}
		defer httpServer.Close()
		baseURL = internalURL
		log.Info().Str("url", baseURL).Msg("started internal API server for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "player",
				Aliases: []string{"p"},
				Usage:   "Name recorded on the leaderboard",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config to play (see configs directory)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			services, err := servicesFromCommand(cmd)
			if err != nil {
				return err
			}
			return runPlay(ctx, services.Game, os.Stdin, os.Stdout, cmd.String("player"), cmd.String("config"))
		},
	}
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "Print the five best winners",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			entries, err := leaderboard.LoadTop5(cmd.String("leaderboard"))
			if err != nil {
				return err
			}
			printLeaderboard(os.Stdout, entries)
			return nil
		},
	}
}
