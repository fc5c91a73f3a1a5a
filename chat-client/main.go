package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/chatroom/chat-client/client"
	"github.com/gosuda/chatroom/chat-client/stats"
	"github.com/gosuda/chatroom/chat-client/transport"
	"github.com/gosuda/chatroom/chat-client/ui"
)

var rootCmd = &cobra.Command{
	Use:   "chat-client",
	Short: "Terminal client for the chat room (websocket chat + stats polling)",
	RunE:  runClient,
}

var (
	flagServerURL      string
	flagUsername       string
	flagStatsInterval  time.Duration
	flagStatusInterval time.Duration
	flagStatusTTL      time.Duration
	flagDialTimeout    time.Duration
	flagPort           int
	flagLogFile        string
	flagLogLevel       string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagServerURL, "server-url", firstNonEmpty(os.Getenv("CHAT_SERVER_URL"), client.DefaultServerURL), "chat server base URL (from env CHAT_SERVER_URL if set)")
	flags.StringVar(&flagUsername, "username", os.Getenv("CHAT_USERNAME"), "nickname; when set the client joins on start (from env CHAT_USERNAME if set)")
	flags.DurationVar(&flagStatsInterval, "stats-interval", client.DefaultStatsInterval, "how often to poll /api/stats")
	flags.DurationVar(&flagStatusInterval, "status-interval", client.DefaultStatusInterval, "how often the connection badge is redrawn")
	flags.DurationVar(&flagStatusTTL, "status-ttl", client.DefaultStatusTTL, "how long a connection badge stays before fading")
	flags.DurationVar(&flagDialTimeout, "dial-timeout", client.DefaultDialTimeout, "websocket handshake timeout")
	flags.IntVar(&flagPort, "port", -1, "local status page HTTP port (-1 to disable)")
	flags.StringVar(&flagLogFile, "log-file", filepath.Join(os.TempDir(), "chat-client.log"), "log destination; the terminal is owned by the UI")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute chat-client command")
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	logFile, err := setupLogging(flagLogFile, flagLogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Cancellation context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := client.Config{
		ServerURL:      flagServerURL,
		StatsInterval:  flagStatsInterval,
		StatusInterval: flagStatusInterval,
		StatusTTL:      flagStatusTTL,
		DialTimeout:    flagDialTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	statsURL, err := transport.StatsURL(cfg.BaseURL())
	if err != nil {
		return fmt.Errorf("stats url: %w", err)
	}

	term := ui.New(cfg.ServerURL)
	chat, err := client.New(cfg, term, transport.NewDialer(cfg.BaseURL(), cfg.DialTimeout), stats.NewFetcher(statsURL, cfg.StatsTimeout))
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	term.Bind(chat)
	if flagUsername != "" {
		term.Prefill(flagUsername)
		chat.Join(flagUsername)
	}
	go chat.Run(ctx)
	log.Info().Str("server", cfg.ServerURL).Msg("[chat] client started")

	// Optional local status page on --port
	var httpSrv *http.Server
	if flagPort >= 0 {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", flagPort))
		if err != nil {
			return fmt.Errorf("listen status page: %w", err)
		}
		addr := "http://" + ln.Addr().String()
		httpSrv = &http.Server{Handler: NewHandler(addr, chat.Snapshot), ReadHeaderTimeout: 5 * time.Second, IdleTimeout: 60 * time.Second}
		log.Info().Msgf("[status] serving locally at %s", addr)
		go func() {
			if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Msg("[status] local http stopped")
			}
		}()
	}

	// Unified shutdown watcher
	go func() {
		<-ctx.Done()
		term.Stop()
	}()

	uiErr := term.Run()
	cancel()
	<-chat.Done()
	if httpSrv != nil {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if err := httpSrv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("[status] http server shutdown error")
		}
	}
	if uiErr != nil {
		return fmt.Errorf("terminal ui: %w", uiErr)
	}
	log.Info().Msg("[chat] shutdown complete")
	return nil
}

// setupLogging points the global logger at path; stdout belongs to the terminal UI.
func setupLogging(path, level string) (*os.File, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return f, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
