package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"gosuda.org/portal/sdk"

	"github.com/qubird/chatrooms/client"
	"github.com/qubird/chatrooms/server"
	"github.com/qubird/chatrooms/wire"
)

var rootCmd = &cobra.Command{
	Use:   "chatrooms",
	Short: "Poll-based chat rooms: reference server and terminal client",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat server (local HTTP, optional portal relay)",
	RunE:  runServe,
}

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a room and sync it to the terminal",
	RunE:  runJoin,
}

var (
	flagPort       int
	flagName       string
	flagDataPath   string
	flagServerURLs []string

	flagServer   string
	flagRoom     string
	flagUsername string
	flagTimeout  time.Duration
)

func init() {
	sf := serveCmd.Flags()
	sf.IntVar(&flagPort, "port", 8090, "local chat HTTP port (negative to disable)")
	sf.StringVar(&flagName, "name", "chatrooms", "server display name")
	sf.StringVar(&flagDataPath, "data-path", "", "optional directory to persist messages via PebbleDB")
	sf.StringSliceVar(&flagServerURLs, "server-url", nil, "optional portal relay URL(s); repeat or comma-separated")

	jf := joinCmd.Flags()
	jf.StringVar(&flagServer, "server", "http://127.0.0.1:8090", "chat server base URL")
	jf.StringVar(&flagRoom, "room", "general", "room id to join")
	jf.StringVar(&flagUsername, "username", "", "username (empty for a generated guest name)")
	jf.DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-request timeout; keep above the server's long-poll window")

	rootCmd.AddCommand(serveCmd, joinCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute chatrooms command")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional persistent store
	var store *server.Store
	if flagDataPath != "" {
		s, err := server.OpenStore(flagDataPath)
		if err != nil {
			log.Warn().Err(err).Msg("[serve] open store failed; running in memory only")
		} else {
			store = s
		}
	}
	rooms := server.NewRooms(store)
	handler := server.NewHandler(flagName, rooms)

	// Optional relay listeners
	var clients []*sdk.RDClient
	var listeners []net.Listener
	for _, u := range flagServerURLs {
		if u == "" {
			continue
		}
		rc, err := sdk.NewClient(func(c *sdk.RDClientConfig) { c.BootstrapServers = []string{u} })
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("[serve] new relay client failed")
			continue
		}
		clients = append(clients, rc)
		cred := sdk.NewCredential()
		ln, err := rc.Listen(cred, flagName, []string{"http/1.1"})
		if err != nil {
			return fmt.Errorf("relay listen (%s): %w", u, err)
		}
		listeners = append(listeners, ln)
		go func() {
			if err := http.Serve(ln, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
				log.Error().Err(err).Msg("[serve] relay http error")
			}
		}()
	}

	// Local server on --port
	var httpSrv *http.Server
	if flagPort >= 0 {
		httpSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", flagPort),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		log.Info().Msgf("[serve] serving locally at http://127.0.0.1:%d", flagPort)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Err(err).Msg("[serve] local http stopped")
			}
		}()
	}

	// Unified shutdown watcher
	go func() {
		<-ctx.Done()
		for _, ln := range listeners {
			_ = ln.Close()
		}
		for _, c := range clients {
			_ = c.Close()
		}
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("[serve] http server shutdown error")
			}
		}
	}()

	<-ctx.Done()
	if store != nil {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("[serve] store close error")
		}
	}
	log.Info().Msg("[serve] shutdown complete")
	return nil
}

func runJoin(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	username := flagUsername
	if username == "" {
		username = "guest-" + uuid.NewString()[:8]
	}
	session := wire.Session{Username: username, RoomID: flagRoom}
	api := client.NewAPI(flagServer, flagTimeout)
	renderer := client.NewConsoleRenderer(os.Stdout)

	// Baseline the cursor before any loop starts.
	msgSync := client.NewMessageSync(api, session, renderer)
	if err := msgSync.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap cursor: %w", err)
	}
	log.Info().Str("room", flagRoom).Str("user", username).Msg("[join] connected")

	// The three loops run independently; each re-arms itself on completion
	// of its own request per its policy.
	go client.RunLoop(ctx, "messages", msgSync.Step, client.RearmOnSuccessOrTimeout)
	presence := client.NewPresenceTracker(api, session, renderer)
	go client.RunLoop(ctx, "presence", presence.Step, client.RearmOnSuccess)
	client.NewHeartbeat(api, session).Announce(ctx)

	// Stdin drives the composer; a sent line clears by virtue of the
	// scanner moving on. The echo arrives via the next message poll.
	composer := client.NewComposeController(api, session)
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("[join] shutdown complete")
			return nil
		case line, ok := <-lines:
			if !ok {
				// stdin closed; treat like an interrupt
				lines = nil
				stop()
				continue
			}
			if err := composer.Submit(ctx, line); err != nil {
				log.Warn().Err(err).Msg("[join] send failed")
			}
		}
	}
}
