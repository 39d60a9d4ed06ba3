package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/ballroyale/server/internal/config"
	"github.com/ballroyale/server/internal/events"
	"github.com/ballroyale/server/internal/handler"
	"github.com/ballroyale/server/internal/lobby"
	"github.com/ballroyale/server/internal/session"
	"github.com/ballroyale/server/internal/store"
	"github.com/ballroyale/server/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	hub := ws.NewHub()
	directory := lobby.NewDirectory()

	var feed events.Feed = events.Nop{}
	if cfg.NATSURL != "" {
		natsFeed, err := events.ConnectNATS(cfg.NATSURL)
		if err != nil {
			slog.Error("event feed connection failed", "error", err)
			os.Exit(1)
		}
		feed = natsFeed
		slog.Info("event feed connected", "url", cfg.NATSURL)
	}

	var matches store.MatchStore
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		matches = pg
		slog.Info("match store connected")
	}

	ctrl := session.NewController(clockwork.NewRealClock(), directory, feed, matches)
	router := handler.NewRouter(directory, ctrl)

	hub.OnMessage = router.HandleMessage
	hub.OnDisconnect = router.HandleDisconnect
	go hub.Run()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth(hub, directory, ctrl))
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, &upgrader, w, r)
	})
	if matches != nil {
		mux.HandleFunc("/matches", handleMatches(matches))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: corsHandler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	feed.Close()
	if matches != nil {
		matches.Close()
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Rooms   int    `json:"rooms"`
	Games   int    `json:"games"`
}

func handleHealth(hub *ws.Hub, directory *lobby.Directory, ctrl *session.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(healthResponse{
			Status:  "ok",
			Clients: hub.ClientCount(),
			Rooms:   directory.RoomCount(),
			Games:   ctrl.SessionCount(),
		})
	}
}

func handleMatches(matches store.MatchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		results, err := matches.RecentMatches(r.Context(), r.URL.Query().Get("room"), limit)
		if err != nil {
			slog.Error("failed to list matches", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if results == nil {
			results = []store.MatchResult{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleWebSocket(hub *ws.Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(uuid.NewString(), hub, conn)
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// originChecker builds the upgrader's origin check from the configured CORS
// origins.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		return set[r.Header.Get("Origin")]
	}
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
