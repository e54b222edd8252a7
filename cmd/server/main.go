package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"bananarealm/config"
	"bananarealm/handlers"
	"bananarealm/logging"
	"bananarealm/persistence"
	"bananarealm/services"
	"bananarealm/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func main() {
	port, err := portFromArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: server [port]")
		os.Exit(1)
	}

	cfg := config.Load()
	logging.Init(cfg.LogFile)
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if shutdown, err := telemetry.Setup(ctx); err != nil {
		logging.L.Warnf("telemetry disabled: %v", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	board, err := persistence.NewFileStore(cfg.MapFile).Load()
	if err != nil {
		logging.L.Errorf("load board: %v", err)
		fmt.Fprintf(os.Stderr, "load board: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	manager := handlers.NewClientManager()
	engine, err := services.NewEngine(board, manager, rand.New(rand.NewSource(seed)))
	if err != nil {
		logging.L.Errorf("start engine: %v", err)
		fmt.Fprintf(os.Stderr, "start engine: %v\n", err)
		os.Exit(1)
	}
	go engine.Run(ctx)
	go engine.RunClock(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.L.Warnf("upgrade failed: %v", err)
			return
		}
		handlers.HandleClient(ws, engine, manager)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		logging.L.Infow("server listening", "port", port, "map", cfg.MapFile, "seed", seed)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.L.Errorf("listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.L.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// portFromArgs reads the optional single port argument. More than one
// argument, or one that is not an integer, is a startup error.
func portFromArgs(args []string) (int, error) {
	switch len(args) {
	case 0:
		return config.DefaultPort, nil
	case 1:
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("invalid port %q", args[0])
		}
		return port, nil
	default:
		return 0, errors.New("too many arguments")
	}
}
