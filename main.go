package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lab1702/battleship-net/server"
)

func main() {
	defaults := server.DefaultConfig()

	addr := flag.String("addr", defaults.ListenAddr, "TCP address to listen on")
	capacity := flag.Int("lobby-capacity", defaults.LobbyCapacity, "maximum number of clients waiting in the lobby")
	turnTimeout := flag.Duration("turn-timeout", defaults.TurnTimeout, "how long a player has to fire before their turn is skipped")
	placementTimeout := flag.Duration("placement-timeout", defaults.PlacementTimeout, "how long a player has to place all five ships")
	reconnectTimeout := flag.Duration("reconnect-timeout", defaults.ReconnectTimeout, "how long a disconnected player's seat stays open")
	flag.Parse()

	cfg := defaults
	cfg.ListenAddr = *addr
	cfg.LobbyCapacity = *capacity
	cfg.TurnTimeout = *turnTimeout
	cfg.PlacementTimeout = *placementTimeout
	cfg.ReconnectTimeout = *reconnectTimeout

	srv := server.New(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("shutting down (signal: %v)...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
