package server

import "time"

// Config holds every tunable governing lobby, matchmaking, and turn
// timing. Values mirror the wire protocol's documented defaults. The
// listen address, lobby capacity, and the turn, placement and reconnect
// timeouts are overridable at startup (see main.go's flags); the other
// fields keep their defaults.
type Config struct {
	ListenAddr string

	LobbyCapacity int

	AckTimeout time.Duration
	AckRetries int

	ProbeTimeout time.Duration

	PlacementTimeout time.Duration
	TurnTimeout      time.Duration
	ReconnectTimeout time.Duration

	MatchCooldown time.Duration
}

// DefaultConfig returns the values the service runs with absent any
// flag overrides.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.2:5000",
		LobbyCapacity:    10,
		AckTimeout:       30 * time.Second,
		AckRetries:       3,
		ProbeTimeout:     3 * time.Second,
		PlacementTimeout: 180 * time.Second,
		TurnTimeout:      30 * time.Second,
		ReconnectTimeout: 60 * time.Second,
		MatchCooldown:    5 * time.Second,
	}
}
