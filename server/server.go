// Package server implements the Battleship lobby, matchmaker, and
// turn-based match engine on top of the protocol package's framed TCP
// channel.
package server

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	logging "gopkg.in/op/go-logging.v1"

	"github.com/lab1702/battleship-net/protocol"
)

// Server listens for TCP connections, runs the lobby and matchmaker,
// and hands matched pairs of sessions off to a match.
type Server struct {
	cfg   Config
	log   *logging.Logger
	lobby *Lobby
	spec  *spectatorHub

	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New returns a Server configured but not yet listening.
func New(cfg Config) *Server {
	log := newLogger("server")
	return &Server{
		cfg:   cfg,
		log:   log,
		lobby: NewLobby(cfg.LobbyCapacity),
		spec:  newSpectatorHub(log),
		quit:  make(chan struct{}),
	}
}

// Run listens on cfg.ListenAddr and accepts connections until Shutdown
// is called. It blocks until the listener closes.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.log.Infof("listening on %s", s.cfg.ListenAddr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
			}
			s.log.Errorf("accept: %v", err)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits for in-flight
// session handlers to finish, up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("all sessions drained")
	case <-ctx.Done():
		s.log.Warning("shutdown deadline exceeded with sessions still active")
	}
}

// handleConn runs the session handler (C4): negotiate a username (and
// possibly a reconnection token), then either hand the session to a
// waiting match's reconnection slot or enqueue it in the lobby.
func (s *Server) handleConn(conn net.Conn) {
	ch := protocol.NewChannel(conn, s.cfg.AckTimeout, s.cfg.AckRetries)

	if err := ch.SendReliable(protocol.TagPrompt, "Please enter your username:"); err != nil {
		conn.Close()
		return
	}
	line, err := ch.RecvLine()
	if err != nil {
		conn.Close()
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		conn.Close()
		return
	}
	username := fields[0]
	presentedToken := ""
	if len(fields) > 1 {
		presentedToken = fields[1]
	}

	sess := newSession(conn, ch, username)

	if s.lobby.ClaimReconnect(username, presentedToken, sess) {
		s.log.Infof("%s reconnected", username)
		return
	}

	if !s.lobby.Enqueue(sess) {
		s.log.Warningf("lobby full, rejecting %s", username)
		_ = ch.SendReliable(protocol.TagStatus, "[NOTICE] Queue is full, please try again later.")
		conn.Close()
		return
	}
	s.log.Infof("%s joined the lobby", username)

	if err := ch.SendReliable(protocol.TagInfo, "token:"+sess.Token); err != nil {
		s.lobby.Remove(sess)
		conn.Close()
		return
	}
	if err := ch.SendReliable(protocol.TagStatus, "You're in queue. Waiting for match..."); err != nil {
		s.lobby.Remove(sess)
		conn.Close()
		return
	}

	if s.lobby.IsGameRunning() {
		s.spec.Attach(sess)
	}

	s.maybeStartMatchmaking()
}

// maybeStartMatchmaking claims the matchmaking right if the lobby has
// at least two queued clients and no match is already running, then
// runs the matchmaker in its own goroutine.
func (s *Server) maybeStartMatchmaking() {
	if !s.lobby.TryStartMatchmaking() {
		return
	}
	go s.runMatchmaker()
}

// runMatchmaker extracts two live clients from the front of the queue,
// probing each for liveness before committing it to the match, then
// runs the match to completion and releases the table.
func (s *Server) runMatchmaker() {
	var live []*Session
	for len(live) < 2 {
		sess, ok := s.lobby.PopFront()
		if !ok {
			s.lobby.FinishMatchmaking(live)
			return
		}
		if s.probeAlive(sess) {
			live = append(live, sess)
		} else {
			s.log.Warningf("%s failed liveness probe, dropping from lobby", sess.Username)
			sess.Conn.Close()
		}
	}

	for _, sp := range s.lobby.Snapshot() {
		s.spec.Attach(sp)
	}

	m := newMatch(s.cfg, s.log, s.lobby, s.spec, live[0], live[1])
	m.run()

	s.spec.CloseRoom()
	s.lobby.EndMatch()

	time.Sleep(s.cfg.MatchCooldown)

	if s.lobby.Len() >= 2 {
		s.maybeStartMatchmaking()
	}
}

// probeAlive sends a bare ACK frame and waits for the client's
// protocol-level auto-ack reply, used to detect queued clients whose
// sockets have silently died while they waited.
func (s *Server) probeAlive(sess *Session) bool {
	if err := sess.Ch.SendControl(protocol.ControlAck); err != nil {
		return false
	}
	select {
	case reply := <-sess.Ch.Acks():
		return reply == protocol.ControlAck
	case <-sess.Ch.Closed():
		return false
	case <-time.After(s.cfg.ProbeTimeout):
		return false
	}
}
