package server

import (
	"fmt"
	"math/rand"

	logging "gopkg.in/op/go-logging.v1"

	"github.com/lab1702/battleship-net/board"
	"github.com/lab1702/battleship-net/protocol"
)

// match drives one two-player game from placement through a win,
// forfeit, or unrecoverable disconnect. sessions and boards are indexed
// symmetrically: sessions[i] owns boards[i].
type match struct {
	cfg    Config
	log    *logging.Logger
	lobby  *Lobby
	spec   *spectatorHub
	active int

	sessions [2]*Session
	boards   [2]*board.Board
	skipped  [2]bool
}

func newMatch(cfg Config, log *logging.Logger, lobby *Lobby, spec *spectatorHub, a, b *Session) *match {
	return &match{
		cfg:      cfg,
		log:      log,
		lobby:    lobby,
		spec:     spec,
		sessions: [2]*Session{a, b},
		boards:   [2]*board.Board{board.New(), board.New()},
	}
}

// run executes the match end to end. It always leaves both original
// connections closed or handed off. It does not clear the lobby's
// gameRunning flag: the caller does that once run returns, since the
// caller also owns the cooldown sleep.
func (m *match) run() {
	if !m.runPlacement() {
		return
	}

	m.active = rand.Intn(2)
	m.log.Infof("match started: %s vs %s", m.sessions[0].Username, m.sessions[1].Username)
	for {
		out := m.playTurn()
		switch out.kind {
		case outcomeGameFinished:
			m.log.Infof("match finished: %s defeated %s", m.sessions[m.active].Username, m.sessions[1-m.active].Username)
			m.broadcastGameFinished(out)
			m.sessions[0].Conn.Close()
			m.sessions[1].Conn.Close()
			return

		case outcomeAllForfeit:
			m.log.Infof("match abandoned: both %s and %s quit", m.sessions[0].Username, m.sessions[1].Username)
			m.sessions[0].Conn.Close()
			m.sessions[1].Conn.Close()
			return

		case outcomePlayerDC:
			if !m.handleDisconnect(m.active) {
				return
			}

		case outcomeOtherDC:
			if !m.handleDisconnect(1 - m.active) {
				return
			}

		case outcomeTurnCompleted:
			m.broadcastTurnCompleted(out)
			m.skipped[m.active] = false
			m.active = 1 - m.active

		case outcomeTimeout:
			if m.resolveTimeout() {
				return
			}
		}
	}
}

// resolveTimeout applies the active player's timed-out turn: the turn
// passes to the other player, unless the player who just timed out was
// already marked skipped from their previous turn, in which case two
// consecutive skips forfeits the match immediately.
func (m *match) resolveTimeout() bool {
	m.broadcastTimeout()

	old := m.active
	alreadySkipped := m.skipped[old]
	m.active = 1 - old

	if !alreadySkipped {
		m.skipped[old] = true
		return false
	}

	loser, winner := old, m.active
	m.log.Infof("%s forfeits after two consecutive skipped turns", m.sessions[loser].Username)
	_ = m.sessions[loser].Ch.SendControl(protocol.ControlX)
	m.sessions[loser].Conn.Close()
	_ = m.sessions[winner].Ch.SendReliable(protocol.TagInfo,
		fmt.Sprintf("GAME_OVER %s is AFK, immediate forfeit, You Win!", m.sessions[loser].Username))
	m.sessions[winner].Conn.Close()
	return true
}

// handleDisconnect closes idx's dead connection and opens a 60-second
// reconnection window for it. If a matching session claims the window
// in time, it is swapped in and the match continues with the same
// active player. Otherwise the surviving opponent is awarded the win
// and returned to the lobby.
func (m *match) handleDisconnect(idx int) bool {
	sess := m.sessions[idx]
	sess.Conn.Close()
	m.log.Warningf("%s disconnected mid-match, waiting up to %s for reconnect", sess.Username, m.cfg.ReconnectTimeout)

	newSess, ok := m.lobby.AwaitReconnect(sess.Username, sess.Token, m.cfg.ReconnectTimeout)
	if ok {
		m.log.Infof("%s reconnected, resuming match", sess.Username)
		m.sessions[idx] = newSess
		_ = newSess.Ch.SendReliable(protocol.TagRolePlayer, fmt.Sprintf("Welcome back, %s", sess.Username))
		_ = newSess.Ch.SendReliable(protocol.TagInfo, "token:"+newSess.Token)
		return true
	}

	m.log.Infof("%s did not reconnect in time, forfeiting to %s", sess.Username, m.sessions[1-idx].Username)
	survivor := m.sessions[1-idx]
	_ = survivor.Ch.SendReliable(protocol.TagInfo, "[Opponent disconnected] You win!")
	m.lobby.PushFront(survivor)
	return false
}

func (m *match) broadcastTurnCompleted(out turnOutcome) {
	name := m.sessions[m.active].Username
	resultText := "MISS"
	if out.result == board.ResultHit {
		resultText = "HIT"
	}
	msg := fmt.Sprintf("%s fired at %s: %s", name, out.coord, resultText)
	if out.sunk {
		msg += fmt.Sprintf(" (Sank %s)", out.shipName)
	}
	m.spec.BroadcastEvent(msg)
	m.spec.BroadcastBoard(m.boards[1-m.active])
}

func (m *match) broadcastTimeout() {
	m.spec.BroadcastEvent(fmt.Sprintf("%s has timed out, their turn will be skipped", m.sessions[m.active].Username))
}

func (m *match) broadcastGameFinished(out turnOutcome) {
	winner := m.sessions[m.active].Username
	loser := m.sessions[1-m.active].Username
	m.spec.BroadcastEvent(fmt.Sprintf("%s defeated %s! All ships sunk.", winner, loser))
	m.spec.BroadcastBoard(m.boards[0])
	m.spec.BroadcastBoard(m.boards[1])
}
