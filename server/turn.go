package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/lab1702/battleship-net/board"
	"github.com/lab1702/battleship-net/protocol"
)

type outcomeKind int

const (
	outcomeTurnCompleted outcomeKind = iota
	outcomeGameFinished
	outcomeTimeout
	outcomePlayerDC
	outcomeOtherDC
	outcomeAllForfeit
)

type turnOutcome struct {
	kind     outcomeKind
	coord    string
	result   board.FireResult
	shipName string
	sunk     bool
}

type cmdKind int

const (
	cmdOther cmdKind = iota
	cmdQuit
	cmdChat
	cmdCoord
)

func parseCommand(line string) (cmdKind, string) {
	trimmed := strings.TrimSpace(line)
	if strings.EqualFold(trimmed, "quit") {
		return cmdQuit, ""
	}
	if len(line) >= 5 && strings.EqualFold(line[:5], "chat ") {
		return cmdChat, line[5:]
	}
	if trimmed == "" {
		return cmdOther, ""
	}
	return cmdCoord, trimmed
}

func isQuit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "quit")
}

// playTurn runs one iteration of the turn loop: the active player is
// prompted to fire while the waiting player is told to stand by, and
// the two peers are serviced concurrently by selecting over both of
// their line channels, their closed signals, and the turn timer. This
// replaces a fixed-interval poll of both sockets with Go's native
// multi-way select, a substitution the wire protocol's own design notes
// permit when a true select is available.
func (m *match) playTurn() turnOutcome {
	active := m.sessions[m.active]
	waiting := m.sessions[1-m.active]
	oppBoard := m.boards[1-m.active]

	_ = active.Ch.SendGrid(oppBoard.Render(false))
	_ = active.Ch.SendReliable(protocol.TagInfo, "[Your turn!]")
	_ = active.Ch.SendReliable(protocol.TagPrompt, `Enter coordinate to fire (e.g. B5) or type "quit" to disconnect:`)
	_ = waiting.Ch.SendReliable(protocol.TagStatus, "Waiting for opponent to fire...")

	timer := time.NewTimer(m.cfg.TurnTimeout)
	defer timer.Stop()

	for {
		var activeLine, waitingLine string
		var haveActive, haveWaiting bool

		select {
		case <-timer.C:
			return turnOutcome{kind: outcomeTimeout}
		case <-active.Ch.Closed():
			return turnOutcome{kind: outcomePlayerDC}
		case <-waiting.Ch.Closed():
			return turnOutcome{kind: outcomeOtherDC}
		case l := <-waiting.Ch.Lines():
			waitingLine, haveWaiting = l, true
		case l := <-active.Ch.Lines():
			activeLine, haveActive = l, true
		}

		// A quit from one side gets one non-blocking chance to catch a
		// quit already buffered on the other side, approximating the
		// protocol's "both peers quit in the same poll" rule without a
		// fixed tick.
		if haveActive && isQuit(activeLine) && !haveWaiting {
			select {
			case l := <-waiting.Ch.Lines():
				waitingLine, haveWaiting = l, true
			default:
			}
		}
		if haveWaiting && isQuit(waitingLine) && !haveActive {
			select {
			case l := <-active.Ch.Lines():
				activeLine, haveActive = l, true
			default:
			}
		}

		activeQuit := haveActive && isQuit(activeLine)
		waitingQuit := haveWaiting && isQuit(waitingLine)

		switch {
		case activeQuit && waitingQuit:
			return turnOutcome{kind: outcomeAllForfeit}
		case waitingQuit:
			return turnOutcome{kind: outcomeOtherDC}
		case activeQuit:
			return turnOutcome{kind: outcomePlayerDC}
		}

		if haveWaiting {
			if cmd, body := parseCommand(waitingLine); cmd == cmdChat {
				_ = active.Ch.SendReliable(protocol.TagChatOther, "[CHAT] Opponent: "+body)
				_ = waiting.Ch.SendReliable(protocol.TagChatSelf, "[CHAT] You: "+body)
			}
			continue
		}

		cmd, body := parseCommand(activeLine)
		switch cmd {
		case cmdChat:
			_ = waiting.Ch.SendReliable(protocol.TagChatOther, "[CHAT] Opponent: "+body)
			_ = active.Ch.SendReliable(protocol.TagChatSelf, "[CHAT] You: "+body)
			continue
		case cmdCoord:
			row, col, err := board.ParseCoord(body)
			if err != nil {
				_ = active.Ch.SendReliable(protocol.TagPrompt, "Invalid coordinate, use a letter A-J followed by a number 1-10.")
				continue
			}
			result, shipName, sunk, _ := oppBoard.FireAt(row, col)
			if result == board.ResultAlreadyShot {
				_ = active.Ch.SendReliable(protocol.TagPrompt, "You already fired at this location. Try another target.")
				continue
			}
			return m.resolveShot(active, waiting, oppBoard, row, col, result, shipName, sunk)
		default:
			continue
		}
	}
}

func (m *match) resolveShot(active, waiting *Session, oppBoard *board.Board, row, col int, result board.FireResult, shipName string, sunk bool) turnOutcome {
	coord := board.FormatCoord(row, col)
	_ = waiting.Ch.SendReliable(protocol.TagInfo, fmt.Sprintf("Opponent fired an attack on (%s)", coord))

	gameOver := oppBoard.AllSunk()

	switch {
	case result == board.ResultHit && gameOver:
		_ = active.Ch.SendReliable(protocol.TagInfo, "GAME_OVER All enemy ships sunk! You win!")
		_ = waiting.Ch.SendReliable(protocol.TagInfo, "GAME_OVER You lost! All your ships are sunk.")
	case result == board.ResultHit && sunk:
		_ = active.Ch.SendReliable(protocol.TagStatus, fmt.Sprintf("HIT! You sank the %s!", shipName))
		_ = waiting.Ch.SendReliable(protocol.TagInfo, fmt.Sprintf("HIT! Opponent sunk your %s!", shipName))
	case result == board.ResultHit:
		_ = active.Ch.SendReliable(protocol.TagStatus, "HIT!")
		_ = waiting.Ch.SendReliable(protocol.TagInfo, "HIT! Opponent hit your ship!")
	default:
		_ = active.Ch.SendReliable(protocol.TagStatus, "MISS!")
		_ = waiting.Ch.SendReliable(protocol.TagInfo, "MISS! Opponent missed!")
	}

	_ = active.Ch.SendGrid(oppBoard.Render(false))
	_ = waiting.Ch.SendGrid(oppBoard.Render(true))

	kind := outcomeTurnCompleted
	if gameOver {
		kind = outcomeGameFinished
	}
	return turnOutcome{kind: kind, coord: coord, result: result, shipName: shipName, sunk: sunk}
}
