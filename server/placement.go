package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/lab1702/battleship-net/board"
	"github.com/lab1702/battleship-net/protocol"
)

type placementOutcome int

const (
	placementOK placementOutcome = iota
	placementFailed
)

type placementResult struct {
	index   int
	outcome placementOutcome
}

// runPlacement drives both players through laying out their five ships
// concurrently, each against its own 180-second deadline. It reports
// false if either player fails to finish in time or disconnects, in
// which case the survivor (if any) has already been messaged and
// returned to the lobby.
func (m *match) runPlacement() bool {
	results := make(chan placementResult, 2)
	go m.placeShips(0, results)
	go m.placeShips(1, results)

	var res [2]placementResult
	for i := 0; i < 2; i++ {
		r := <-results
		res[r.index] = r
	}

	if res[0].outcome == placementOK && res[1].outcome == placementOK {
		return true
	}

	survivorIdx := -1
	if res[0].outcome == placementOK {
		survivorIdx = 0
	} else if res[1].outcome == placementOK {
		survivorIdx = 1
	}
	if survivorIdx >= 0 {
		survivor := m.sessions[survivorIdx]
		_ = survivor.Ch.SendReliable(protocol.TagStatus, "Other Player disconnected, looking for new opponent..")
		m.lobby.PushFront(survivor)
	}
	return false
}

func (m *match) placeShips(idx int, results chan<- placementResult) {
	sess := m.sessions[idx]
	b := m.boards[idx]
	timer := time.NewTimer(m.cfg.PlacementTimeout)
	defer timer.Stop()

	for {
		spec, ok := b.NextShip()
		if !ok {
			results <- placementResult{index: idx, outcome: placementOK}
			return
		}

		if err := sess.Ch.SendGrid(b.Render(true)); err != nil {
			results <- placementResult{index: idx, outcome: placementFailed}
			return
		}
		prompt := fmt.Sprintf("Enter starting coordinate and orientation for your %s (e.g. A1 H):", spec.Name)
		if err := sess.Ch.SendReliable(protocol.TagPrompt, prompt); err != nil {
			results <- placementResult{index: idx, outcome: placementFailed}
			return
		}

		select {
		case <-timer.C:
			_ = sess.Ch.SendControl(protocol.ControlX)
			sess.Conn.Close()
			results <- placementResult{index: idx, outcome: placementFailed}
			return
		case <-sess.Ch.Closed():
			results <- placementResult{index: idx, outcome: placementFailed}
			return
		case line := <-sess.Ch.Lines():
			fields := strings.Fields(line)
			if len(fields) != 2 {
				_ = sess.Ch.SendReliable(protocol.TagInfo, "Expected a coordinate and an orientation, e.g. A1 H.")
				continue
			}
			row, col, err := board.ParseCoord(fields[0])
			if err != nil {
				_ = sess.Ch.SendReliable(protocol.TagInfo, "Invalid coordinate, use a letter A-J followed by a number 1-10.")
				continue
			}
			o, err := board.ParseOrientation(fields[1])
			if err != nil {
				_ = sess.Ch.SendReliable(protocol.TagInfo, "Invalid orientation, use H or V.")
				continue
			}
			if err := b.Place(row, col, o); err != nil {
				_ = sess.Ch.SendReliable(protocol.TagInfo, fmt.Sprintf("Can't place there: %v. Try again.", err))
				continue
			}
		}
	}
}
