package server

import (
	"strings"
	"sync"

	logging "gopkg.in/op/go-logging.v1"

	"github.com/lab1702/battleship-net/board"
	"github.com/lab1702/battleship-net/protocol"
)

// spectatorHub forwards turn-by-turn events and free-form chat to every
// lobby member currently attached as a spectator. Sockets here stay
// non-blocking throughout: a send to any one member uses the channel's
// own retry/timeout budget and never holds the hub lock across it.
type spectatorHub struct {
	log *logging.Logger

	mu      sync.Mutex
	members map[*Session]struct{}
}

func newSpectatorHub(log *logging.Logger) *spectatorHub {
	return &spectatorHub{log: log, members: make(map[*Session]struct{})}
}

// Attach marks sess as a spectator of the running match and starts
// forwarding its chat lines to the rest of the room.
func (h *spectatorHub) Attach(sess *Session) {
	h.mu.Lock()
	h.members[sess] = struct{}{}
	h.mu.Unlock()

	if err := sess.Ch.SendReliable(protocol.TagRoleSpectator, "You are now spectating the current match. Chat is open!"); err != nil {
		h.Detach(sess)
		return
	}
	go h.readLoop(sess)
}

func (h *spectatorHub) readLoop(sess *Session) {
	for {
		select {
		case line := <-sess.Ch.Lines():
			text := strings.TrimSpace(line)
			if text != "" {
				h.broadcastChat(text, sess)
			}
		case <-sess.Ch.Closed():
			h.Detach(sess)
			return
		}
	}
}

// Detach removes sess from the broadcast room without touching its
// lobby queue membership.
func (h *spectatorHub) Detach(sess *Session) {
	h.mu.Lock()
	delete(h.members, sess)
	h.mu.Unlock()
}

func (h *spectatorHub) snapshot() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Session, 0, len(h.members))
	for s := range h.members {
		out = append(out, s)
	}
	return out
}

func (h *spectatorHub) broadcastChat(msg string, origin *Session) {
	for _, sess := range h.snapshot() {
		if sess == origin {
			_ = sess.Ch.SendReliable(protocol.TagChatSelf, "You: "+msg)
			continue
		}
		_ = sess.Ch.SendReliable(protocol.TagChatOther, origin.Username+": "+msg)
	}
}

// BroadcastEvent sends a one-line narration of a match event to every
// spectator.
func (h *spectatorHub) BroadcastEvent(msg string) {
	for _, sess := range h.snapshot() {
		_ = sess.Ch.SendReliable(protocol.TagInfo, msg)
	}
}

// BroadcastBoard shows spectators the given board's public view (never
// the hidden ship layout).
func (h *spectatorHub) BroadcastBoard(b *board.Board) {
	for _, sess := range h.snapshot() {
		_ = sess.Ch.SendGrid(b.Render(false))
	}
}

// CloseRoom detaches every current spectator at the end of a match,
// telling each one it may be picked for the next match.
func (h *spectatorHub) CloseRoom() {
	h.mu.Lock()
	members := make([]*Session, 0, len(h.members))
	for s := range h.members {
		members = append(members, s)
	}
	h.members = make(map[*Session]struct{})
	h.mu.Unlock()

	for _, sess := range members {
		_ = sess.Ch.SendReliable(protocol.TagRolePlayer, "Temporarily closing chat room, you might play next!")
	}
}
