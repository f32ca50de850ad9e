package server

import (
	"net"

	"github.com/google/uuid"

	"github.com/lab1702/battleship-net/protocol"
)

// Session is one connected client: its socket, the framed channel on
// top of it, and the identity it negotiated at login.
//
// Token hardens reconnection against the username-only approach a
// plain-text lobby protocol would otherwise rely on: a client proving
// it holds the token minted for its previous connection is what lets it
// reclaim a disconnected player's seat, rather than merely typing the
// same name as someone still mid-match.
type Session struct {
	Conn     net.Conn
	Ch       *protocol.Channel
	Username string
	Token    string
}

func newSession(conn net.Conn, ch *protocol.Channel, username string) *Session {
	return &Session{
		Conn:     conn,
		Ch:       ch,
		Username: username,
		Token:    uuid.NewString(),
	}
}
