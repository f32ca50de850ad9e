package server

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/lab1702/battleship-net/protocol"
)

// fakeClient drives the client side of a net.Pipe connection for
// integration tests: it auto-acknowledges every payload frame the way
// a real client does and offers helpers for reading GRID blocks and
// sending plain command lines.
type fakeClient struct {
	r *bufio.Reader
	w *bufio.Writer
}

func newFakeClient(conn net.Conn) *fakeClient {
	return &fakeClient{r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
}

func (f *fakeClient) writeLine(s string) error {
	if _, err := f.w.WriteString(s + "\n"); err != nil {
		return err
	}
	return f.w.Flush()
}

// next reads the next framed payload or control line, auto-acking
// payload frames. GRID blocks are returned whole, with their body text
// as the frame's Body and a synthetic tag of 0.
func (f *fakeClient) next() (protocol.Frame, error) {
	for {
		line, err := f.r.ReadString('\n')
		if err != nil {
			return protocol.Frame{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		frame, control, err := protocol.Decode(line)
		if err != nil {
			return protocol.Frame{}, err
		}

		switch control {
		case protocol.ControlGrid:
			var sb strings.Builder
			for {
				bodyLine, err := f.r.ReadString('\n')
				if err != nil {
					return protocol.Frame{}, err
				}
				if bodyLine == "\n" {
					break
				}
				sb.WriteString(bodyLine)
			}
			return protocol.Frame{Body: sb.String()}, nil
		case protocol.ControlX:
			return protocol.Frame{Body: protocol.ControlX}, nil
		case protocol.ControlAck, protocol.ControlNack:
			continue
		default:
			if err := f.writeLine(protocol.ControlAck); err != nil {
				return protocol.Frame{}, err
			}
			return frame, nil
		}
	}
}

// send writes a plain command line (coordinate, "quit", "chat ...",
// username, or a placement command).
func (f *fakeClient) send(line string) error {
	return f.writeLine(line)
}

// replyAck answers a bare liveness-probe ACK frame sent by the
// matchmaker.
func (f *fakeClient) replyAck() error {
	line, err := f.r.ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(line) != protocol.ControlAck {
		return nil
	}
	return f.writeLine(protocol.ControlAck)
}

const testDeadline = 2 * time.Second
