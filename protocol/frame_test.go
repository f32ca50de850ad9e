package protocol

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	line := Encode(TagPrompt, "Enter coordinate to fire (e.g. B5):")
	line = line[:len(line)-1] // strip the trailing newline Encode adds

	frame, control, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if control != "" {
		t.Fatalf("expected a payload frame, got control frame %q", control)
	}
	if frame.Tag != TagPrompt {
		t.Errorf("tag = %q, want %q", frame.Tag, TagPrompt)
	}
	if frame.Body != "Enter coordinate to fire (e.g. B5):" {
		t.Errorf("body = %q", frame.Body)
	}
}

func TestDecodeControlFrames(t *testing.T) {
	for _, name := range []string{ControlAck, ControlNack, ControlGrid, ControlX} {
		_, control, err := Decode(name)
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", name, err)
		}
		if control != name {
			t.Errorf("Decode(%q) control = %q", name, control)
		}
	}
}

func TestDecodeRejectsBitFlippedChecksum(t *testing.T) {
	line := Encode(TagInfo, "HIT!")
	line = line[:len(line)-1]

	// Flip one hex digit of the checksum.
	flipped := []byte(line)
	if flipped[0] == 'f' {
		flipped[0] = '0'
	} else {
		flipped[0] = 'f'
	}

	_, _, err := Decode(string(flipped))
	if err == nil {
		t.Fatal("expected checksum mismatch error, got nil")
	}
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Kind != BadFrame {
		t.Fatalf("expected BadFrame error, got %v", err)
	}
}

func TestDecodeRejectsMalformedHeader(t *testing.T) {
	_, _, err := Decode("not-a-frame")
	var protoErr *Error
	if !errors.As(err, &protoErr) || protoErr.Kind != BadFrame {
		t.Fatalf("expected BadFrame error, got %v", err)
	}
}
