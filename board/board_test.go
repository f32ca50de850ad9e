package board

import "testing"

func TestParseCoord(t *testing.T) {
	cases := []struct {
		in      string
		row     int
		col     int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"b5", 1, 4, false},
		{" J 10 ", 9, 9, false},
		{"K1", 0, 0, true},
		{"A11", 0, 0, true},
		{"A0", 0, 0, true},
		{"", 0, 0, true},
		{"AA", 0, 0, true},
	}
	for _, tc := range cases {
		row, col, err := ParseCoord(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCoord(%q) = (%d,%d), want error", tc.in, row, col)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCoord(%q) returned error: %v", tc.in, err)
			continue
		}
		if row != tc.row || col != tc.col {
			t.Errorf("ParseCoord(%q) = (%d,%d), want (%d,%d)", tc.in, row, col, tc.row, tc.col)
		}
	}
}

func TestFormatCoordRoundTrip(t *testing.T) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			s := FormatCoord(row, col)
			gotRow, gotCol, err := ParseCoord(s)
			if err != nil {
				t.Fatalf("ParseCoord(FormatCoord(%d,%d)=%q) returned error: %v", row, col, s, err)
			}
			if gotRow != row || gotCol != col {
				t.Errorf("round trip (%d,%d) -> %q -> (%d,%d)", row, col, s, gotRow, gotCol)
			}
		}
	}
}

func TestPlaceRejectsOverlap(t *testing.T) {
	b := New()
	if err := b.Place(0, 0, Horizontal); err != nil { // Carrier A1-A5
		t.Fatalf("first placement failed: %v", err)
	}
	if err := b.Place(0, 2, Vertical); err == nil {
		t.Fatal("expected overlap error, got nil")
	} else if err != ErrOverlap {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
}

func TestPlaceRejectsOutOfBounds(t *testing.T) {
	b := New()
	if err := b.Place(0, 8, Horizontal); err != ErrOutOfBounds { // Carrier needs 5 cells, only 2 remain
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestPlaceAllFiveThenRejectsSixth(t *testing.T) {
	b := New()
	rows := []int{0, 1, 2, 3, 4}
	for i, spec := range Specs {
		if err := b.Place(rows[i], 0, Horizontal); err != nil {
			t.Fatalf("placing %s failed: %v", spec.Name, err)
		}
	}
	if err := b.Place(9, 0, Horizontal); err != ErrAllShipsPlaced {
		t.Fatalf("expected ErrAllShipsPlaced, got %v", err)
	}
}

func TestFireAtHitMissAlreadyShotAndSink(t *testing.T) {
	b := New()
	if err := b.Place(0, 0, Horizontal); err != nil { // Carrier A1-A5
		t.Fatalf("placement failed: %v", err)
	}

	result, name, sunk, err := b.FireAt(5, 5)
	if err != nil || result != ResultMiss {
		t.Fatalf("expected miss, got %v %v %v", result, name, err)
	}

	result, name, sunk, err = b.FireAt(0, 0)
	if err != nil || result != ResultHit || name != "Carrier" || sunk {
		t.Fatalf("expected hit on Carrier, not sunk, got %v %v %v %v", result, name, sunk, err)
	}

	result, _, _, err = b.FireAt(0, 0)
	if err != nil || result != ResultAlreadyShot {
		t.Fatalf("expected already-shot, got %v %v", result, err)
	}

	for col := 1; col < 4; col++ {
		result, name, sunk, err = b.FireAt(0, col)
		if err != nil || result != ResultHit || sunk {
			t.Fatalf("expected hit on Carrier at col %d, not sunk, got %v %v %v %v", col, result, name, sunk, err)
		}
	}
	result, name, sunk, err = b.FireAt(0, 4)
	if err != nil || result != ResultHit || name != "Carrier" || !sunk {
		t.Fatalf("expected last hit to sink the Carrier, got %v %v %v %v", result, name, sunk, err)
	}
}

func TestAllSunk(t *testing.T) {
	b := New()
	for i, spec := range Specs {
		if err := b.Place(i, 0, Horizontal); err != nil {
			t.Fatalf("placing %s failed: %v", spec.Name, err)
		}
	}
	if b.AllSunk() {
		t.Fatal("AllSunk true before any shots")
	}
	for i, spec := range Specs {
		for c := 0; c < spec.Size; c++ {
			if _, _, _, err := b.FireAt(i, c); err != nil {
				t.Fatalf("FireAt(%d,%d) failed: %v", i, c, err)
			}
		}
	}
	if !b.AllSunk() {
		t.Fatal("AllSunk false after sinking every ship")
	}
}

func TestRenderHidesUnhitShipsFromOpponentView(t *testing.T) {
	b := New()
	if err := b.Place(0, 0, Horizontal); err != nil {
		t.Fatalf("placement failed: %v", err)
	}
	opponentView := b.Render(false)
	for _, r := range opponentView {
		if r == 'S' {
			t.Fatal("opponent view leaked an unhit ship cell")
		}
	}
	ownView := b.Render(true)
	found := false
	for _, r := range ownView {
		if r == 'S' {
			found = true
		}
	}
	if !found {
		t.Fatal("own view did not show the placed ship")
	}
}
