// Package board implements the ten-by-ten Battleship grid: ship
// placement, firing, and the two textual renderings sent to clients.
package board

import (
	"errors"
	"strings"
)

// Size is the grid's edge length, rows and columns alike.
const Size = 10

// ShipSpec names one of the five ships every board must carry.
type ShipSpec struct {
	Name string
	Size int
}

// Specs lists the ships in placement order.
var Specs = []ShipSpec{
	{Name: "Carrier", Size: 5},
	{Name: "Battleship", Size: 4},
	{Name: "Cruiser", Size: 3},
	{Name: "Submarine", Size: 3},
	{Name: "Destroyer", Size: 2},
}

// Orientation is the axis a ship is laid out along.
type Orientation byte

const (
	Horizontal Orientation = 'H'
	Vertical   Orientation = 'V'
)

// ParseOrientation accepts "h"/"H" or "v"/"V".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H":
		return Horizontal, nil
	case "V":
		return Vertical, nil
	default:
		return 0, ErrInvalidOrientation
	}
}

// FireResult classifies the outcome of a single shot.
type FireResult int

const (
	ResultMiss FireResult = iota
	ResultHit
	ResultAlreadyShot
)

var (
	ErrInvalidOrientation = errors.New("board: orientation must be H or V")
	ErrInvalidCoordinate  = errors.New("board: coordinate out of range")
	ErrOutOfBounds        = errors.New("board: ship does not fit on the grid")
	ErrOverlap            = errors.New("board: ship overlaps an existing ship")
	ErrAllShipsPlaced     = errors.New("board: all ships already placed")
)

type cell struct {
	hasShip bool
	shot    bool
}

type placedShip struct {
	name      string
	remaining map[[2]int]struct{}
}

// Board is one player's ten-by-ten grid: the ships they placed on it and
// the shots their opponent has fired at it.
type Board struct {
	cells     [Size][Size]cell
	shipAt    [Size][Size]*placedShip
	ships     []*placedShip
	nextShip  int
}

// New returns an empty board ready for ship placement.
func New() *Board {
	return &Board{}
}

// NextShip returns the next ship still to be placed, or false once all
// five have been placed.
func (b *Board) NextShip() (ShipSpec, bool) {
	if b.nextShip >= len(Specs) {
		return ShipSpec{}, false
	}
	return Specs[b.nextShip], true
}

// Place lays out the next unplaced ship starting at (row, col) along o.
// Coordinates are zero-based. It fails if the ship would leave the grid
// or overlap a previously placed ship.
func (b *Board) Place(row, col int, o Orientation) error {
	spec, ok := b.NextShip()
	if !ok {
		return ErrAllShipsPlaced
	}

	cells, err := shipCells(row, col, o, spec.Size)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if b.cells[c[0]][c[1]].hasShip {
			return ErrOverlap
		}
	}

	ship := &placedShip{name: spec.Name, remaining: make(map[[2]int]struct{}, len(cells))}
	for _, c := range cells {
		b.cells[c[0]][c[1]].hasShip = true
		b.shipAt[c[0]][c[1]] = ship
		ship.remaining[c] = struct{}{}
	}
	b.ships = append(b.ships, ship)
	b.nextShip++
	return nil
}

func shipCells(row, col int, o Orientation, size int) ([][2]int, error) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return nil, ErrInvalidCoordinate
	}
	cells := make([][2]int, size)
	for i := 0; i < size; i++ {
		r, c := row, col
		switch o {
		case Horizontal:
			c += i
		case Vertical:
			r += i
		default:
			return nil, ErrInvalidOrientation
		}
		if r < 0 || r >= Size || c < 0 || c >= Size {
			return nil, ErrOutOfBounds
		}
		cells[i] = [2]int{r, c}
	}
	return cells, nil
}

// FireAt resolves a shot at (row, col). It reports the ship's name and
// whether that shot sank it, in addition to the hit/miss/already-shot
// result.
func (b *Board) FireAt(row, col int) (result FireResult, shipName string, sunk bool, err error) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return 0, "", false, ErrInvalidCoordinate
	}
	c := &b.cells[row][col]
	if c.shot {
		return ResultAlreadyShot, "", false, nil
	}
	c.shot = true

	ship := b.shipAt[row][col]
	if ship == nil {
		return ResultMiss, "", false, nil
	}
	delete(ship.remaining, [2]int{row, col})
	sunk = len(ship.remaining) == 0
	return ResultHit, ship.name, sunk, nil
}

// AllSunk reports whether every ship on the board has been sunk. It is
// only meaningful once all five ships have been placed.
func (b *Board) AllSunk() bool {
	if len(b.ships) < len(Specs) {
		return false
	}
	for _, s := range b.ships {
		if len(s.remaining) > 0 {
			return false
		}
	}
	return true
}

// Render draws the grid as ten rows of ten characters preceded by a
// column header, the way it is sent inside a GRID block. With
// showShips false, unhit ship cells are rendered as water so an
// opponent's view never reveals unsunk ships.
func (b *Board) Render(showShips bool) string {
	var sb strings.Builder
	sb.WriteString("   1  2  3  4  5  6  7  8  9  10\n")
	for r := 0; r < Size; r++ {
		sb.WriteByte(byte('A' + r))
		sb.WriteByte(' ')
		for c := 0; c < Size; c++ {
			cell := b.cells[r][c]
			var mark byte
			switch {
			case cell.shot && cell.hasShip:
				mark = 'X'
			case cell.shot:
				mark = 'o'
			case showShips && cell.hasShip:
				mark = 'S'
			default:
				mark = '.'
			}
			sb.WriteString("  ")
			sb.WriteByte(mark)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
