package models

import "fmt"

// TileKind is the terrain variant of a tile.
type TileKind int

const (
	Grass TileKind = iota
	Sand
	Stone
	Wood
	Water
	DoorOut
)

var tileKindNames = [...]string{"Grass", "Sand", "Stone", "Wood", "Water", "DoorOut"}

func (k TileKind) String() string {
	return tileKindNames[k]
}

// ParseTileKind reads a terrain name as it appears in the board grammar.
func ParseTileKind(s string) (TileKind, bool) {
	for i, name := range tileKindNames {
		if s == name {
			return TileKind(i), true
		}
	}
	return Grass, false
}

// Tile is one grid cell. Its location id is assigned once at parse time.
// The occupant slot references at most one game object; the object's own
// position fields must agree with the tile's coordinates.
type Tile struct {
	Kind       TileKind
	Pos        Position
	LocationID int
	Occupant   GameObject

	// Set only for DoorOut tiles: the far side of a door link.
	OutLocationID int
	DoorPos       Position
}

// Token renders the tile cell in the board grammar, without the enclosing
// parentheses.
func (t *Tile) Token() string {
	s := t.Kind.String()
	if t.Kind == DoorOut {
		s = fmt.Sprintf("DoorOut(%d,%d,%d)", t.OutLocationID, t.DoorPos.X, t.DoorPos.Y)
	}
	if t.Occupant != nil {
		s += "(" + t.Occupant.Token() + ")"
	}
	return s
}
