package models

// LocationSize is the fixed width and height of every location grid.
const LocationSize = 10

// Location is a fixed 10x10 grid of tiles plus up to four neighbor links,
// one per direction, to other locations on the board.
type Location struct {
	ID        int
	Name      string
	Tiles     [][]*Tile // indexed [y][x]
	Neighbors map[Direction]int

	board *Board
}

// NewLocation builds a location around an existing [y][x] tile grid.
func NewLocation(id int, name string, tiles [][]*Tile) *Location {
	return &Location{
		ID:        id,
		Name:      name,
		Tiles:     tiles,
		Neighbors: make(map[Direction]int),
	}
}

// NewEmptyLocation builds a location filled with tiles of one terrain kind.
func NewEmptyLocation(id int, name string, kind TileKind) *Location {
	tiles := make([][]*Tile, LocationSize)
	for y := range tiles {
		tiles[y] = make([]*Tile, LocationSize)
		for x := range tiles[y] {
			tiles[y][x] = &Tile{Kind: kind, Pos: Position{X: x, Y: y}, LocationID: id}
		}
	}
	return NewLocation(id, name, tiles)
}

// WithinBounds reports whether pos is inside the location grid.
func (l *Location) WithinBounds(pos Position) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < LocationSize && pos.Y < LocationSize
}

// TileAt returns the tile at pos, or nil when pos is out of bounds.
func (l *Location) TileAt(pos Position) *Tile {
	if !l.WithinBounds(pos) {
		return nil
	}
	return l.Tiles[pos.Y][pos.X]
}

// Neighbor resolves the linked location in direction d.
func (l *Location) Neighbor(d Direction) *Location {
	id, ok := l.Neighbors[d]
	if !ok || l.board == nil {
		return nil
	}
	return l.board.Location(id)
}

// TileInDirection returns the tile one step from pos in direction d. When
// the step stays inside this location the tile is returned directly; when it
// crosses an edge with a linked neighbor, the tile on the opposite edge of
// that neighbor is returned (same column or row). Without a linked neighbor
// the result is nil, which callers treat as movement blocked, not a fault.
func (l *Location) TileInDirection(pos Position, d Direction) *Tile {
	p := pos.Step(d)
	if l.WithinBounds(p) {
		return l.Tiles[p.Y][p.X]
	}
	next := l.Neighbor(d)
	if next == nil {
		return nil
	}
	switch d {
	case North:
		return next.Tiles[LocationSize-1][p.X]
	case South:
		return next.Tiles[0][p.X]
	case East:
		return next.Tiles[p.Y][0]
	default:
		return next.Tiles[p.Y][LocationSize-1]
	}
}

// DirOfTile returns the cardinal step from pos that reaches t, including
// steps across a linked edge. The second result is false when t is not
// adjacent to pos.
func (l *Location) DirOfTile(pos Position, t *Tile) (Direction, bool) {
	for _, d := range Directions {
		if l.TileInDirection(pos, d) == t {
			return d, true
		}
	}
	return North, false
}
