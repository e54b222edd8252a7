package models

import "sort"

// Board is the full world state: every location and every player. It also
// derives, on demand, a virtual infinite-plane layout of location ids; the
// layout is a recomputable projection of the neighbor graph, cached until
// the topology changes.
type Board struct {
	locations map[int]*Location
	players   map[string]*Player

	topoVersion int
	layoutCache map[int]layoutEntry
}

type layoutEntry struct {
	version int
	coords  map[Position]int
}

func NewBoard() *Board {
	return &Board{
		locations:   make(map[int]*Location),
		players:     make(map[string]*Player),
		layoutCache: make(map[int]layoutEntry),
	}
}

// AddLocation registers a location and binds it to this board.
func (b *Board) AddLocation(loc *Location) {
	loc.board = b
	b.locations[loc.ID] = loc
	b.topoVersion++
}

// Location returns the location with the given id, or nil.
func (b *Board) Location(id int) *Location {
	return b.locations[id]
}

// LocationIDs returns all location ids in ascending order.
func (b *Board) LocationIDs() []int {
	ids := make([]int, 0, len(b.locations))
	for id := range b.locations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AddPlayer registers a player record under its username.
func (b *Board) AddPlayer(p *Player) {
	b.players[p.Username] = p
}

// Player returns the record for username, or nil if none exists yet.
func (b *Board) Player(username string) *Player {
	return b.players[username]
}

// Usernames returns all known usernames in ascending order.
func (b *Board) Usernames() []string {
	names := make([]string, 0, len(b.players))
	for name := range b.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetNeighbor records a single directed neighbor edge. Symmetric linking is
// the job of LinkLocations; this exists for restoring a parsed board.
func (b *Board) SetNeighbor(fromID int, d Direction, toID int) {
	if loc := b.locations[fromID]; loc != nil {
		loc.Neighbors[d] = toID
		b.topoVersion++
	}
}

// LinkLocations establishes symmetric neighbor edges for every pair of
// locations whose layout coordinates are adjacent along one axis.
func (b *Board) LinkLocations(layout map[Position]int) {
	for coord, id := range layout {
		loc := b.locations[id]
		if loc == nil {
			continue
		}
		for _, d := range Directions {
			dx, dy := d.Offset()
			if otherID, ok := layout[coord.Add(dx, dy)]; ok {
				loc.Neighbors[d] = otherID
			}
		}
	}
	b.topoVersion++
}

// Layout flood-fills the neighbor graph from startID, assigning each
// reachable location a relative plane coordinate (the start sits at (0,0)).
// Results are cached and reused until a neighbor link changes.
func (b *Board) Layout(startID int) map[Position]int {
	if e, ok := b.layoutCache[startID]; ok && e.version == b.topoVersion {
		return e.coords
	}
	coords := make(map[Position]int)
	if b.locations[startID] != nil {
		b.mapFrom(startID, Position{}, coords)
	}
	b.layoutCache[startID] = layoutEntry{version: b.topoVersion, coords: coords}
	return coords
}

func (b *Board) mapFrom(id int, at Position, coords map[Position]int) {
	if _, seen := coords[at]; seen {
		return
	}
	coords[at] = id
	loc := b.locations[id]
	for _, d := range Directions {
		if next, ok := loc.Neighbors[d]; ok {
			dx, dy := d.Offset()
			b.mapFrom(next, at.Add(dx, dy), coords)
		}
	}
}

// TileAtOffset resolves a position relative to locID that may lie many
// cells outside its bounds, by dividing the offset into location-sized
// blocks and looking the block up in the plane layout. Returns nil when the
// offset lands on an unmapped block.
func (b *Board) TileAtOffset(locID int, pos Position) *Tile {
	bx, by := floorDiv(pos.X, LocationSize), floorDiv(pos.Y, LocationSize)
	local := Position{X: pos.X - bx*LocationSize, Y: pos.Y - by*LocationSize}
	if bx == 0 && by == 0 {
		if loc := b.locations[locID]; loc != nil {
			return loc.TileAt(local)
		}
		return nil
	}
	layout := b.Layout(locID)
	id, ok := layout[Position{X: bx, Y: by}]
	if !ok {
		return nil
	}
	return b.locations[id].TileAt(local)
}

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}
	return q
}
