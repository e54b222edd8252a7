// Package pathfind plans walking routes for a client over its local
// neighborhood of the board: the 3x3 patch of locations centered on the
// one the walker stands in. Anything beyond the patch is out of planning
// range and yields no route.
package pathfind

import (
	"container/heap"

	"bananarealm/models"
)

// patchRadius is how many locations the patch extends from the center in
// each direction.
const patchRadius = 1

// patchSpan is the patch width in tiles.
const patchSpan = (2*patchRadius + 1) * models.LocationSize

// Step is one move of a computed route: the direction to walk and the tile
// it lands on.
type Step struct {
	Dir  models.Direction
	Tile *models.Tile
}

type node struct {
	tile    *models.Tile
	x, y    int
	cost    int
	visited bool
	from    *node
}

// FindRoute plans the cheapest route from start in startLoc to dest in
// destLoc, walking only tiles the walker can enter: empty tiles, tiles
// holding a pickable item, and water only when floating. The returned
// steps exclude the starting tile. An empty route means the destination is
// unreachable or outside the patch.
func FindRoute(board *models.Board, startLoc int, start models.Position, destLoc int, dest models.Position, floating bool) []Step {
	g := buildPatch(board, startLoc)
	if g == nil {
		return nil
	}
	src := g.at(patchRadius*models.LocationSize+start.X, patchRadius*models.LocationSize+start.Y)
	dst := g.nodeFor(destLoc, dest)
	if src == nil || dst == nil || src == dst {
		return nil
	}
	if !g.search(src, dst, floating) {
		return nil
	}
	return g.route(src, dst)
}

type grid struct {
	board  *models.Board
	nodes  [patchSpan][patchSpan]*node
	blocks map[models.Position]int
}

// buildPatch lays the 3x3 neighborhood of centerLoc out as one tile grid,
// using the board's plane layout to place each location block.
func buildPatch(board *models.Board, centerLoc int) *grid {
	center := board.Location(centerLoc)
	if center == nil {
		return nil
	}
	layout := board.Layout(centerLoc)
	g := &grid{board: board, blocks: make(map[models.Position]int)}
	for by := -patchRadius; by <= patchRadius; by++ {
		for bx := -patchRadius; bx <= patchRadius; bx++ {
			id, ok := layout[models.Position{X: bx, Y: by}]
			if !ok {
				continue
			}
			loc := board.Location(id)
			if loc == nil {
				continue
			}
			g.blocks[models.Position{X: bx, Y: by}] = id
			ox := (bx + patchRadius) * models.LocationSize
			oy := (by + patchRadius) * models.LocationSize
			for y, row := range loc.Tiles {
				for x, t := range row {
					g.nodes[oy+y][ox+x] = &node{tile: t, x: ox + x, y: oy + y}
				}
			}
		}
	}
	return g
}

func (g *grid) at(x, y int) *node {
	if x < 0 || y < 0 || x >= patchSpan || y >= patchSpan {
		return nil
	}
	return g.nodes[y][x]
}

// nodeFor locates the node for a tile named by location id and local
// position, or nil when that location is outside the patch.
func (g *grid) nodeFor(locID int, pos models.Position) *node {
	for block, id := range g.blocks {
		if id != locID {
			continue
		}
		ox := (block.X + patchRadius) * models.LocationSize
		oy := (block.Y + patchRadius) * models.LocationSize
		return g.at(ox+pos.X, oy+pos.Y)
	}
	return nil
}

// enterable reports whether the walker can stand on a tile.
func enterable(t *models.Tile, floating bool) bool {
	if t.Kind == models.Water && !floating {
		return false
	}
	if t.Occupant == nil {
		return true
	}
	_, isItem := t.Occupant.(models.Item)
	return isItem
}

// search runs uniform-cost expansion from src until dst is settled. Equal
// cost nodes settle in insertion order, keeping routes stable for a given
// board.
func (g *grid) search(src, dst *node, floating bool) bool {
	pq := &frontier{}
	heap.Init(pq)
	pq.push(&visit{node: src, cost: 0})
	for pq.Len() > 0 {
		v := heap.Pop(pq).(*visit)
		if v.node.visited {
			continue
		}
		v.node.visited = true
		v.node.cost = v.cost
		v.node.from = v.from
		if v.node == dst {
			return true
		}
		for _, d := range models.Directions {
			dx, dy := d.Offset()
			next := g.at(v.node.x+dx, v.node.y+dy)
			if next == nil || next.visited {
				continue
			}
			if !enterable(next.tile, floating) {
				continue
			}
			pq.push(&visit{node: next, cost: v.cost + 1, from: v.node})
		}
	}
	return false
}

// route walks the settled predecessors back from dst and emits forward
// steps, excluding the starting tile. Each step's direction is resolved on
// the board itself, so steps that cross a location edge carry the same
// direction a walker would issue.
func (g *grid) route(src, dst *node) []Step {
	var rev []*node
	for n := dst; n != src; n = n.from {
		rev = append(rev, n)
	}
	steps := make([]Step, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		n := rev[i]
		prev := n.from
		loc := g.board.Location(prev.tile.LocationID)
		d, ok := loc.DirOfTile(prev.tile.Pos, n.tile)
		if !ok {
			return nil
		}
		steps = append(steps, Step{Dir: d, Tile: n.tile})
	}
	return steps
}

// visit is a frontier entry. seq preserves push order among equal costs.
type visit struct {
	node *node
	cost int
	seq  int
	from *node
}

type frontier struct {
	items []*visit
	seq   int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].cost != f.items[j].cost {
		return f.items[i].cost < f.items[j].cost
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(*visit)) }

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	it := old[n-1]
	f.items = old[:n-1]
	return it
}

func (f *frontier) push(v *visit) {
	v.seq = f.seq
	f.seq++
	heap.Push(f, v)
}
