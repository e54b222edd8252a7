package services

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bananarealm/logging"
	"bananarealm/messages"
	"bananarealm/models"
	"bananarealm/persistence"
	"bananarealm/telemetry"
)

// Notifier delivers packets to connected sessions. The session layer
// implements it; the engine never learns about connections directly.
type Notifier interface {
	BroadcastAll(pkt messages.Packet)
	ToPlayer(username string, pkt messages.Packet)
	AllExceptPlayer(username string, pkt messages.Packet)
}

// WinningBananas is the siphon count that ends the game.
const WinningBananas = 5

// spawnSquares are tried in order for new logins and teleporter landings,
// all in location 0.
var spawnSquares = [4]models.Position{
	{X: 5, Y: 5},
	{X: 4, Y: 5},
	{X: 4, Y: 4},
	{X: 5, Y: 4},
}

const (
	msgWater      = "It's deep blue and cold as ice, perhaps you require something to float on"
	msgKeyLimit   = "You already have 3 keys, Harambe does not appreciate your greed, sharpen up soldier!"
	msgChestOpen  = "With the chest you recognise a distinct glow, a Banana!"
	msgChestFail  = "You don't have a key with the correct code to open this chest soldier!"
	msgTrade      = "The Pretty Penguin was overwhelmed as you handed her the fish, in response she gave you a golden reward!"
	msgTradeFail  = "The Pretty Penguin did not offer a response, consider offering her a present"
	msgNight      = "Ssssh!, Harambe does not approve of your intentions to wake a sleeping woman"
	msgSiphonSelf = "You've siphoned a radiating banana, keep up the good work soldier!"
	msgFishLand   = "Harambe is disgusted with you incompetence, you can't fish on land fool!"
	msgFishNoRoom = "You can't fish now, you have no room for the spoils"
	msgFishCaught = "You caught a fish against all odds, sadly your rod was lost in the process"
	msgFishNibble = "A nibble felt, however sometimes we just aren't that lucky"
)

type npcEntry struct {
	npc        *models.NPC
	locationID int
}

// Engine is the authoritative rule engine. All mutations of the board run
// as closures on a single op channel drained by Run, so commands, ticks and
// session lifecycle events are applied one at a time and every broadcast is
// emitted in apply order.
type Engine struct {
	board    *models.Board
	notifier Notifier
	rng      *rand.Rand

	npcs  []npcEntry
	clock int
	night bool

	ops    chan func()
	tracer trace.Tracer
}

// NewEngine wires an engine around a loaded board. Chest and key codes are
// assigned here; a board whose chest and key counts differ is rejected.
func NewEngine(board *models.Board, notifier Notifier, rng *rand.Rand) (*Engine, error) {
	e := &Engine{
		board:    board,
		notifier: notifier,
		rng:      rng,
		ops:      make(chan func()),
		tracer:   telemetry.Tracer("services"),
	}
	if err := e.generateCodes(); err != nil {
		return nil, err
	}
	e.collectNPCs()
	return e, nil
}

// Run drains the op channel until the context is cancelled. Exactly one
// Run must be active for the exported operations to make progress.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-e.ops:
			op()
		}
	}
}

// do runs f on the engine goroutine and waits for it to finish.
func (e *Engine) do(f func()) {
	done := make(chan struct{})
	e.ops <- func() {
		f()
		close(done)
	}
	<-done
}

// HandleCommand applies one parsed gameplay command. Login and close are
// session concerns and are rejected here.
func (e *Engine) HandleCommand(cmd Command) Result {
	var res Result
	e.do(func() {
		_, span := e.tracer.Start(context.Background(), "engine.command",
			trace.WithAttributes(
				attribute.String("verb", string(cmd.Verb)),
				attribute.String("username", cmd.Username),
			))
		defer span.End()
		res = e.execute(cmd)
	})
	return res
}

// Login authenticates a username: resuming a logged-out record, creating a
// fresh player on a free spawn square, or rejecting the attempt.
func (e *Engine) Login(username string) Result {
	var res Result
	e.do(func() {
		res = e.login(username)
	})
	return res
}

// Logout marks the player's record dormant and removes them from their
// tile. The record itself survives for a later resume.
func (e *Engine) Logout(username string) {
	e.do(func() {
		p := e.board.Player(username)
		if p == nil || !p.LoggedIn {
			return
		}
		if t := e.board.Location(p.LocationID).TileAt(p.Pos); t != nil && t.Occupant == p {
			t.Occupant = nil
		}
		p.LoggedIn = false
		logging.L.Infow("player logged out", "username", username)
		e.broadcastBoard()
	})
}

// Tick advances the world one second: the tick count is broadcast, the
// day/night flag recomputed, and each NPC given a one in four chance to
// step.
func (e *Engine) Tick(count int) {
	e.do(func() {
		_, span := e.tracer.Start(context.Background(), "engine.tick",
			trace.WithAttributes(attribute.Int("count", count)))
		defer span.End()
		e.clock = count
		e.notifier.BroadcastAll(messages.Time(count))
		m := count % 180
		e.night = m > 90 && m < 150
		for i := range e.npcs {
			if e.rng.Intn(4) == 0 {
				e.moveNPC(i)
			}
		}
	})
}

func (e *Engine) execute(cmd Command) Result {
	p := e.board.Player(cmd.Username)
	if p == nil || !p.LoggedIn {
		return ResultFailed
	}
	switch cmd.Verb {
	case VerbMove:
		e.movePlayer(p, cmd.Dir)
		e.broadcastBoard()
		return ResultOK
	case VerbPickup:
		if !e.pickupHere(p) {
			return ResultFailed
		}
		e.broadcastBoard()
		return ResultOK
	case VerbDrop:
		if !e.drop(p, cmd.Index) {
			return ResultFailed
		}
		e.broadcastBoard()
		return ResultOK
	case VerbSiphon:
		return e.siphon(p, cmd.Index)
	case VerbUse:
		if !e.useItem(p, cmd.Index) {
			return ResultFailed
		}
		e.broadcastBoard()
		return ResultOK
	}
	return ResultFailed
}

func (e *Engine) login(username string) Result {
	if p := e.board.Player(username); p != nil {
		if p.LoggedIn {
			return ResultFailLogin
		}
		t := e.board.Location(p.LocationID).TileAt(p.Pos)
		if t == nil || t.Occupant != nil {
			return ResultFailLogin
		}
		t.Occupant = p
		p.LoggedIn = true
		logging.L.Infow("player resumed", "username", username)
		e.broadcastBoard()
		return ResultOK
	}
	home := e.board.Location(0)
	if home == nil {
		return ResultFailLogin
	}
	for _, sq := range spawnSquares {
		t := home.TileAt(sq)
		if t == nil || t.Occupant != nil {
			continue
		}
		p := models.NewPlayer(username, home.ID, sq)
		p.LoggedIn = true
		t.Occupant = p
		e.board.AddPlayer(p)
		logging.L.Infow("player created", "username", username, "pos", sq)
		e.broadcastBoard()
		return ResultOK
	}
	return ResultFailLogin
}

// movePlayer turns the player to face d, then steps, interacts, or stays
// put. Every outcome is followed by a snapshot broadcast from execute, so a
// blocked step still resynchronizes the client.
func (e *Engine) movePlayer(p *models.Player, d models.Direction) {
	p.Facing = d
	loc := e.board.Location(p.LocationID)
	dest := loc.TileInDirection(p.Pos, d)
	if dest == nil {
		return
	}
	if dest.Occupant != nil {
		e.interact(p, dest)
		return
	}
	if dest.Kind == models.Water && !p.Floating {
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgWater))
		return
	}
	if dest.Kind == models.DoorOut {
		e.stepThroughDoorOut(p, dest)
		return
	}
	e.placePlayer(p, dest)
}

// placePlayer clears the player's current tile and occupies dest.
func (e *Engine) placePlayer(p *models.Player, dest *models.Tile) {
	if cur := e.board.Location(p.LocationID).TileAt(p.Pos); cur != nil && cur.Occupant == p {
		cur.Occupant = nil
	}
	dest.Occupant = p
	p.LocationID = dest.LocationID
	p.Pos = dest.Pos
}

// stepThroughDoorOut teleports through a DoorOut tile to the square its
// paired door sits on. An occupied far side blocks the step but the turn to
// face the door sticks; on arrival the player faces south.
func (e *Engine) stepThroughDoorOut(p *models.Player, out *models.Tile) {
	far := e.board.Location(out.OutLocationID)
	if far == nil {
		return
	}
	target := far.TileAt(out.DoorPos)
	if target == nil || target.Occupant != nil {
		return
	}
	e.placePlayer(p, target)
	p.Facing = models.South
}

// interact resolves a step onto an occupied tile. Items are picked up and
// the player advances; chests, doors and NPCs respond in place.
func (e *Engine) interact(p *models.Player, dest *models.Tile) {
	switch obj := dest.Occupant.(type) {
	case models.Item:
		if p.InventoryFull() {
			return
		}
		if _, isKey := obj.(models.Key); isKey && p.KeyCount() >= models.KeyLimit {
			e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgKeyLimit))
			return
		}
		dest.Occupant = nil
		p.PickUp(obj)
		e.placePlayer(p, dest)
	case *models.Chest:
		e.openChest(p, obj)
	case *models.Door:
		e.stepThroughDoor(p, obj)
	case *models.NPC:
		e.tradeWithNPC(p)
	}
}

// openChest consumes the first carried key whose code matches a non-empty
// chest and transfers the contents. A chest opens exactly once.
func (e *Engine) openChest(p *models.Player, chest *models.Chest) {
	for i, it := range p.Inventory {
		k, ok := it.(models.Key)
		if !ok || k.Code != chest.Code || chest.Contents == nil {
			continue
		}
		p.RemoveItem(i)
		p.PickUp(chest.Contents)
		chest.Contents = nil
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgChestOpen))
		return
	}
	e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgChestFail))
}

// stepThroughDoor teleports through a standing door object to its recorded
// far square, unconditionally.
func (e *Engine) stepThroughDoor(p *models.Player, door *models.Door) {
	far := e.board.Location(door.LocationID)
	if far == nil {
		return
	}
	target := far.TileAt(door.DoorPos)
	if target == nil {
		return
	}
	e.placePlayer(p, target)
	p.Facing = models.South
}

// tradeWithNPC swaps the first carried fish for a banana. The trade is
// refused at night.
func (e *Engine) tradeWithNPC(p *models.Player) {
	if e.night {
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgNight))
		return
	}
	for i, it := range p.Inventory {
		if _, ok := it.(models.Fish); ok {
			p.RemoveItem(i)
			p.PickUp(models.Banana{})
			e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgTrade))
			return
		}
	}
	e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgTradeFail))
}

// pickupHere lifts an item lying on the player's own tile. Capacity and the
// key limit apply as they do when stepping onto an item.
func (e *Engine) pickupHere(p *models.Player) bool {
	t := e.board.Location(p.LocationID).TileAt(p.Pos)
	if t == nil {
		return false
	}
	item, ok := t.Occupant.(models.Item)
	if !ok {
		return false
	}
	if p.InventoryFull() {
		return false
	}
	if _, isKey := item.(models.Key); isKey && p.KeyCount() >= models.KeyLimit {
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgKeyLimit))
		return false
	}
	p.PickUp(item)
	t.Occupant = p
	return true
}

// drop places the indexed inventory item on the empty tile the player is
// facing. A missing or occupied front tile fails with no mutation.
func (e *Engine) drop(p *models.Player, idx int) bool {
	item, ok := p.ItemAt(idx)
	if !ok {
		return false
	}
	front := e.board.Location(p.LocationID).TileInDirection(p.Pos, p.Facing)
	if front == nil || front.Occupant != nil {
		return false
	}
	p.RemoveItem(idx)
	front.Occupant = item
	return true
}

// siphon converts a carried banana into permanent progress. Progress is
// announced to everyone else; the fifth banana wins the game.
func (e *Engine) siphon(p *models.Player, idx int) Result {
	item, ok := p.ItemAt(idx)
	if !ok {
		return ResultFailed
	}
	if _, isBanana := item.(models.Banana); !isBanana {
		return ResultFailed
	}
	p.RemoveItem(idx)
	p.Bananas++
	noun := "bananas"
	if p.Bananas == 1 {
		noun = "banana"
	}
	e.notifier.AllExceptPlayer(p.Username, messages.Popup(messages.PacketPopupBarOne,
		fmt.Sprintf("%s has siphoned %d %s, step it up soldier!", p.Username, p.Bananas, noun)))
	e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgSiphonSelf))
	if p.Bananas >= WinningBananas {
		logging.L.Infow("game won", "username", p.Username, "bananas", p.Bananas)
		e.notifier.BroadcastAll(messages.String(messages.EndgamePrefix + p.Username))
		return ResultEndgame
	}
	e.broadcastBoard()
	return ResultOK
}

func (e *Engine) useItem(p *models.Player, idx int) bool {
	item, ok := p.ItemAt(idx)
	if !ok {
		return false
	}
	switch item.(type) {
	case models.FloatingDevice:
		p.Floating = !p.Floating
		return true
	case models.Teleporter:
		return e.useTeleporter(p, idx)
	case models.FishingRod:
		e.useFishingRod(p, idx)
		return true
	}
	return false
}

// useTeleporter returns the player to the first home square in location 0
// not occupied by another player, consuming the orb. With every home square
// taken the orb fizzles and is kept.
func (e *Engine) useTeleporter(p *models.Player, idx int) bool {
	home := e.board.Location(0)
	if home == nil {
		return false
	}
	for _, sq := range spawnSquares {
		t := home.TileAt(sq)
		if t == nil {
			continue
		}
		if _, taken := t.Occupant.(*models.Player); taken {
			continue
		}
		p.RemoveItem(idx)
		e.placePlayer(p, t)
		p.Facing = models.South
		return true
	}
	return false
}

// useFishingRod casts at the water tile the player faces. One cast in five
// lands a fish and consumes the rod; a failed cast keeps it.
func (e *Engine) useFishingRod(p *models.Player, idx int) {
	front := e.board.Location(p.LocationID).TileInDirection(p.Pos, p.Facing)
	if front == nil || front.Kind != models.Water {
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgFishLand))
		return
	}
	if p.InventoryFull() {
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgFishNoRoom))
		return
	}
	if e.rng.Intn(5) == 0 {
		p.RemoveItem(idx)
		p.PickUp(models.Fish{})
		e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgFishCaught))
		return
	}
	e.notifier.ToPlayer(p.Username, messages.Popup(messages.PacketPopupOne, msgFishNibble))
}

// moveNPC steps one NPC per its strategy. NPCs turn before checking the
// step, never move at night, and never enter water or an occupied tile. A
// completed step is broadcast immediately so clients see NPCs wander
// between command broadcasts.
func (e *Engine) moveNPC(i int) {
	if e.night {
		return
	}
	entry := &e.npcs[i]
	loc := e.board.Location(entry.locationID)
	if loc == nil {
		return
	}
	cur := e.findOccupantTile(loc, entry.npc)
	if cur == nil {
		return
	}
	d := entry.npc.NextDirection(e.rng)
	entry.npc.Facing = d
	dest := loc.TileInDirection(cur.Pos, d)
	if dest == nil || dest.Occupant != nil || dest.Kind == models.Water || dest.Kind == models.DoorOut {
		return
	}
	cur.Occupant = nil
	dest.Occupant = entry.npc
	entry.locationID = dest.LocationID
	e.broadcastBoard()
}

func (e *Engine) findOccupantTile(loc *models.Location, obj models.GameObject) *models.Tile {
	for _, row := range loc.Tiles {
		for _, t := range row {
			if t.Occupant == obj {
				return t
			}
		}
	}
	return nil
}

// generateCodes pairs every key lying on the board with a chest by
// assigning shared random codes and seeding each chest with a banana. The
// pairing is a bijection, so mismatched counts make the board unplayable
// and abort the load.
func (e *Engine) generateCodes() error {
	var keys []*models.Tile
	var chests []*models.Chest
	for _, id := range e.board.LocationIDs() {
		loc := e.board.Location(id)
		for _, row := range loc.Tiles {
			for _, t := range row {
				switch occ := t.Occupant.(type) {
				case models.Key:
					keys = append(keys, t)
				case *models.Chest:
					chests = append(chests, occ)
				}
			}
		}
	}
	if len(keys) != len(chests) {
		return fmt.Errorf("board has %d keys and %d chests, cannot pair codes", len(keys), len(chests))
	}
	code := 0
	for len(keys) > 0 {
		ki := e.rng.Intn(len(keys))
		ci := e.rng.Intn(len(chests))
		kt := keys[ki]
		k := kt.Occupant.(models.Key)
		k.Code = code
		kt.Occupant = k
		chests[ci].Code = code
		chests[ci].Contents = models.Banana{}
		keys = append(keys[:ki], keys[ki+1:]...)
		chests = append(chests[:ci], chests[ci+1:]...)
		code++
	}
	return nil
}

// collectNPCs indexes every NPC on the board in a stable order so the tick
// loop consumes randomness deterministically for a given seed.
func (e *Engine) collectNPCs() {
	for _, id := range e.board.LocationIDs() {
		loc := e.board.Location(id)
		for _, row := range loc.Tiles {
			for _, t := range row {
				if npc, ok := t.Occupant.(*models.NPC); ok {
					e.npcs = append(e.npcs, npcEntry{npc: npc, locationID: id})
				}
			}
		}
	}
}

func (e *Engine) broadcastBoard() {
	e.notifier.BroadcastAll(messages.Board(persistence.WriteBoard(e.board), e.clock))
}
