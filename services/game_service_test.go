package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"bananarealm/messages"
	"bananarealm/models"
)

type recordingNotifier struct {
	mu     sync.Mutex
	all    []messages.Packet
	to     map[string][]messages.Packet
	except map[string][]messages.Packet
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		to:     make(map[string][]messages.Packet),
		except: make(map[string][]messages.Packet),
	}
}

func (n *recordingNotifier) BroadcastAll(pkt messages.Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, pkt)
}

func (n *recordingNotifier) ToPlayer(username string, pkt messages.Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.to[username] = append(n.to[username], pkt)
}

func (n *recordingNotifier) AllExceptPlayer(username string, pkt messages.Packet) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.except[username] = append(n.except[username], pkt)
}

func (n *recordingNotifier) lastTo(username string) (messages.Packet, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	pkts := n.to[username]
	if len(pkts) == 0 {
		return messages.Packet{}, false
	}
	return pkts[len(pkts)-1], true
}

func (n *recordingNotifier) broadcastCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.all)
}

// flatWorld is two linked grass locations with location 0 as home.
func flatWorld() *models.Board {
	b := models.NewBoard()
	b.AddLocation(models.NewEmptyLocation(0, "home", models.Grass))
	b.AddLocation(models.NewEmptyLocation(1, "east", models.Grass))
	b.LinkLocations(map[models.Position]int{
		{X: 0, Y: 0}: 0,
		{X: 1, Y: 0}: 1,
	})
	return b
}

func newTestEngine(t *testing.T, b *models.Board) (*Engine, *recordingNotifier) {
	t.Helper()
	n := newRecordingNotifier()
	e, err := NewEngine(b, n, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, n
}

func loginPlayer(t *testing.T, e *Engine, username string) *models.Player {
	t.Helper()
	if res := e.login(username); res != ResultOK {
		t.Fatalf("login %s = %v", username, res)
	}
	return e.board.Player(username)
}

func TestLoginSpawnsOnFreeSquares(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	want := []models.Position{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 4, Y: 4}, {X: 5, Y: 4}}
	for i, name := range []string{"a", "b", "c", "d"} {
		p := loginPlayer(t, e, name)
		if p.Pos != want[i] || p.LocationID != 0 {
			t.Fatalf("%s spawned at loc %d %v, want %v", name, p.LocationID, p.Pos, want[i])
		}
		tile := e.board.Location(0).TileAt(p.Pos)
		if tile.Occupant != p {
			t.Fatalf("%s not standing on its spawn tile", name)
		}
	}
	if res := e.login("e"); res != ResultFailLogin {
		t.Fatalf("login with all spawn squares taken = %v", res)
	}
}

func TestLoginRejectsActiveUsername(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	loginPlayer(t, e, "a")
	if res := e.login("a"); res != ResultFailLogin {
		t.Fatalf("second login for active username = %v", res)
	}
}

func TestLogoutAndResume(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	if res := e.Login("a"); res != ResultOK {
		t.Fatalf("login = %v", res)
	}
	p := e.board.Player("a")
	p.Bananas = 3

	e.Logout("a")
	if p.LoggedIn {
		t.Fatal("player still logged in")
	}
	if e.board.Location(0).TileAt(p.Pos).Occupant != nil {
		t.Fatal("tile still occupied after logout")
	}

	if res := e.Login("a"); res != ResultOK {
		t.Fatalf("resume = %v", res)
	}
	if !p.LoggedIn || p.Bananas != 3 {
		t.Fatalf("resumed record = %+v", p)
	}
	if e.board.Location(0).TileAt(p.Pos).Occupant != p {
		t.Fatal("resumed player not restored to its tile")
	}
}

func TestMoveStepsAndTurns(t *testing.T) {
	e, n := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	before := n.broadcastCount()

	if res := e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East}); res != ResultOK {
		t.Fatalf("move = %v", res)
	}
	if p.Pos != (models.Position{X: 6, Y: 5}) || p.Facing != models.East {
		t.Fatalf("after move east: pos %v facing %v", p.Pos, p.Facing)
	}
	if e.board.Location(0).TileAt(models.Position{X: 5, Y: 5}).Occupant != nil {
		t.Fatal("old tile still occupied")
	}
	if n.broadcastCount() != before+1 {
		t.Fatalf("broadcasts after move = %d, want %d", n.broadcastCount(), before+1)
	}
}

func TestMoveBlockedAtWorldEdgeStillBroadcasts(t *testing.T) {
	e, n := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	p.Pos = models.Position{X: 5, Y: 0}
	e.board.Location(0).TileAt(models.Position{X: 5, Y: 5}).Occupant = nil
	e.board.Location(0).TileAt(p.Pos).Occupant = p
	before := n.broadcastCount()

	if res := e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.North}); res != ResultOK {
		t.Fatalf("move = %v", res)
	}
	if p.Pos != (models.Position{X: 5, Y: 0}) {
		t.Fatalf("player moved off an unlinked edge to %v", p.Pos)
	}
	if p.Facing != models.North {
		t.Fatal("blocked move did not turn the player")
	}
	if n.broadcastCount() != before+1 {
		t.Fatal("blocked move skipped the snapshot broadcast")
	}
}

func TestMoveCrossesLocationEdge(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	e.board.Location(0).TileAt(p.Pos).Occupant = nil
	p.Pos = models.Position{X: 9, Y: 5}
	e.board.Location(0).TileAt(p.Pos).Occupant = p

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.LocationID != 1 || p.Pos != (models.Position{X: 0, Y: 5}) {
		t.Fatalf("after edge cross: loc %d pos %v", p.LocationID, p.Pos)
	}
	if e.board.Location(1).TileAt(p.Pos).Occupant != p {
		t.Fatal("destination tile not occupied")
	}
}

func TestWaterNeedsFloatingDevice(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Kind = models.Water
	e, n := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")
	p.PickUp(models.FloatingDevice{})

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.Pos != (models.Position{X: 5, Y: 5}) {
		t.Fatalf("walked onto water without floating: %v", p.Pos)
	}
	if pkt, ok := n.lastTo("a"); !ok || pkt.Type != messages.PacketPopupOne {
		t.Fatal("no notification for the blocked swim")
	}

	e.execute(Command{Verb: VerbUse, Username: "a", Index: 0})
	if !p.Floating {
		t.Fatal("floating device did not toggle")
	}
	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.Pos != (models.Position{X: 6, Y: 5}) {
		t.Fatalf("floating player blocked from water: %v", p.Pos)
	}
}

func TestPickupByWalkingOntoItem(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant = models.Banana{}
	e, _ := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.Pos != (models.Position{X: 6, Y: 5}) {
		t.Fatalf("player did not advance onto the item tile: %v", p.Pos)
	}
	if len(p.Inventory) != 1 {
		t.Fatalf("inventory = %v", p.Inventory)
	}
	if e.board.Location(0).TileAt(p.Pos).Occupant != p {
		t.Fatal("item tile not taken over by the player")
	}
}

func TestKeyLimitBlocksFourthKey(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant = models.Key{ItemName: "spare", Code: 99}
	// Code pairing needs a chest for the board key.
	b.Location(1).TileAt(models.Position{X: 9, Y: 9}).Occupant = &models.Chest{}
	e, n := newTestEngine(t, b)
	// The carried keys never lay on a tile, so they are handed out directly.
	p := loginPlayer(t, e, "a")
	for i := 0; i < models.KeyLimit; i++ {
		p.PickUp(models.Key{ItemName: "k", Code: i})
	}

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.Pos != (models.Position{X: 5, Y: 5}) {
		t.Fatal("player advanced despite the key limit")
	}
	if p.KeyCount() != models.KeyLimit {
		t.Fatalf("key count = %d", p.KeyCount())
	}
	if pkt, ok := n.lastTo("a"); !ok || pkt.Message != msgKeyLimit {
		t.Fatal("key limit notification missing")
	}
}

func TestChestOpensExactlyOnce(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 3, Y: 3}).Occupant = models.Key{ItemName: "k", Code: 0}
	chest := &models.Chest{}
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant = chest
	e, n := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")
	// Code pairing filled the chest and matched it with the board key.
	if chest.Contents == nil {
		t.Fatal("chest not seeded with contents")
	}
	key := b.Location(0).TileAt(models.Position{X: 3, Y: 3}).Occupant.(models.Key)
	if key.Code != chest.Code {
		t.Fatalf("key code %d does not match chest code %d", key.Code, chest.Code)
	}
	b.Location(0).TileAt(models.Position{X: 3, Y: 3}).Occupant = nil
	p.PickUp(key)

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.Pos != (models.Position{X: 5, Y: 5}) {
		t.Fatal("player moved onto the chest tile")
	}
	if p.KeyCount() != 0 {
		t.Fatal("key not consumed")
	}
	if len(p.Inventory) != 1 {
		t.Fatalf("inventory after opening = %v", p.Inventory)
	}
	if _, ok := p.Inventory[0].(models.Banana); !ok {
		t.Fatalf("chest yielded %T", p.Inventory[0])
	}
	if chest.Contents != nil {
		t.Fatal("chest still holds contents")
	}
	if pkt, _ := n.lastTo("a"); pkt.Message != msgChestOpen {
		t.Fatalf("open notification = %q", pkt.Message)
	}

	// A second visit with another matching key finds the chest spent.
	p.PickUp(models.Key{ItemName: "copy", Code: chest.Code})
	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.KeyCount() != 1 {
		t.Fatal("key consumed on a spent chest")
	}
	if pkt, _ := n.lastTo("a"); pkt.Message != msgChestFail {
		t.Fatalf("spent chest notification = %q", pkt.Message)
	}
}

func TestDropOntoFacedTile(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	p.PickUp(models.Fish{})
	p.Facing = models.North

	if res := e.execute(Command{Verb: VerbDrop, Username: "a", Index: 0}); res != ResultOK {
		t.Fatalf("drop = %v", res)
	}
	front := e.board.Location(0).TileAt(models.Position{X: 5, Y: 4})
	if _, ok := front.Occupant.(models.Fish); !ok {
		t.Fatalf("front tile occupant = %T", front.Occupant)
	}
	if len(p.Inventory) != 0 {
		t.Fatal("item not removed from inventory")
	}

	// Occupied front tile: nothing happens.
	p.PickUp(models.Banana{})
	if res := e.execute(Command{Verb: VerbDrop, Username: "a", Index: 0}); res != ResultFailed {
		t.Fatalf("drop onto occupied tile = %v", res)
	}
	if len(p.Inventory) != 1 {
		t.Fatal("inventory mutated by failed drop")
	}

	// Bad index.
	if res := e.execute(Command{Verb: VerbDrop, Username: "a", Index: 7}); res != ResultFailed {
		t.Fatalf("drop with bad index = %v", res)
	}
}

func TestDropAtUnlinkedEdgeFails(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	e.board.Location(0).TileAt(p.Pos).Occupant = nil
	p.Pos = models.Position{X: 5, Y: 0}
	e.board.Location(0).TileAt(p.Pos).Occupant = p
	p.Facing = models.North
	p.PickUp(models.Banana{})

	if res := e.execute(Command{Verb: VerbDrop, Username: "a", Index: 0}); res != ResultFailed {
		t.Fatalf("drop off the world edge = %v", res)
	}
	if len(p.Inventory) != 1 {
		t.Fatal("inventory mutated by failed drop")
	}
}

func TestSiphonProgressAndEndgame(t *testing.T) {
	e, n := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	loginPlayer(t, e, "b")
	p.PickUp(models.Banana{})

	if res := e.execute(Command{Verb: VerbSiphon, Username: "a", Index: 0}); res != ResultOK {
		t.Fatalf("siphon = %v", res)
	}
	if p.Bananas != 1 || len(p.Inventory) != 0 {
		t.Fatalf("after siphon: %d bananas, inventory %v", p.Bananas, p.Inventory)
	}
	if pkt, _ := n.lastTo("a"); pkt.Message != msgSiphonSelf {
		t.Fatalf("self notification = %q", pkt.Message)
	}
	if got := n.except["a"][0].Message; got != "a has siphoned 1 banana, step it up soldier!" {
		t.Fatalf("progress notification = %q", got)
	}

	p.PickUp(models.Banana{})
	e.execute(Command{Verb: VerbSiphon, Username: "a", Index: 0})
	if got := n.except["a"][1].Message; got != "a has siphoned 2 bananas, step it up soldier!" {
		t.Fatalf("plural progress notification = %q", got)
	}

	// Fish is not siphonable.
	p.PickUp(models.Fish{})
	if res := e.execute(Command{Verb: VerbSiphon, Username: "a", Index: 0}); res != ResultFailed {
		t.Fatalf("siphon a fish = %v", res)
	}

	p.Inventory = nil
	p.Bananas = WinningBananas - 1
	p.PickUp(models.Banana{})
	selfBefore := len(n.to["a"])
	progressBefore := len(n.except["a"])
	if res := e.execute(Command{Verb: VerbSiphon, Username: "a", Index: 0}); res != ResultEndgame {
		t.Fatalf("winning siphon = %v", res)
	}
	// The winning siphon still announces progress before the endgame
	// packet closes the game.
	if len(n.to["a"]) != selfBefore+1 || len(n.except["a"]) != progressBefore+1 {
		t.Fatal("winning siphon skipped the progress notifications")
	}
	last := n.all[len(n.all)-1]
	if last.Type != messages.PacketString || last.Message != messages.EndgamePrefix+"a" {
		t.Fatalf("endgame packet = %+v", last)
	}
}

func TestTeleporterReturnsHome(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")
	e.board.Location(0).TileAt(p.Pos).Occupant = nil
	p.LocationID = 1
	p.Pos = models.Position{X: 7, Y: 7}
	e.board.Location(1).TileAt(p.Pos).Occupant = p
	p.PickUp(models.Teleporter{})

	if res := e.execute(Command{Verb: VerbUse, Username: "a", Index: 0}); res != ResultOK {
		t.Fatalf("use teleporter = %v", res)
	}
	if p.LocationID != 0 || p.Pos != (models.Position{X: 5, Y: 5}) {
		t.Fatalf("teleported to loc %d %v", p.LocationID, p.Pos)
	}
	if p.Facing != models.South {
		t.Fatal("teleport arrival does not face south")
	}
	if len(p.Inventory) != 0 {
		t.Fatal("teleporter not consumed")
	}
	if e.board.Location(1).TileAt(models.Position{X: 7, Y: 7}).Occupant != nil {
		t.Fatal("source tile still occupied")
	}
}

func TestTeleporterSkipsOccupiedHomeSquares(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	loginPlayer(t, e, "a") // takes (5,5)
	p := loginPlayer(t, e, "b")
	e.board.Location(0).TileAt(p.Pos).Occupant = nil
	p.LocationID = 1
	p.Pos = models.Position{X: 2, Y: 2}
	e.board.Location(1).TileAt(p.Pos).Occupant = p
	p.PickUp(models.Teleporter{})

	e.execute(Command{Verb: VerbUse, Username: "b", Index: 0})
	if p.LocationID != 0 || p.Pos != (models.Position{X: 4, Y: 5}) {
		t.Fatalf("teleported to loc %d %v, want the second home square", p.LocationID, p.Pos)
	}
}

func TestFishingRod(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Kind = models.Water
	e, n := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")
	p.PickUp(models.FishingRod{})
	p.Facing = models.East

	caught := false
	for i := 0; i < 200 && !caught; i++ {
		e.execute(Command{Verb: VerbUse, Username: "a", Index: 0})
		for _, it := range p.Inventory {
			if _, ok := it.(models.Fish); ok {
				caught = true
			}
		}
	}
	if !caught {
		t.Fatal("no fish after 200 casts")
	}
	// The rod is consumed with the catch.
	for _, it := range p.Inventory {
		if _, ok := it.(models.FishingRod); ok {
			t.Fatal("rod survived the catch")
		}
	}

	// Facing land the rod refuses.
	p.Inventory = nil
	p.PickUp(models.FishingRod{})
	p.Facing = models.West
	e.execute(Command{Verb: VerbUse, Username: "a", Index: 0})
	if pkt, _ := n.lastTo("a"); pkt.Message != msgFishLand {
		t.Fatalf("land cast notification = %q", pkt.Message)
	}
	if len(p.Inventory) != 1 {
		t.Fatal("rod consumed by a land cast")
	}
}

func TestNPCMovesByStrategy(t *testing.T) {
	b := flatWorld()
	npc := models.NewNPC("circle", models.North)
	b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant = npc
	e, n := newTestEngine(t, b)
	before := n.broadcastCount()

	// Circle strategy from north steps east.
	e.moveNPC(0)
	if b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant != nil {
		t.Fatal("npc did not leave its tile")
	}
	if b.Location(0).TileAt(models.Position{X: 3, Y: 2}).Occupant != npc {
		t.Fatal("npc not on the tile to the east")
	}
	if npc.Facing != models.East {
		t.Fatalf("npc facing = %v", npc.Facing)
	}
	if n.broadcastCount() != before+1 {
		t.Fatal("npc step was not broadcast")
	}
}

func TestNPCBlockedByWaterAndOccupants(t *testing.T) {
	b := flatWorld()
	npc := models.NewNPC("circle", models.North)
	b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant = npc
	b.Location(0).TileAt(models.Position{X: 3, Y: 2}).Kind = models.Water
	e, _ := newTestEngine(t, b)

	e.moveNPC(0)
	if b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant != npc {
		t.Fatal("npc entered water")
	}
	// It still turned, so the next circle step heads south.
	b.Location(0).TileAt(models.Position{X: 2, Y: 3}).Occupant = models.Tree{}
	e.moveNPC(0)
	if b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant != npc {
		t.Fatal("npc entered an occupied tile")
	}
}

func TestNPCSleepsAtNight(t *testing.T) {
	b := flatWorld()
	npc := models.NewNPC("circle", models.North)
	b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant = npc
	e, _ := newTestEngine(t, b)
	e.night = true

	e.moveNPC(0)
	if b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant != npc {
		t.Fatal("npc moved at night")
	}
}

func TestNPCRefusesTradeAtNight(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant = models.NewNPC("circle", models.North)
	e, n := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")
	p.PickUp(models.Fish{})
	e.night = true

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if pkt, _ := n.lastTo("a"); pkt.Message != msgNight {
		t.Fatalf("night trade notification = %q", pkt.Message)
	}
	if len(p.Inventory) != 1 {
		t.Fatal("fish traded at night")
	}

	e.night = false
	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if len(p.Inventory) != 1 {
		t.Fatalf("inventory after trade = %v", p.Inventory)
	}
	if _, ok := p.Inventory[0].(models.Banana); !ok {
		t.Fatalf("trade yielded %T", p.Inventory[0])
	}
	if pkt, _ := n.lastTo("a"); pkt.Message != msgTrade {
		t.Fatalf("trade notification = %q", pkt.Message)
	}
}

func TestTickNightWindow(t *testing.T) {
	e, n := newTestEngine(t, flatWorld())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx)

	cases := []struct {
		count int
		night bool
	}{
		{1, false},
		{90, false},
		{91, true},
		{120, true},
		{149, true},
		{150, false},
		{180, false},
		{180 + 91, true},
	}
	for _, c := range cases {
		e.Tick(c.count)
		if e.night != c.night {
			t.Errorf("tick %d: night = %v, want %v", c.count, e.night, c.night)
		}
	}
	if n.broadcastCount() < len(cases) {
		t.Fatalf("time broadcasts = %d, want at least %d", n.broadcastCount(), len(cases))
	}
}

func TestNewEngineRejectsUnpairableBoard(t *testing.T) {
	b := flatWorld()
	b.Location(0).TileAt(models.Position{X: 2, Y: 2}).Occupant = models.Key{ItemName: "orphan", Code: 0}
	if _, err := NewEngine(b, newRecordingNotifier(), rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("engine accepted a board with an orphan key")
	}
}

func TestGenerateCodesPairsEveryKey(t *testing.T) {
	b := flatWorld()
	keys := []models.Position{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}}
	chests := make([]*models.Chest, 3)
	for i, pos := range keys {
		b.Location(0).TileAt(pos).Occupant = models.Key{ItemName: "k", Code: 0}
		chests[i] = &models.Chest{}
		b.Location(1).TileAt(models.Position{X: i, Y: 0}).Occupant = chests[i]
	}
	newTestEngine(t, b)

	seen := make(map[int]bool)
	for _, chest := range chests {
		if chest.Contents == nil {
			t.Fatal("chest left empty by code pairing")
		}
		if seen[chest.Code] {
			t.Fatalf("chest code %d assigned twice", chest.Code)
		}
		seen[chest.Code] = true
	}
	for _, pos := range keys {
		k := b.Location(0).TileAt(pos).Occupant.(models.Key)
		if !seen[k.Code] {
			t.Fatalf("key code %d has no chest", k.Code)
		}
	}
}

func TestDoorOutTeleport(t *testing.T) {
	b := flatWorld()
	out := b.Location(0).TileAt(models.Position{X: 6, Y: 5})
	out.Kind = models.DoorOut
	out.OutLocationID = 1
	out.DoorPos = models.Position{X: 3, Y: 3}
	e, _ := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.LocationID != 1 || p.Pos != (models.Position{X: 3, Y: 3}) {
		t.Fatalf("door out landed at loc %d %v", p.LocationID, p.Pos)
	}
	if p.Facing != models.South {
		t.Fatal("arrival does not face south")
	}
	if out.Occupant != nil {
		t.Fatal("door out tile was occupied in passing")
	}
}

func TestDoorOutBlockedWhenFarSideOccupied(t *testing.T) {
	b := flatWorld()
	out := b.Location(0).TileAt(models.Position{X: 6, Y: 5})
	out.Kind = models.DoorOut
	out.OutLocationID = 1
	out.DoorPos = models.Position{X: 3, Y: 3}
	b.Location(1).TileAt(models.Position{X: 3, Y: 3}).Occupant = models.Tree{}
	e, _ := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.LocationID != 0 || p.Pos != (models.Position{X: 5, Y: 5}) {
		t.Fatalf("blocked door moved the player to loc %d %v", p.LocationID, p.Pos)
	}
	if p.Facing != models.East {
		t.Fatal("blocked door did not keep the turn")
	}
}

func TestDoorObjectTeleportsUnconditionally(t *testing.T) {
	b := flatWorld()
	door := &models.Door{Code: 1, LocationID: 1, DoorPos: models.Position{X: 8, Y: 8}}
	b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant = door
	e, _ := newTestEngine(t, b)
	p := loginPlayer(t, e, "a")

	e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.East})
	if p.LocationID != 1 || p.Pos != (models.Position{X: 8, Y: 8}) {
		t.Fatalf("door landed at loc %d %v", p.LocationID, p.Pos)
	}
	if b.Location(0).TileAt(models.Position{X: 6, Y: 5}).Occupant != door {
		t.Fatal("door object disturbed by the teleport")
	}
}

func TestPickupCommandOnOwnTile(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	p := loginPlayer(t, e, "a")

	// Nothing under the player.
	if res := e.execute(Command{Verb: VerbPickup, Username: "a"}); res != ResultFailed {
		t.Fatalf("pickup on empty tile = %v", res)
	}

	// An item shares the square after the player record was restored over
	// it; pickup lifts it and the player keeps the square.
	tile := e.board.Location(0).TileAt(p.Pos)
	tile.Occupant = models.Banana{}
	if res := e.execute(Command{Verb: VerbPickup, Username: "a"}); res != ResultOK {
		t.Fatalf("pickup = %v", res)
	}
	if len(p.Inventory) != 1 {
		t.Fatalf("inventory = %v", p.Inventory)
	}
	if tile.Occupant != p {
		t.Fatal("player does not hold the square after pickup")
	}
}

func TestCommandsFromUnknownOrLoggedOutPlayersFail(t *testing.T) {
	e, _ := newTestEngine(t, flatWorld())
	if res := e.execute(Command{Verb: VerbMove, Username: "ghost", Dir: models.North}); res != ResultFailed {
		t.Fatalf("command for unknown player = %v", res)
	}
	p := loginPlayer(t, e, "a")
	p.LoggedIn = false
	if res := e.execute(Command{Verb: VerbMove, Username: "a", Dir: models.North}); res != ResultFailed {
		t.Fatalf("command for logged out player = %v", res)
	}
}
