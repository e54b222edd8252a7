// Package persistence reads and writes the board text grammar and loads the
// boot world from a flat file.
package persistence

import (
	"fmt"
	"strconv"
	"strings"

	"bananarealm/models"
)

// ParseError reports the first offending token of a malformed board text,
// with a short lookahead for context. The whole load is aborted; no
// partially built board is ever returned.
type ParseError struct {
	Message string
	Token   string
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("board parse: %s at %q (near %q)", e.Message, e.Token, e.Context)
}

// scanner walks the token stream of a board text. Whitespace separates
// tokens and each of { } ( ) , ; stands alone; labels like "id:" keep their
// colon attached.
type scanner struct {
	tokens []string
	pos    int
}

func newScanner(text string) *scanner {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case ' ', '\t', '\r', '\n':
			flush()
		case '{', '}', '(', ')', ',', ';':
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return &scanner{tokens: tokens}
}

func (s *scanner) hasNext() bool {
	return s.pos < len(s.tokens)
}

func (s *scanner) next() string {
	if !s.hasNext() {
		s.fail("unexpected end of input", "")
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

// checkFor consumes the next token if it equals want.
func (s *scanner) checkFor(want string) bool {
	if s.hasNext() && s.tokens[s.pos] == want {
		s.pos++
		return true
	}
	return false
}

// require consumes the next token, failing unless it equals want.
func (s *scanner) require(want string) {
	if !s.checkFor(want) {
		tok := ""
		if s.hasNext() {
			tok = s.tokens[s.pos]
		}
		s.fail("expected "+strconv.Quote(want), tok)
	}
}

func (s *scanner) nextInt() int {
	tok := s.next()
	n, err := strconv.Atoi(tok)
	if err != nil {
		s.fail("expected integer", tok)
	}
	return n
}

func (s *scanner) nextBool() bool {
	tok := s.next()
	b, err := strconv.ParseBool(tok)
	if err != nil {
		s.fail("expected boolean", tok)
	}
	return b
}

// fail aborts the parse via panic; ParseBoard recovers it into an error.
func (s *scanner) fail(msg, tok string) {
	end := s.pos + 5
	if end > len(s.tokens) {
		end = len(s.tokens)
	}
	panic(&ParseError{
		Message: msg,
		Token:   tok,
		Context: strings.Join(s.tokens[s.pos:end], " "),
	})
}

// ParseBoard decodes a complete board from its text form. Decoding is
// fail-fast: the first bad token aborts with a *ParseError.
func ParseBoard(text string) (b *models.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				b, err = nil, pe
				return
			}
			panic(r)
		}
	}()

	s := newScanner(text)
	b = models.NewBoard()
	for s.checkFor("Player") {
		b.AddPlayer(parsePlayer(s))
	}
	for s.checkFor("Location") {
		b.AddLocation(parseLocation(s, b))
	}
	validatePlayers(b)
	return b, nil
}

// validatePlayers rejects player records naming a location or square the
// board does not have; the engine dereferences these without checks.
func validatePlayers(b *models.Board) {
	for _, name := range b.Usernames() {
		p := b.Player(name)
		loc := b.Location(p.LocationID)
		if loc == nil {
			panic(&ParseError{
				Message: fmt.Sprintf("player %s references unknown location %d", name, p.LocationID),
				Token:   name,
			})
		}
		if loc.TileAt(p.Pos) == nil {
			panic(&ParseError{
				Message: fmt.Sprintf("player %s sits at %s, outside location %d", name, p.Pos, p.LocationID),
				Token:   name,
			})
		}
	}
}

func parsePlayer(s *scanner) *models.Player {
	s.require("{")
	name := s.next()
	s.require(",")
	bananas := s.nextInt()
	s.require(",")
	locID := s.nextInt()
	s.require(",")
	x := s.nextInt()
	s.require(",")
	y := s.nextInt()
	s.require(",")
	facing := parseDirection(s)
	s.require(",")
	loggedIn := s.nextBool()
	s.require(",")
	floating := s.nextBool()
	s.require(",")
	s.require("Inventory")
	s.require("(")

	p := models.NewPlayer(name, locID, models.Position{X: x, Y: y})
	p.Bananas = bananas
	p.Facing = facing
	p.LoggedIn = loggedIn
	p.Floating = floating
	for !s.checkFor(")") {
		p.PickUp(parseItem(s))
		s.require(",")
	}
	s.require("}")
	return p
}

func parseDirection(s *scanner) models.Direction {
	tok := s.next()
	d, ok := models.ParseDirection(tok)
	if !ok {
		s.fail("not a valid direction", tok)
	}
	return d
}

func parseLocation(s *scanner, b *models.Board) *models.Location {
	s.require("{")
	s.require("id:")
	id := s.nextInt()
	s.require("name:")
	name := s.next()
	s.require("w:")
	w := s.nextInt()
	s.require("h:")
	h := s.nextInt()

	neighbors := make(map[models.Direction]int)
	if s.checkFor("NORTH:") {
		neighbors[models.North] = s.nextInt()
	}
	if s.checkFor("EAST:") {
		neighbors[models.East] = s.nextInt()
	}
	if s.checkFor("WEST:") {
		neighbors[models.West] = s.nextInt()
	}
	if s.checkFor("SOUTH:") {
		neighbors[models.South] = s.nextInt()
	}

	tiles := make([][]*models.Tile, h)
	for y := 0; y < h; y++ {
		tiles[y] = make([]*models.Tile, w)
		for x := 0; x < w; x++ {
			t := parseTile(s, x, y, b)
			t.LocationID = id
			tiles[y][x] = t
		}
	}
	s.require("}")

	loc := models.NewLocation(id, name, tiles)
	loc.Neighbors = neighbors
	return loc
}

func parseTile(s *scanner, x, y int, b *models.Board) *models.Tile {
	s.require("(")
	tile := &models.Tile{Pos: models.Position{X: x, Y: y}}

	kindTok := s.next()
	kind, ok := models.ParseTileKind(kindTok)
	if !ok {
		s.fail("not a valid tile type", kindTok)
	}
	tile.Kind = kind
	if kind == models.DoorOut {
		s.require("(")
		tile.OutLocationID = s.nextInt()
		s.require(",")
		dx := s.nextInt()
		s.require(",")
		dy := s.nextInt()
		s.require(")")
		tile.DoorPos = models.Position{X: dx, Y: dy}
	}

	if s.checkFor("(") {
		tile.Occupant = parseGameObject(s, b)
		s.require(")")
	}
	s.require(")")
	return tile
}

func parseGameObject(s *scanner, b *models.Board) models.GameObject {
	tok := s.next()
	switch tok {
	case "Tree":
		return models.Tree{}
	case "Fence":
		return models.Fence{}
	case "Wall":
		return models.Wall{}
	case "Building":
		return models.Building{}
	case "Player":
		s.require("(")
		name := s.next()
		s.require(")")
		p := b.Player(name)
		if p == nil {
			s.fail("player on board has no record", name)
		}
		return p
	case "Door":
		return parseDoor(s)
	case "Chest":
		return parseChest(s)
	case "NPC":
		return parseNPC(s)
	case "Key", "FloatingDevice", "Banana", "Teleporter", "Fish", "FishingRod":
		s.pos-- // item tokens re-read by parseItem
		return parseItem(s)
	}
	s.fail("not a game object", tok)
	return nil
}

func parseItem(s *scanner) models.Item {
	tok := s.next()
	switch tok {
	case "Key":
		s.require("(")
		name := s.next()
		s.require(",")
		code := s.nextInt()
		s.require(")")
		return models.Key{ItemName: name, Code: code}
	case "FloatingDevice":
		return models.FloatingDevice{}
	case "Banana":
		return models.Banana{}
	case "Teleporter":
		return models.Teleporter{}
	case "Fish":
		return models.Fish{}
	case "FishingRod":
		return models.FishingRod{}
	}
	s.fail("not an item", tok)
	return nil
}

func parseChest(s *scanner) *models.Chest {
	chest := &models.Chest{}
	s.require("(")
	chest.Code = s.nextInt()
	if s.checkFor(",") {
		chest.Contents = parseItem(s)
	}
	s.require(")")
	return chest
}

func parseDoor(s *scanner) *models.Door {
	s.require("(")
	code := s.nextInt()
	s.require(",")
	locID := s.nextInt()
	s.require(",")
	x := s.nextInt()
	s.require(",")
	y := s.nextInt()
	s.require(")")
	return &models.Door{Code: code, LocationID: locID, DoorPos: models.Position{X: x, Y: y}}
}

func parseNPC(s *scanner) *models.NPC {
	s.require("(")
	strategy := s.next()
	s.require(",")
	facing := parseDirection(s)
	s.require(")")
	return models.NewNPC(strategy, facing)
}

// WriteBoard renders the board in its text form. Players are ordered by
// username and locations by id, so serializing a parsed board reproduces
// the original text byte for byte.
func WriteBoard(b *models.Board) string {
	var out strings.Builder
	for _, name := range b.Usernames() {
		out.WriteString(b.Player(name).SaveRecord())
		out.WriteString("\n")
	}
	for _, id := range b.LocationIDs() {
		writeLocation(&out, b.Location(id))
	}
	return out.String()
}

func writeLocation(out *strings.Builder, loc *models.Location) {
	h := len(loc.Tiles)
	w := 0
	if h > 0 {
		w = len(loc.Tiles[0])
	}
	out.WriteString("Location{\n")
	fmt.Fprintf(out, "id: %d\n", loc.ID)
	fmt.Fprintf(out, "name: %s\n", loc.Name)
	fmt.Fprintf(out, "w: %d\n", w)
	fmt.Fprintf(out, "h: %d\n", h)
	for _, d := range [4]models.Direction{models.North, models.East, models.West, models.South} {
		if id, ok := loc.Neighbors[d]; ok {
			fmt.Fprintf(out, "%s: %d\n", d, id)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.WriteString("(")
			out.WriteString(loc.Tiles[y][x].Token())
			out.WriteString(")")
		}
		out.WriteString("\n")
	}
	out.WriteString("}\n")
}
