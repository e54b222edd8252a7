package models

import (
	"fmt"
	"strings"
)

// Player is the server-side record for one username. It is created on first
// login and never deleted, so a user resumes the same state after
// reconnecting. Position and location are mutated only by the rule engine.
type Player struct {
	Username   string
	LocationID int
	Pos        Position
	Facing     Direction
	Inventory  []Item
	Bananas    int
	Floating   bool
	LoggedIn   bool
}

// NewPlayer creates a player at the given spawn square, facing south.
func NewPlayer(username string, locationID int, pos Position) *Player {
	return &Player{
		Username:   username,
		LocationID: locationID,
		Pos:        pos,
		Facing:     South,
	}
}

func (p *Player) Token() string {
	return fmt.Sprintf("Player(%s)", p.Username)
}

// InventoryFull reports whether the player cannot carry another item.
func (p *Player) InventoryFull() bool {
	return len(p.Inventory) >= InventoryLimit
}

// KeyCount counts the keys currently carried.
func (p *Player) KeyCount() int {
	n := 0
	for _, it := range p.Inventory {
		if _, ok := it.(Key); ok {
			n++
		}
	}
	return n
}

// PickUp appends an item to the inventory. The caller checks capacity and
// the key limit first.
func (p *Player) PickUp(item Item) {
	p.Inventory = append(p.Inventory, item)
}

// RemoveItem drops the item at index i from the ordered inventory.
// Returns false if the index is out of range.
func (p *Player) RemoveItem(i int) bool {
	if i < 0 || i >= len(p.Inventory) {
		return false
	}
	p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
	return true
}

// ItemAt returns the inventory item at index i.
func (p *Player) ItemAt(i int) (Item, bool) {
	if i < 0 || i >= len(p.Inventory) {
		return nil, false
	}
	return p.Inventory[i], true
}

// SaveRecord renders the player record in the board grammar.
func (p *Player) SaveRecord() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player\n{\n%s,%d,%d,%d,%d,%s,%t,%t,Inventory(",
		p.Username, p.Bananas, p.LocationID, p.Pos.X, p.Pos.Y, p.Facing, p.LoggedIn, p.Floating)
	for _, it := range p.Inventory {
		b.WriteString(it.Token())
		b.WriteString(",")
	}
	b.WriteString(")\n}")
	return b.String()
}
