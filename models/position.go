package models

import "fmt"

// Position is a pair of integer grid coordinates within a location.
// Y grows southward, matching the row order of the board grammar.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Step returns the position one tile away in direction d.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Offset()
	return p.Add(dx, dy)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
