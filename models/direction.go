package models

import "strings"

// Direction is one of the four cardinal directions. Diagonals are not
// addressable anywhere in the world model.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists all cardinal directions in clockwise order. Traversals
// that must be deterministic iterate this slice rather than a map.
var Directions = [4]Direction{North, East, South, West}

var directionNames = [4]string{"NORTH", "EAST", "SOUTH", "WEST"}

func (d Direction) String() string {
	return directionNames[d]
}

// ParseDirection reads a direction name, case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "NORTH":
		return North, true
	case "EAST":
		return East, true
	case "SOUTH":
		return South, true
	case "WEST":
		return West, true
	}
	return North, false
}

// Clockwise returns the direction one quarter turn clockwise.
func (d Direction) Clockwise() Direction {
	return (d + 1) % 4
}

// CounterClockwise returns the direction one quarter turn counter-clockwise.
func (d Direction) CounterClockwise() Direction {
	return (d + 3) % 4
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// RelativeTo rotates d one quarter turn clockwise for each quarter turn of
// the viewing direction, yielding the direction as seen by the viewer.
func (d Direction) RelativeTo(viewing Direction) Direction {
	return (d + viewing) % 4
}

// CounterRelativeTo is the inverse rotation of RelativeTo.
func (d Direction) CounterRelativeTo(viewing Direction) Direction {
	return (d + 4 - viewing) % 4
}

// Offset returns the unit coordinate step for d. North is (0,-1) because Y
// grows southward.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}
