package models

// GameObject is anything that can occupy a tile: a player, an NPC, an item
// lying on the ground, a chest, a door, or static scenery. The tile only
// records who sits on it; it never owns the object's lifetime.
type GameObject interface {
	// Token renders the object in the board grammar, e.g. "Tree" or
	// "Chest(3,Banana)".
	Token() string
}

// Scenery objects block movement and offer no interaction.

type Tree struct{}

func (Tree) Token() string { return "Tree" }

type Wall struct{}

func (Wall) Token() string { return "Wall" }

type Fence struct{}

func (Fence) Token() string { return "Fence" }

type Building struct{}

func (Building) Token() string { return "Building" }
