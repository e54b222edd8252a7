package models

import "fmt"

// Item is a game object a player can carry in their inventory.
type Item interface {
	GameObject
	Name() string
	Description() string
	// Usable reports whether the item responds to the use command.
	Usable() bool
}

// InventoryLimit is the number of items a player can carry.
const InventoryLimit = 10

// KeyLimit is the number of keys a player can hold at once, regardless of
// remaining inventory space.
const KeyLimit = 3

type Banana struct{}

func (Banana) Token() string { return "Banana" }
func (Banana) Name() string  { return "Banana" }
func (Banana) Description() string {
	return "A sentient being taking form in a material object, behold the force of thy Harambe!"
}
func (Banana) Usable() bool { return false }

// Key opens the single chest sharing its code.
type Key struct {
	ItemName string
	Code     int
}

func (k Key) Token() string { return fmt.Sprintf("Key(%s,%d)", k.ItemName, k.Code) }
func (k Key) Name() string  { return k.ItemName }
func (Key) Description() string {
	return "A magical key, it may open something??"
}
func (Key) Usable() bool { return false }

type FloatingDevice struct{}

func (FloatingDevice) Token() string { return "FloatingDevice" }
func (FloatingDevice) Name() string  { return "Floating Device" }
func (FloatingDevice) Description() string {
	return "A floating device, perhaps this will help you swim.. not like you're a penguin or anything"
}
func (FloatingDevice) Usable() bool { return true }

type Teleporter struct{}

func (Teleporter) Token() string { return "Teleporter" }
func (Teleporter) Name() string  { return "Teleporter" }
func (Teleporter) Description() string {
	return "A magical orb eminating with power, rumour has it this will teleport you somewhere.."
}
func (Teleporter) Usable() bool { return true }

type Fish struct{}

func (Fish) Token() string { return "Fish" }
func (Fish) Name() string  { return "Fish" }
func (Fish) Description() string {
	return "Wet and slimey, the temptation to eat is high, maybe somebody else would like it more"
}
func (Fish) Usable() bool { return false }

type FishingRod struct{}

func (FishingRod) Token() string { return "FishingRod" }
func (FishingRod) Name() string  { return "Fishing Rod" }
func (FishingRod) Description() string {
	return "Not exactly new, however if we're lucky the fish might not be on their fins today"
}
func (FishingRod) Usable() bool { return true }

// Chest holds at most one item behind a coded lock. Codes are paired with
// key codes at world load.
type Chest struct {
	Code     int
	Contents Item
}

func (c *Chest) Token() string {
	if c.Contents != nil {
		return fmt.Sprintf("Chest(%d,%s)", c.Code, c.Contents.Token())
	}
	return fmt.Sprintf("Chest(%d)", c.Code)
}

// Door teleports a player to a fixed square in another location. The far
// side carries a DoorOut tile pointing back; the pairing is maintained by
// map convention, not validated here.
type Door struct {
	Code       int
	LocationID int
	DoorPos    Position
}

func (d *Door) Token() string {
	return fmt.Sprintf("Door(%d,%d,%d,%d)", d.Code, d.LocationID, d.DoorPos.X, d.DoorPos.Y)
}
