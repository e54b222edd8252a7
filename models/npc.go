package models

import (
	"fmt"
	"math/rand"
)

// Strategy supplies the next step direction for an NPC. The engine's seeded
// random source is passed through so tests can force outcomes.
type Strategy interface {
	NextDirection(npc *NPC, rng *rand.Rand) Direction
}

// CircleStrategy walks a clockwise loop: each step turns a quarter turn
// clockwise from the current facing.
type CircleStrategy struct{}

func (CircleStrategy) NextDirection(npc *NPC, _ *rand.Rand) Direction {
	return npc.Facing.Clockwise()
}

// RandomStrategy picks a uniformly random cardinal direction each step.
type RandomStrategy struct{}

func (RandomStrategy) NextDirection(_ *NPC, rng *rand.Rand) Direction {
	return Directions[rng.Intn(len(Directions))]
}

// NPC is a non-player character that wanders the board under its movement
// strategy and trades a banana for a fish during the day.
type NPC struct {
	StrategyName string
	Facing       Direction
	strategy     Strategy
}

// NewNPC builds an NPC from its strategy selector as it appears in the
// board grammar ("circle" or "random"). Unknown selectors fall back to the
// circle strategy.
func NewNPC(strategyName string, facing Direction) *NPC {
	n := &NPC{StrategyName: strategyName, Facing: facing}
	switch strategyName {
	case "random":
		n.strategy = RandomStrategy{}
	default:
		n.strategy = CircleStrategy{}
	}
	return n
}

// NextDirection consults the movement strategy.
func (n *NPC) NextDirection(rng *rand.Rand) Direction {
	return n.strategy.NextDirection(n, rng)
}

func (n *NPC) Token() string {
	return fmt.Sprintf("NPC(%s,%s)", n.StrategyName, n.Facing)
}
