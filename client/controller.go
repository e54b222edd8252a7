package client

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bananarealm/logging"
	"bananarealm/messages"
	"bananarealm/models"
	"bananarealm/pathfind"
	"bananarealm/persistence"
)

// StepInterval is the walking cadence of an automatic route.
const StepInterval = 400 * time.Millisecond

// Sender is the outbound command channel the controller drives.
type Sender interface {
	SendCommand(line string) error
}

// Controller holds a client's view of the world and issues commands for
// one username. Board snapshots from the server replace the local state
// wholesale; the controller never simulates rules itself. Routes computed
// by the pathfinder are walked step by step on a timer, and any manual
// move cancels the remaining route.
type Controller struct {
	username string
	sender   Sender

	mu    sync.Mutex
	board *models.Board
	time  int
	route []pathfind.Step
	walk  *time.Ticker
	stop  chan struct{}
}

func NewController(username string, sender Sender) *Controller {
	return &Controller{username: username, sender: sender}
}

// Apply folds one server packet into the local state. Unknown packet types
// are ignored.
func (c *Controller) Apply(pkt messages.Packet) error {
	switch pkt.Type {
	case messages.PacketBoard:
		b, err := persistence.ParseBoard(pkt.Board)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.board = b
		c.time = pkt.Time
		c.mu.Unlock()
	case messages.PacketTime:
		c.mu.Lock()
		c.time = pkt.Time
		c.mu.Unlock()
	}
	return nil
}

// Time returns the last tick count heard from the server.
func (c *Controller) Time() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.time
}

// Player returns this client's record from the latest snapshot, or nil
// before the first snapshot arrives.
func (c *Controller) Player() *models.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.board == nil {
		return nil
	}
	return c.board.Player(c.username)
}

// Login sends the login handshake line.
func (c *Controller) Login() error {
	return c.sender.SendCommand("login " + c.username)
}

// Move walks one step manually, cancelling any route in progress.
func (c *Controller) Move(d models.Direction) error {
	c.CancelRoute()
	return c.sendMove(d)
}

func (c *Controller) Pickup() error {
	return c.sender.SendCommand("pickup " + c.username)
}

func (c *Controller) Drop(idx int) error {
	return c.sender.SendCommand(fmt.Sprintf("drop %s %d", c.username, idx))
}

func (c *Controller) Use(idx int) error {
	return c.sender.SendCommand(fmt.Sprintf("use %s %d", c.username, idx))
}

func (c *Controller) Siphon(idx int) error {
	return c.sender.SendCommand(fmt.Sprintf("siphon %s %d", c.username, idx))
}

func (c *Controller) Close() error {
	return c.sender.SendCommand("close")
}

// WalkTo plans a route to a tile and starts walking it at StepInterval. A
// destination outside the local patch, or with no traversable route, is an
// error and leaves any current route untouched.
func (c *Controller) WalkTo(locID int, pos models.Position) error {
	c.mu.Lock()
	board := c.board
	var p *models.Player
	if board != nil {
		p = board.Player(c.username)
	}
	c.mu.Unlock()
	if p == nil {
		return errors.New("no board snapshot yet")
	}
	route := pathfind.FindRoute(board, p.LocationID, p.Pos, locID, pos, p.Floating)
	if len(route) == 0 {
		return errors.New("no route to destination")
	}
	c.CancelRoute()
	c.mu.Lock()
	c.route = route
	c.stop = make(chan struct{})
	c.walk = time.NewTicker(StepInterval)
	go c.walkRoute(c.walk, c.stop)
	c.mu.Unlock()
	return nil
}

// CancelRoute abandons the remaining route, if any.
func (c *Controller) CancelRoute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelRouteLocked()
}

func (c *Controller) cancelRouteLocked() {
	if c.stop != nil {
		close(c.stop)
		c.walk.Stop()
		c.stop = nil
		c.walk = nil
	}
	c.route = nil
}

// RouteRemaining reports how many steps of the current route are left.
func (c *Controller) RouteRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.route)
}

func (c *Controller) walkRoute(ticker *time.Ticker, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.Step() {
				return
			}
		}
	}
}

// Step consumes and sends the next route step. Returns false once the
// route is exhausted or cancelled.
func (c *Controller) Step() bool {
	c.mu.Lock()
	if len(c.route) == 0 {
		c.cancelRouteLocked()
		c.mu.Unlock()
		return false
	}
	step := c.route[0]
	c.route = c.route[1:]
	last := len(c.route) == 0
	c.mu.Unlock()

	if err := c.sendMove(step.Dir); err != nil {
		logging.L.Debugf("route step failed: %v", err)
		c.CancelRoute()
		return false
	}
	if last {
		c.CancelRoute()
		return false
	}
	return true
}

func (c *Controller) sendMove(d models.Direction) error {
	return c.sender.SendCommand(fmt.Sprintf("move %s %s", c.username, d))
}
