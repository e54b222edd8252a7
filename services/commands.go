package services

import (
	"strconv"
	"strings"

	"bananarealm/models"
)

// Verb is the first word of a client command line.
type Verb string

const (
	VerbLogin  Verb = "login"
	VerbMove   Verb = "move"
	VerbDrop   Verb = "drop"
	VerbUse    Verb = "use"
	VerbSiphon Verb = "siphon"
	VerbPickup Verb = "pickup"
	VerbClose  Verb = "close"
)

// Result is the outcome of applying a command. Outcomes are enumerated so
// nothing downstream ever has to compare notification text.
type Result int

const (
	// ResultOK: the command applied (possibly as a notified in-game
	// failure) and a snapshot was broadcast.
	ResultOK Result = iota
	// ResultFailed: the command was malformed or inapplicable and degraded
	// to a no-op.
	ResultFailed
	// ResultFailLogin: the login was rejected.
	ResultFailLogin
	// ResultEndgame: the acting player just won.
	ResultEndgame
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFailed:
		return "failed"
	case ResultFailLogin:
		return "fail login"
	case ResultEndgame:
		return "endgame"
	}
	return "unknown"
}

// Command is one parsed client command line.
type Command struct {
	Verb     Verb
	Username string
	Dir      models.Direction
	Index    int
}

// ParseCommand decodes a text command line: verb plus space-separated
// arguments. Returns false for anything malformed.
func ParseCommand(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	cmd := Command{Verb: Verb(fields[0])}
	switch cmd.Verb {
	case VerbClose:
		return cmd, len(fields) == 1
	case VerbLogin, VerbPickup:
		if len(fields) != 2 {
			return Command{}, false
		}
		cmd.Username = fields[1]
		return cmd, true
	case VerbMove:
		if len(fields) != 3 {
			return Command{}, false
		}
		cmd.Username = fields[1]
		d, ok := models.ParseDirection(fields[2])
		if !ok {
			return Command{}, false
		}
		cmd.Dir = d
		return cmd, true
	case VerbDrop, VerbUse, VerbSiphon:
		if len(fields) != 3 {
			return Command{}, false
		}
		cmd.Username = fields[1]
		idx, err := strconv.Atoi(fields[2])
		if err != nil {
			return Command{}, false
		}
		cmd.Index = idx
		return cmd, true
	}
	return Command{}, false
}
