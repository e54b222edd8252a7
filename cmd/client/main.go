package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"bananarealm/client"
	"bananarealm/messages"
	"bananarealm/models"
)

func main() {
	addr := flag.String("addr", "ws://localhost:4518/ws", "server websocket URL")
	username := flag.String("user", "", "username to log in as")
	flag.Parse()
	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: client -user <name> [-addr ws://host:port/ws]")
		os.Exit(1)
	}

	conn, err := client.Dial(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctrl := client.NewController(*username, conn)
	if err := ctrl.Login(); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			pkt, err := conn.ReadPacket()
			if err != nil {
				return
			}
			printPacket(ctrl, pkt)
		}
	}()

	go repl(ctrl)
	<-done
}

func printPacket(ctrl *client.Controller, pkt messages.Packet) {
	switch pkt.Type {
	case messages.PacketBoard:
		if err := ctrl.Apply(pkt); err != nil {
			fmt.Printf("bad snapshot: %v\n", err)
			return
		}
		if p := ctrl.Player(); p != nil {
			fmt.Printf("[t=%d] at location %d %s facing %s, %d banana(s), %d item(s)\n",
				pkt.Time, p.LocationID, p.Pos, p.Facing, p.Bananas, len(p.Inventory))
		}
	case messages.PacketTime:
		_ = ctrl.Apply(pkt)
	case messages.PacketString:
		fmt.Println(pkt.Message)
	case messages.PacketPopup, messages.PacketPopupOne, messages.PacketPopupBarOne:
		fmt.Println(pkt.Message)
	}
}

// repl reads user commands from stdin until EOF.
func repl(ctrl *client.Controller) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if err := dispatch(ctrl, sc.Text()); err != nil {
			fmt.Println(err)
		}
	}
}

func dispatch(ctrl *client.Controller, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "move":
		if len(fields) != 2 {
			return fmt.Errorf("usage: move <north|east|south|west>")
		}
		d, ok := models.ParseDirection(fields[1])
		if !ok {
			return fmt.Errorf("unknown direction %q", fields[1])
		}
		return ctrl.Move(d)
	case "pickup":
		return ctrl.Pickup()
	case "drop", "use", "siphon":
		if len(fields) != 2 {
			return fmt.Errorf("usage: %s <inventory index>", fields[0])
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("bad index %q", fields[1])
		}
		switch fields[0] {
		case "drop":
			return ctrl.Drop(idx)
		case "use":
			return ctrl.Use(idx)
		default:
			return ctrl.Siphon(idx)
		}
	case "goto":
		if len(fields) != 4 {
			return fmt.Errorf("usage: goto <location id> <x> <y>")
		}
		locID, err1 := strconv.Atoi(fields[1])
		x, err2 := strconv.Atoi(fields[2])
		y, err3 := strconv.Atoi(fields[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return fmt.Errorf("goto arguments must be integers")
		}
		return ctrl.WalkTo(locID, models.Position{X: x, Y: y})
	case "stop":
		ctrl.CancelRoute()
		return nil
	case "close", "quit", "exit":
		return ctrl.Close()
	}
	return fmt.Errorf("unknown command %q", fields[0])
}
