package messages

// PacketType tags a server→client packet.
type PacketType string

const (
	// PacketBoard carries a full serialized board snapshot.
	PacketBoard PacketType = "board"
	// PacketString carries a control message ("fail login", "endgame <user>").
	PacketString PacketType = "string"
	// PacketTime carries the 1 Hz server tick count.
	PacketTime PacketType = "time"
	// PacketPopup is a notification shown to every session.
	PacketPopup PacketType = "popup"
	// PacketPopupOne is a notification targeted at a single session.
	PacketPopupOne PacketType = "popupOne"
	// PacketPopupBarOne is a notification sent to every session except the
	// acting one.
	PacketPopupBarOne PacketType = "popupBarOne"
)

// Control messages carried by PacketString.
const (
	FailLogin     = "fail login"
	EndgamePrefix = "endgame "
)

// Packet is the single server→client message shape, sent as a JSON text
// frame. Unused fields are omitted.
type Packet struct {
	Type    PacketType `json:"type"`
	Board   string     `json:"board,omitempty"`
	Message string     `json:"message,omitempty"`
	Time    int        `json:"time,omitempty"`
}

// Board builds a board snapshot packet stamped with the server time.
func Board(board string, time int) Packet {
	return Packet{Type: PacketBoard, Board: board, Time: time}
}

// String builds a control packet.
func String(message string) Packet {
	return Packet{Type: PacketString, Message: message}
}

// Time builds a tick packet.
func Time(time int) Packet {
	return Packet{Type: PacketTime, Time: time}
}

// Popup builds a notification packet with the given targeting tag.
func Popup(t PacketType, message string) Packet {
	return Packet{Type: t, Message: message}
}
