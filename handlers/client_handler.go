package handlers

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bananarealm/logging"
	"bananarealm/messages"
	"bananarealm/network"
	"bananarealm/services"
)

// ClientHandler owns one client session: it dispatches inbound command
// lines, runs the login handshake, and tears the session down on
// disconnect.
type ClientHandler struct {
	id       string
	conn     *network.Connection
	engine   *services.Engine
	manager  *ClientManager
	username string
}

// HandleClient services one websocket for its whole lifetime. It returns
// when the socket drops, after deregistering the session and logging the
// player out.
func HandleClient(ws *websocket.Conn, engine *services.Engine, manager *ClientManager) {
	conn := network.NewConnection(ws)
	h := &ClientHandler{
		id:      uuid.NewString(),
		conn:    conn,
		engine:  engine,
		manager: manager,
	}
	manager.Add(h.id, conn)
	logging.L.Infow("client connected", "session", h.id)

	go conn.WritePump()
	conn.ReadPump(h)

	manager.Remove(h.id)
	if h.username != "" {
		engine.Logout(h.username)
	}
	logging.L.Infow("client disconnected", "session", h.id, "username", h.username)
}

// HandleLine applies one inbound command line. Session commands (login,
// close) are resolved here; gameplay commands pass to the engine once the
// session is authenticated.
func (h *ClientHandler) HandleLine(conn *network.Connection, line string) {
	cmd, ok := services.ParseCommand(line)
	if !ok {
		logging.L.Debugw("malformed command", "session", h.id, "line", line)
		return
	}
	switch cmd.Verb {
	case services.VerbClose:
		conn.Close()
	case services.VerbLogin:
		h.handleLogin(conn, cmd.Username)
	default:
		if h.username == "" || cmd.Username != h.username {
			logging.L.Debugw("command from unauthenticated session", "session", h.id, "line", line)
			return
		}
		if res := h.engine.HandleCommand(cmd); res == services.ResultFailed {
			logging.L.Debugw("command failed", "session", h.id, "verb", cmd.Verb)
		}
	}
}

// handleLogin runs the authentication handshake. The session slot is
// reserved atomically before the engine is consulted, so concurrent logins
// can never exceed the cap; a login the engine then rejects releases the
// slot. Any rejection sends the fail control packet and drops the
// connection.
func (h *ClientHandler) handleLogin(conn *network.Connection, username string) {
	if h.username != "" {
		return
	}
	if !h.manager.TryBind(h.id, username) {
		h.failLogin(conn, username, "session cap reached or username taken")
		return
	}
	if res := h.engine.Login(username); res != services.ResultOK {
		h.manager.Unbind(h.id)
		h.failLogin(conn, username, "rejected by engine")
		return
	}
	h.username = username
	logging.L.Infow("login accepted", "session", h.id, "username", username)
}

func (h *ClientHandler) failLogin(conn *network.Connection, username, reason string) {
	logging.L.Infow("login rejected", "session", h.id, "username", username, "reason", reason)
	_ = conn.Send(messages.String(messages.FailLogin))
	conn.Close()
}
