package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/dicepoker/internal/game"
	"github.com/lox/dicepoker/internal/roomcode"
)

// Connection represents a WebSocket connection to a client. A connection
// is bound to at most one room for its lifetime.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	id        string
	roomID    string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	registry  *Registry
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, id string, sendBuffer int, registry *Registry, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, sendBuffer),
		id:       id,
		logger:   logger.WithPrefix("conn").With("conn", id),
		ctx:      ctx,
		cancel:   cancel,
		registry: registry,
	}
}

// ID returns the player id assigned to this connection.
func (c *Connection) ID() string { return c.id }

// Done is closed once the connection has been closed.
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.cancel()
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking. A client
// that cannot keep up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	if c.ctx.Err() != nil {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// bind associates this connection with a room.
func (c *Connection) bind(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// Room returns the bound room code, or "".
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		if c.ctx.Err() != nil {
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "room", c.Room())

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := msg.Decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := msg.Decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeAddBot:
		var data AddBotData
		if err := msg.Decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse add bot data")
			return
		}
		c.handleRoomCommand(data.RoomID, func(roomID string) error {
			return c.registry.AddBot(c.id, roomID, data.Preset)
		})

	case MessageTypeStartGame:
		var data StartGameData
		if err := msg.Decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse start game data")
			return
		}
		c.handleRoomCommand(data.RoomID, func(roomID string) error {
			return c.registry.StartGame(c.id, roomID)
		})

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := msg.Decode(&data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse player action data")
			return
		}
		c.handleRoomCommand(data.RoomID, func(roomID string) error {
			return c.registry.PlayerAction(c.id, roomID, data.Action)
		})

	default:
		c.sendError(CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	if c.Room() != "" {
		c.sendFailure(ErrAlreadyInRoom)
		return
	}
	roomID, err := c.registry.CreateRoom(c, data.PlayerName)
	if roomID != "" {
		c.bind(roomID)
	}
	if err != nil {
		c.sendFailure(err)
	}
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	if c.Room() != "" {
		c.sendFailure(ErrAlreadyInRoom)
		return
	}
	roomID, err := c.registry.JoinRoom(c, data.RoomID, data.PlayerName)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.bind(roomID)
}

// handleRoomCommand runs a command against the bound room. A connection may
// only act on its own room; an omitted room id means the bound one.
func (c *Connection) handleRoomCommand(roomID string, run func(roomID string) error) {
	bound := c.Room()
	if bound == "" {
		c.sendFailure(ErrNotInRoom)
		return
	}
	if roomID == "" {
		roomID = bound
	}
	if roomcode.Normalize(roomID) != bound {
		c.sendFailure(ErrNotYourRoom)
		return
	}
	if err := run(bound); err != nil {
		c.sendFailure(err)
	}
}

// sendFailure reports err to the client unless it is a rejected command,
// which is dropped without a reply.
func (c *Connection) sendFailure(err error) {
	if errors.Is(err, game.ErrRejected) {
		c.logger.Debug("Command rejected", "error", err)
		return
	}
	c.sendError(errorCode(err), err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
