package server

import (
	"encoding/json"
	"time"

	"github.com/lox/dicepoker/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the payload into v. An absent payload decodes as an
// empty object.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Client → Server Messages

type CreateRoomData struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type AddBotData struct {
	RoomID string `json:"roomId,omitempty"`
	Preset string `json:"preset,omitempty"`
}

type StartGameData struct {
	RoomID string `json:"roomId,omitempty"`
}

type PlayerActionData struct {
	RoomID string `json:"roomId,omitempty"`
	Action string `json:"action"`
}

// Server → Client Messages

type RoomCreatedData struct {
	RoomID string      `json:"roomId"`
	Player game.Player `json:"player"`
}

// RoomState is a room as one viewer is allowed to see it.
type RoomState struct {
	game.State
	You string `json:"you"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomSummary is the listing entry served by /rooms.
type RoomSummary struct {
	ID        string     `json:"id"`
	Phase     game.Phase `json:"phase"`
	Players   int        `json:"players"`
	Humans    int        `json:"humans"`
	Connected int        `json:"connected"`
	Round     uint64     `json:"round"`
}
