package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeAddBot       MessageType = "add_bot"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomState   MessageType = "room_state"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Wire error codes sent in ErrorData.Code.
const (
	CodeRoomNotFound       = "room_not_found"
	CodeRoomNotOpen        = "room_not_open"
	CodeRoomFull           = "room_full"
	CodeInvalidMessage     = "invalid_message"
	CodeUnknownMessageType = "unknown_message_type"
	CodeNotInRoom          = "not_in_room"
	CodeAlreadyInRoom      = "already_in_room"
	CodeUnknownBotPreset   = "unknown_bot_preset"
	CodeInternal           = "internal_error"
)
