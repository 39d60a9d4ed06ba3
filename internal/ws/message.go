package ws

import "encoding/json"

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - client to server
const (
	TypeCreateRoom = "create-room"
	TypeJoinRoom   = "join-room"
	TypeLeaveRoom  = "leave-room"
	TypeStartGame  = "start-game"
	TypeMove       = "move"
	TypeRestart    = "restart"
	TypeManualEnd  = "manual-end"
)

// Message types - server to client
const (
	TypeRoomCreated      = "room-created"
	TypeRoomJoined       = "room-joined"
	TypeRoomInfo         = "room-info"
	TypeStateUpdate      = "state-update"
	TypePlayerEliminated = "player-eliminated"
	TypeGameEnd          = "game-end"
	TypeError            = "error"
)

// ErrorMessage is sent when a command is rejected.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Message: msg})
	return Message{Type: TypeError, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: data}, nil
}
