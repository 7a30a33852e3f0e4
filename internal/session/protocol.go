package session

import (
	"encoding/json"

	"github.com/inamate/imagedit/internal/editor"
	"github.com/inamate/imagedit/internal/scene"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypeCmdExecute     = "cmd.execute"
	TypeCmdUndo        = "cmd.undo"
	TypeCmdRedo        = "cmd.redo"
	TypeSceneGet       = "scene.get"
	TypePresenceUpdate = "presence.update"

	// Server to client
	TypeWelcome        = "welcome"
	TypeCmdResult      = "cmd.result"
	TypeCmdError       = "cmd.error"
	TypeHistoryChanged = "history.changed"
	TypeSceneSync      = "scene.sync"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"
)

// ExecutePayload names a registered operation and its arguments.
type ExecutePayload struct {
	Name string `json:"name"`
	Args []any  `json:"args"`
}

// ResultPayload answers a cmd.* request. Kind is execute, undo or redo.
type ResultPayload struct {
	Kind   string         `json:"kind"`
	Name   string         `json:"name"`
	Result any            `json:"result,omitempty"`
	Hist   editor.History `json:"history"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SceneSyncPayload struct {
	Document scene.Document `json:"document"`
	History  editor.History `json:"history"`
}

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

func newMessage(typ string, payload any) *Message {
	msg := &Message{Type: typ}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	return msg
}

func errorMessage(requestID string, err error) *Message {
	msg := newMessage(TypeCmdError, ErrorPayload{Code: editor.ErrorCode(err), Message: err.Error()})
	msg.RequestID = requestID
	return msg
}
