package ws

import "encoding/json"

// Server→client event names are the wire contract shared with the
// frontend clients.
const (
	EvtReceiveMessage    = "ReceiveMessage"
	EvtHistory           = "History"
	EvtUserJoined        = "UserJoined"
	EvtUserLeft          = "UserLeft"
	EvtKicked            = "Kicked"
	EvtMessageDeleted    = "MessageDeleted"
	EvtTyping            = "Typing"
	EvtError             = "Error"
	EvtExistingParts     = "ExistingParticipants"
	EvtUserJoinedCall    = "UserJoinedCall"
	EvtUserLeftCall      = "UserLeftCall"
	EvtReceiveOffer      = "ReceiveOffer"
	EvtReceiveAnswer     = "ReceiveAnswer"
	EvtReceiveIce        = "ReceiveIceCandidate"
	EvtMediaStateChanged = "ParticipantMediaStateChanged"
	EvtRecordingStarted  = "RecordingStarted"
	EvtRecordingStopped  = "RecordingStopped"
)

// Error codes raised to the invoking connection only.
const (
	CodeUnauthorized = "Unauthorized"
	CodeForbidden    = "Forbidden"
	CodeRoomNotFound = "RoomNotFound"
	CodeRoomFull     = "RoomFull"
	CodeRecording    = "RecordingUnavailable"
)

type MessageEvent struct {
	Event      string `json:"event"`
	ID         uint   `json:"id"`
	RoomID     uint   `json:"room_id"`
	SenderID   uint   `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"` // ISO 8601
}

type HistoryEvent struct {
	Event    string         `json:"event"`
	RoomID   uint           `json:"room_id"`
	Messages []MessageEvent `json:"messages"`
}

type PresenceEvent struct {
	Event       string `json:"event"`
	RoomID      uint   `json:"room_id"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Online      int    `json:"online"`
}

type KickedEvent struct {
	Event  string `json:"event"`
	RoomID uint   `json:"room_id"`
	Reason string `json:"reason"`
}

type MessageDeletedEvent struct {
	Event     string `json:"event"`
	RoomID    uint   `json:"room_id"`
	MessageID uint   `json:"message_id"`
}

type TypingEvent struct {
	Event       string `json:"event"`
	RoomID      uint   `json:"room_id"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsTyping    bool   `json:"is_typing"`
}

type ErrorEvent struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Participant struct {
	ConnectionID string `json:"connection_id"`
	UserID       uint   `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	AudioEnabled bool   `json:"audio_enabled"`
	VideoEnabled bool   `json:"video_enabled"`
}

type RosterEvent struct {
	Event        string        `json:"event"`
	RoomID       uint          `json:"room_id"`
	Participants []Participant `json:"participants"`
}

type CallPresenceEvent struct {
	Event       string      `json:"event"`
	RoomID      uint        `json:"room_id"`
	Participant Participant `json:"participant"`
}

// SignalEvent carries an opaque WebRTC payload between two verified
// same-room peers. The payload is never inspected.
type SignalEvent struct {
	Event   string          `json:"event"`
	From    string          `json:"from_connection_id"`
	Payload json.RawMessage `json:"payload"`
}

type MediaStateEvent struct {
	Event        string `json:"event"`
	RoomID       uint   `json:"room_id"`
	ConnectionID string `json:"connection_id"`
	UserID       uint   `json:"user_id"`
	AudioEnabled bool   `json:"audio_enabled"`
	VideoEnabled bool   `json:"video_enabled"`
}

type RecordingEvent struct {
	Event     string `json:"event"`
	RoomID    uint   `json:"room_id"`
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
}

func errorEvent(code, msg string) ErrorEvent {
	return ErrorEvent{Event: EvtError, Code: code, Message: msg}
}
