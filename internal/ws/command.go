package ws

import (
	"encoding/json"
	"errors"
)

// Command is the tagged-variant type for inbound frames. Frames carry a
// method field, unknown methods are dropped by the caller.
type Command interface{ isCommand() }

type JoinRoomCmd struct {
	RoomID uint
	Token  string
}

type LeaveRoomCmd struct {
	RoomID uint
}

type SendMessageCmd struct {
	RoomID uint
	Text   string
}

type TypingCmd struct {
	RoomID   uint
	IsTyping bool
}

// DeleteMessageCmd soft-deletes one message from the room log,
// moderator only.
type DeleteMessageCmd struct {
	RoomID    uint
	MessageID uint
}

type KickCmd struct {
	RoomID   uint
	TargetID string
	Reason   string
}

type JoinVideoCmd struct {
	RoomID uint
	Token  string
}

type LeaveVideoCmd struct {
	RoomID uint
}

// RelayCmd covers sendOffer, sendAnswer and sendIceCandidate, which only
// differ in the event delivered to the target.
type RelayCmd struct {
	Kind     string // "offer", "answer", "ice"
	TargetID string
	Payload  json.RawMessage
}

type MediaStateCmd struct {
	RoomID       uint
	AudioEnabled bool
	VideoEnabled bool
}

type StartRecordingCmd struct {
	RoomID uint
}

type StopRecordingCmd struct {
	RoomID uint
}

func (JoinRoomCmd) isCommand()       {}
func (LeaveRoomCmd) isCommand()      {}
func (SendMessageCmd) isCommand()    {}
func (TypingCmd) isCommand()         {}
func (DeleteMessageCmd) isCommand()  {}
func (KickCmd) isCommand()           {}
func (JoinVideoCmd) isCommand()      {}
func (LeaveVideoCmd) isCommand()     {}
func (RelayCmd) isCommand()          {}
func (MediaStateCmd) isCommand()     {}
func (StartRecordingCmd) isCommand() {}
func (StopRecordingCmd) isCommand()  {}

var errUnknownMethod = errors.New("unknown method")

type frame struct {
	Method       string          `json:"method"`
	RoomID       uint            `json:"room_id"`
	Token        string          `json:"token"`
	Text         string          `json:"text"`
	MessageID    uint            `json:"message_id"`
	IsTyping     bool            `json:"is_typing"`
	TargetID     string          `json:"target_connection_id"`
	Reason       string          `json:"reason"`
	Payload      json.RawMessage `json:"payload"`
	AudioEnabled bool            `json:"audio_enabled"`
	VideoEnabled bool            `json:"video_enabled"`
}

// ParseCommand turns a raw frame into its typed variant.
func ParseCommand(data []byte) (Command, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	switch f.Method {
	case "joinRoom":
		return JoinRoomCmd{RoomID: f.RoomID, Token: f.Token}, nil
	case "leaveRoom":
		return LeaveRoomCmd{RoomID: f.RoomID}, nil
	case "sendMessage":
		return SendMessageCmd{RoomID: f.RoomID, Text: f.Text}, nil
	case "typing":
		return TypingCmd{RoomID: f.RoomID, IsTyping: f.IsTyping}, nil
	case "deleteMessage":
		return DeleteMessageCmd{RoomID: f.RoomID, MessageID: f.MessageID}, nil
	case "kick", "kickParticipant":
		return KickCmd{RoomID: f.RoomID, TargetID: f.TargetID, Reason: f.Reason}, nil
	case "joinVideoRoom":
		return JoinVideoCmd{RoomID: f.RoomID, Token: f.Token}, nil
	case "leaveVideoRoom":
		return LeaveVideoCmd{RoomID: f.RoomID}, nil
	case "sendOffer":
		return RelayCmd{Kind: "offer", TargetID: f.TargetID, Payload: f.Payload}, nil
	case "sendAnswer":
		return RelayCmd{Kind: "answer", TargetID: f.TargetID, Payload: f.Payload}, nil
	case "sendIceCandidate":
		return RelayCmd{Kind: "ice", TargetID: f.TargetID, Payload: f.Payload}, nil
	case "updateMediaState":
		return MediaStateCmd{RoomID: f.RoomID, AudioEnabled: f.AudioEnabled, VideoEnabled: f.VideoEnabled}, nil
	case "startRecording":
		return StartRecordingCmd{RoomID: f.RoomID}, nil
	case "stopRecording":
		return StopRecordingCmd{RoomID: f.RoomID}, nil
	}
	return nil, errUnknownMethod
}
