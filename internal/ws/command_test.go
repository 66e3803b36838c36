package ws

import (
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			"join room",
			`{"method":"joinRoom","room_id":7,"token":"abc"}`,
			JoinRoomCmd{RoomID: 7, Token: "abc"},
		},
		{
			"leave room",
			`{"method":"leaveRoom","room_id":7}`,
			LeaveRoomCmd{RoomID: 7},
		},
		{
			"send message",
			`{"method":"sendMessage","room_id":7,"text":"hi"}`,
			SendMessageCmd{RoomID: 7, Text: "hi"},
		},
		{
			"typing",
			`{"method":"typing","room_id":7,"is_typing":true}`,
			TypingCmd{RoomID: 7, IsTyping: true},
		},
		{
			"delete message",
			`{"method":"deleteMessage","room_id":7,"message_id":42}`,
			DeleteMessageCmd{RoomID: 7, MessageID: 42},
		},
		{
			"kick",
			`{"method":"kick","room_id":7,"target_connection_id":"c1","reason":"spam"}`,
			KickCmd{RoomID: 7, TargetID: "c1", Reason: "spam"},
		},
		{
			"kick long form alias",
			`{"method":"kickParticipant","room_id":7,"target_connection_id":"c1"}`,
			KickCmd{RoomID: 7, TargetID: "c1"},
		},
		{
			"join video room",
			`{"method":"joinVideoRoom","room_id":7,"token":"abc"}`,
			JoinVideoCmd{RoomID: 7, Token: "abc"},
		},
		{
			"offer",
			`{"method":"sendOffer","target_connection_id":"c1","payload":{"sdp":"x"}}`,
			RelayCmd{Kind: "offer", TargetID: "c1", Payload: []byte(`{"sdp":"x"}`)},
		},
		{
			"answer",
			`{"method":"sendAnswer","target_connection_id":"c1","payload":{}}`,
			RelayCmd{Kind: "answer", TargetID: "c1", Payload: []byte(`{}`)},
		},
		{
			"ice candidate",
			`{"method":"sendIceCandidate","target_connection_id":"c1","payload":{}}`,
			RelayCmd{Kind: "ice", TargetID: "c1", Payload: []byte(`{}`)},
		},
		{
			"media state",
			`{"method":"updateMediaState","room_id":7,"audio_enabled":true,"video_enabled":false}`,
			MediaStateCmd{RoomID: 7, AudioEnabled: true},
		},
		{
			"start recording",
			`{"method":"startRecording","room_id":7}`,
			StartRecordingCmd{RoomID: 7},
		},
		{
			"stop recording",
			`{"method":"stopRecording","room_id":7}`,
			StopRecordingCmd{RoomID: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCommand() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseCommand_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown method", `{"method":"shutdownServer"}`},
		{"empty method", `{"room_id":7}`},
		{"not json", `joinRoom 7`},
		{"empty frame", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCommand([]byte(tt.raw)); err == nil {
				t.Error("ParseCommand() expected error")
			}
		})
	}
}
