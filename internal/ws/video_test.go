package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/service"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
)

type videoFixture struct {
	hub    *VideoCoordinator
	store  *store.Memory
	tokens *token.Service
	roomX  uint
	roomY  uint
}

func newVideoFixture(t *testing.T) *videoFixture {
	t.Helper()
	st := store.NewMemory()
	roomX := &models.Room{Name: "X", PasswordHash: "h", CreatorID: 1, CreatorName: "Alice", MaxParticipants: 10, AllowRecording: true}
	roomY := &models.Room{Name: "Y", PasswordHash: "h", CreatorID: 3, CreatorName: "Cara", MaxParticipants: 10}
	for _, r := range []*models.Room{roomX, roomY} {
		if err := st.CreateRoom(r); err != nil {
			t.Fatalf("CreateRoom() error = %v", err)
		}
	}
	tokens := token.NewService("test-room-secret", time.Hour)
	return &videoFixture{
		hub:    NewVideoCoordinator(st, tokens, service.NewRecordingService(st)),
		store:  st,
		tokens: tokens,
		roomX:  roomX.ID,
		roomY:  roomY.ID,
	}
}

func (f *videoFixture) join(t *testing.T, c *Client, roomID uint, role string) {
	t.Helper()
	tok, err := f.tokens.Issue(roomID, c.identity.UserID, c.identity.DisplayName, role)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	f.hub.HandleCommand(c, JoinVideoCmd{RoomID: roomID, Token: tok})
}

func TestVideoJoin_RosterExchange(t *testing.T) {
	f := newVideoFixture(t)
	a := newTestClient(f.hub, 1, "Alice")

	f.join(t, a, f.roomX, models.RoleModerator)
	evt := nextEvent(t, a)
	if evt["event"] != EvtExistingParts {
		t.Fatalf("event = %v, want ExistingParticipants", evt["event"])
	}
	if parts := evt["participants"].([]interface{}); len(parts) != 0 {
		t.Errorf("first joiner roster len = %d, want 0", len(parts))
	}

	b := newTestClient(f.hub, 2, "Bob")
	f.join(t, b, f.roomX, models.RoleParticipant)

	// The newcomer sees the existing peer so it can start offering.
	evt = nextEvent(t, b)
	parts := evt["participants"].([]interface{})
	if len(parts) != 1 {
		t.Fatalf("roster len = %d, want 1", len(parts))
	}
	peer := parts[0].(map[string]interface{})
	if peer["connection_id"] != a.id || peer["user_id"].(float64) != 1 {
		t.Errorf("roster peer = %v", peer)
	}

	// The existing peer learns about the newcomer.
	evt = nextEvent(t, a)
	if evt["event"] != EvtUserJoinedCall {
		t.Fatalf("event = %v, want UserJoinedCall", evt["event"])
	}
	joined := evt["participant"].(map[string]interface{})
	if joined["connection_id"] != b.id {
		t.Errorf("UserJoinedCall participant = %v", joined)
	}
}

func TestVideoRelay_SameRoomOnly(t *testing.T) {
	f := newVideoFixture(t)
	a := newTestClient(f.hub, 1, "Alice")
	b := newTestClient(f.hub, 2, "Bob")
	c := newTestClient(f.hub, 3, "Cara")
	f.join(t, a, f.roomX, models.RoleModerator)
	f.join(t, b, f.roomX, models.RoleParticipant)
	f.join(t, c, f.roomY, models.RoleModerator)
	drain(a)
	drain(b)
	drain(c)

	payload := json.RawMessage(`{"sdp":"v=0..."}`)

	t.Run("same room relays", func(t *testing.T) {
		f.hub.HandleCommand(a, RelayCmd{Kind: "offer", TargetID: b.id, Payload: payload})
		evt := nextEvent(t, b)
		if evt["event"] != EvtReceiveOffer || evt["from_connection_id"] != a.id {
			t.Errorf("event = %v", evt)
		}
		noEvent(t, a)
	})

	t.Run("cross room drops silently", func(t *testing.T) {
		f.hub.HandleCommand(a, RelayCmd{Kind: "ice", TargetID: c.id, Payload: payload})
		noEvent(t, c)
		noEvent(t, a) // no error either, topology must not leak
	})

	t.Run("unknown target drops silently", func(t *testing.T) {
		f.hub.HandleCommand(a, RelayCmd{Kind: "answer", TargetID: "nope", Payload: payload})
		noEvent(t, a)
	})

	t.Run("non-member sender drops silently", func(t *testing.T) {
		stranger := newTestClient(f.hub, 9, "Mallory")
		f.hub.HandleCommand(stranger, RelayCmd{Kind: "offer", TargetID: b.id, Payload: payload})
		noEvent(t, b)
		noEvent(t, stranger)
	})
}

func TestVideoRelay_EventKinds(t *testing.T) {
	f := newVideoFixture(t)
	a := newTestClient(f.hub, 1, "Alice")
	b := newTestClient(f.hub, 2, "Bob")
	f.join(t, a, f.roomX, models.RoleModerator)
	f.join(t, b, f.roomX, models.RoleParticipant)
	drain(a)
	drain(b)

	kinds := map[string]string{
		"offer":  EvtReceiveOffer,
		"answer": EvtReceiveAnswer,
		"ice":    EvtReceiveIce,
	}
	for kind, want := range kinds {
		f.hub.HandleCommand(a, RelayCmd{Kind: kind, TargetID: b.id, Payload: json.RawMessage(`{}`)})
		evt := nextEvent(t, b)
		if evt["event"] != want {
			t.Errorf("kind %q event = %v, want %v", kind, evt["event"], want)
		}
	}
}

func TestVideoRelay_StopsAfterKick(t *testing.T) {
	f := newVideoFixture(t)
	mod := newTestClient(f.hub, 1, "Alice")
	target := newTestClient(f.hub, 2, "Bob")
	f.join(t, mod, f.roomX, models.RoleModerator)
	f.join(t, target, f.roomX, models.RoleParticipant)
	drain(mod)
	drain(target)

	f.hub.HandleCommand(mod, KickCmd{RoomID: f.roomX, TargetID: target.id, Reason: "bye"})
	evt := nextEvent(t, target)
	if evt["event"] != EvtKicked {
		t.Fatalf("event = %v, want Kicked", evt["event"])
	}
	drain(mod)

	// Membership is re-checked on every relay, the kicked peer is done.
	f.hub.HandleCommand(target, RelayCmd{Kind: "ice", TargetID: mod.id, Payload: json.RawMessage(`{}`)})
	noEvent(t, mod)

	// And nobody can relay to the kicked peer either.
	f.hub.HandleCommand(mod, RelayCmd{Kind: "offer", TargetID: target.id, Payload: json.RawMessage(`{}`)})
	noEvent(t, target)
}

func TestVideoMediaState(t *testing.T) {
	f := newVideoFixture(t)
	a := newTestClient(f.hub, 1, "Alice")
	b := newTestClient(f.hub, 2, "Bob")
	f.join(t, a, f.roomX, models.RoleModerator)
	f.join(t, b, f.roomX, models.RoleParticipant)
	drain(a)
	drain(b)

	f.hub.HandleCommand(a, MediaStateCmd{RoomID: f.roomX, AudioEnabled: false, VideoEnabled: true})

	for _, c := range []*Client{a, b} {
		evt := nextEvent(t, c)
		if evt["event"] != EvtMediaStateChanged {
			t.Fatalf("event = %v, want ParticipantMediaStateChanged", evt["event"])
		}
		if evt["audio_enabled"] != false || evt["video_enabled"] != true {
			t.Errorf("event = %v", evt)
		}
		if evt["connection_id"] != a.id {
			t.Errorf("connection_id = %v, want %v", evt["connection_id"], a.id)
		}
	}

	// Later joiners see the updated state in the roster.
	c := newTestClient(f.hub, 3, "Cara")
	tok, _ := f.tokens.Issue(f.roomX, 3, "Cara", models.RoleParticipant)
	f.hub.HandleCommand(c, JoinVideoCmd{RoomID: f.roomX, Token: tok})
	evt := nextEvent(t, c)
	for _, p := range evt["participants"].([]interface{}) {
		part := p.(map[string]interface{})
		if part["connection_id"] == a.id && part["audio_enabled"] != false {
			t.Errorf("roster must reflect media state: %v", part)
		}
	}
}

func TestVideoRecording_ModeratorControl(t *testing.T) {
	f := newVideoFixture(t)
	mod := newTestClient(f.hub, 1, "Alice")
	part := newTestClient(f.hub, 2, "Bob")
	f.join(t, mod, f.roomX, models.RoleModerator)
	f.join(t, part, f.roomX, models.RoleParticipant)
	drain(mod)
	drain(part)

	t.Run("participant cannot start", func(t *testing.T) {
		f.hub.HandleCommand(part, StartRecordingCmd{RoomID: f.roomX})
		evt := nextEvent(t, part)
		if evt["event"] != EvtError || evt["code"] != CodeForbidden {
			t.Errorf("event = %v, want Error/Forbidden", evt)
		}
	})

	t.Run("moderator starts and stops", func(t *testing.T) {
		f.hub.HandleCommand(mod, StartRecordingCmd{RoomID: f.roomX})
		for _, c := range []*Client{mod, part} {
			evt := nextEvent(t, c)
			if evt["event"] != EvtRecordingStarted {
				t.Fatalf("event = %v, want RecordingStarted", evt["event"])
			}
			if evt["session_id"] == "" {
				t.Error("RecordingStarted must carry the session id")
			}
		}

		// Second start while one is active fails.
		f.hub.HandleCommand(mod, StartRecordingCmd{RoomID: f.roomX})
		evt := nextEvent(t, mod)
		if evt["event"] != EvtError || evt["code"] != CodeRecording {
			t.Errorf("event = %v, want Error/RecordingUnavailable", evt)
		}

		f.hub.HandleCommand(mod, StopRecordingCmd{RoomID: f.roomX})
		for _, c := range []*Client{mod, part} {
			evt := nextEvent(t, c)
			if evt["event"] != EvtRecordingStopped {
				t.Fatalf("event = %v, want RecordingStopped", evt["event"])
			}
		}
	})

	t.Run("recording disabled room", func(t *testing.T) {
		modY := newTestClient(f.hub, 3, "Cara")
		f.join(t, modY, f.roomY, models.RoleModerator)
		drain(modY)
		f.hub.HandleCommand(modY, StartRecordingCmd{RoomID: f.roomY})
		evt := nextEvent(t, modY)
		if evt["event"] != EvtError || evt["code"] != CodeForbidden {
			t.Errorf("event = %v, want Error/Forbidden", evt)
		}
	})
}

func TestVideoLeave_Broadcast(t *testing.T) {
	f := newVideoFixture(t)
	a := newTestClient(f.hub, 1, "Alice")
	b := newTestClient(f.hub, 2, "Bob")
	f.join(t, a, f.roomX, models.RoleModerator)
	f.join(t, b, f.roomX, models.RoleParticipant)
	drain(a)
	drain(b)

	f.hub.HandleCommand(b, LeaveVideoCmd{RoomID: f.roomX})
	evt := nextEvent(t, a)
	if evt["event"] != EvtUserLeftCall {
		t.Fatalf("event = %v, want UserLeftCall", evt["event"])
	}
	part := evt["participant"].(map[string]interface{})
	if part["connection_id"] != b.id {
		t.Errorf("participant = %v", part)
	}

	f.hub.HandleDisconnect(a)
	if f.hub.Online(f.roomX) != 0 {
		t.Errorf("Online() = %d, want 0", f.hub.Online(f.roomX))
	}
}
