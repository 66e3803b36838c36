package ws

import (
	"errors"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/metrics"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/service"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
)

// VideoCoordinator is a pure control-plane relay for WebRTC negotiation.
// Media payloads stay opaque, the only job here is verifying that both
// ends of a relay share a room right now, not just at join time.
type VideoCoordinator struct {
	rooms      *registry
	store      store.Store
	tokens     *token.Service
	recordings *service.RecordingService
}

func NewVideoCoordinator(st store.Store, tokens *token.Service, recordings *service.RecordingService) *VideoCoordinator {
	return &VideoCoordinator{
		rooms:      newRegistry(),
		store:      st,
		tokens:     tokens,
		recordings: recordings,
	}
}

func (h *VideoCoordinator) Online(roomID uint) int { return h.rooms.online(roomID) }

func (h *VideoCoordinator) HandleCommand(c *Client, cmd Command) {
	switch cmd := cmd.(type) {
	case JoinVideoCmd:
		h.join(c, cmd)
	case LeaveVideoCmd:
		h.leave(c, cmd.RoomID, true)
	case RelayCmd:
		h.relay(c, cmd)
	case MediaStateCmd:
		h.updateMediaState(c, cmd)
	case KickCmd:
		h.kick(c, cmd)
	case StartRecordingCmd:
		h.startRecording(c, cmd)
	case StopRecordingCmd:
		h.stopRecording(c, cmd)
	}
}

func (h *VideoCoordinator) HandleDisconnect(c *Client) {
	if roomID, _ := c.currentRoom(); roomID != 0 {
		h.leave(c, roomID, true)
	}
}

func (h *VideoCoordinator) join(c *Client, cmd JoinVideoCmd) {
	claims, err := h.tokens.Validate(cmd.Token)
	if err != nil {
		c.enqueue(errorEvent(CodeUnauthorized, "invalid or expired room token"))
		return
	}
	if claims.RoomID != cmd.RoomID || claims.UserID != c.identity.UserID {
		c.enqueue(errorEvent(CodeUnauthorized, "room token mismatch"))
		return
	}
	room, err := h.store.GetRoom(cmd.RoomID)
	if err != nil || !room.IsActive {
		c.enqueue(errorEvent(CodeRoomNotFound, "room not found"))
		return
	}

	if prev, _ := c.currentRoom(); prev != 0 {
		h.leave(c, prev, true)
	}

	me := &member{client: c, role: claims.Role, audioEnabled: true, videoEnabled: true}
	r, ok := h.rooms.admit(cmd.RoomID, c.id, me, room.MaxParticipants)
	if !ok {
		c.enqueue(errorEvent(CodeRoomFull, "room is full"))
		return
	}
	c.setRoom(cmd.RoomID, claims.Role)

	// The roster snapshot goes to the newcomer first so it can start
	// offering, then everyone else learns about the newcomer.
	existing := r.snapshot()
	parts := make([]Participant, 0, len(existing))
	peers := existing[:0]
	for _, m := range existing {
		if m.client == c {
			continue
		}
		parts = append(parts, participantInfo(m))
		peers = append(peers, m)
	}
	c.enqueue(RosterEvent{Event: EvtExistingParts, RoomID: cmd.RoomID, Participants: parts})
	for _, m := range peers {
		m.client.enqueue(CallPresenceEvent{
			Event:       EvtUserJoinedCall,
			RoomID:      cmd.RoomID,
			Participant: participantInfo(me),
		})
	}
}

func participantInfo(m *member) Participant {
	return Participant{
		ConnectionID: m.client.id,
		UserID:       m.client.identity.UserID,
		DisplayName:  m.client.identity.DisplayName,
		Role:         m.role,
		AudioEnabled: m.audioEnabled,
		VideoEnabled: m.videoEnabled,
	}
}

// relay forwards an opaque payload to the target connection, but only if
// sender and target are members of the same room at this very moment.
// Anything else is dropped without a reply so room topology never leaks.
func (h *VideoCoordinator) relay(c *Client, cmd RelayCmd) {
	roomID, _ := c.currentRoom()
	if roomID == 0 {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		return
	}
	target := r.get(cmd.TargetID)
	if target == nil {
		return
	}
	var event string
	switch cmd.Kind {
	case "offer":
		event = EvtReceiveOffer
	case "answer":
		event = EvtReceiveAnswer
	case "ice":
		event = EvtReceiveIce
	default:
		return
	}
	metrics.SignalRelaysTotal.WithLabelValues(cmd.Kind).Inc()
	target.client.enqueue(SignalEvent{Event: event, From: c.id, Payload: cmd.Payload})
}

func (h *VideoCoordinator) updateMediaState(c *Client, cmd MediaStateCmd) {
	roomID, _ := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.setMedia(c.id, cmd.AudioEnabled, cmd.VideoEnabled) {
		return
	}
	h.broadcast(r, MediaStateEvent{
		Event:        EvtMediaStateChanged,
		RoomID:       roomID,
		ConnectionID: c.id,
		UserID:       c.identity.UserID,
		AudioEnabled: cmd.AudioEnabled,
		VideoEnabled: cmd.VideoEnabled,
	})
}

func (h *VideoCoordinator) leave(c *Client, roomID uint, announce bool) {
	r := h.rooms.lookup(roomID)
	if r == nil {
		c.clearRoom()
		return
	}
	if r.remove(c.id) == nil {
		c.clearRoom()
		return
	}
	c.clearRoom()
	if announce {
		h.broadcast(r, CallPresenceEvent{
			Event:  EvtUserLeftCall,
			RoomID: roomID,
			Participant: Participant{
				ConnectionID: c.id,
				UserID:       c.identity.UserID,
				DisplayName:  c.identity.DisplayName,
			},
		})
	}
	h.rooms.dropIfEmpty(roomID)
}

func (h *VideoCoordinator) kick(c *Client, cmd KickCmd) {
	roomID, role := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		return
	}
	if role != models.RoleModerator {
		c.enqueue(errorEvent(CodeForbidden, "moderator role required"))
		return
	}
	target := r.remove(cmd.TargetID)
	if target == nil {
		return
	}
	target.client.clearRoom()
	target.client.enqueue(KickedEvent{Event: EvtKicked, RoomID: roomID, Reason: cmd.Reason})
	h.broadcast(r, CallPresenceEvent{
		Event:  EvtUserLeftCall,
		RoomID: roomID,
		Participant: Participant{
			ConnectionID: target.client.id,
			UserID:       target.client.identity.UserID,
			DisplayName:  target.client.identity.DisplayName,
		},
	})
}

func (h *VideoCoordinator) startRecording(c *Client, cmd StartRecordingCmd) {
	roomID, role := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		return
	}
	if role != models.RoleModerator {
		c.enqueue(errorEvent(CodeForbidden, "moderator role required"))
		return
	}
	session, err := h.recordings.Start(roomID, c.identity.UserID)
	if err != nil {
		c.enqueue(errorEvent(recordingErrorCode(err), err.Error()))
		return
	}
	h.broadcast(r, RecordingEvent{
		Event:     EvtRecordingStarted,
		RoomID:    roomID,
		SessionID: session.ID,
		UserID:    c.identity.UserID,
	})
}

func (h *VideoCoordinator) stopRecording(c *Client, cmd StopRecordingCmd) {
	roomID, role := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		return
	}
	if role != models.RoleModerator {
		c.enqueue(errorEvent(CodeForbidden, "moderator role required"))
		return
	}
	session, err := h.recordings.Stop(roomID, c.identity.UserID)
	if err != nil {
		c.enqueue(errorEvent(recordingErrorCode(err), err.Error()))
		return
	}
	h.broadcast(r, RecordingEvent{
		Event:     EvtRecordingStopped,
		RoomID:    roomID,
		SessionID: session.ID,
		UserID:    c.identity.UserID,
	})
}

func recordingErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, service.ErrRoomNotFound):
		return CodeRoomNotFound
	default:
		return CodeRecording
	}
}

func (h *VideoCoordinator) broadcast(r *roster, evt interface{}) {
	for _, m := range r.snapshot() {
		m.client.enqueue(evt)
	}
}
