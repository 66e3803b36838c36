package ws

import (
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/crypto"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/floodguard"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/metrics"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/service"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
)

const (
	historyLimit  = 50
	maxMessageLen = 1000 // characters, not bytes
)

// ChatCoordinator owns text-chat membership and message flow. Every
// mutation of shared state goes through per-room rosters, encryption and
// persistence happen outside any roster lock.
type ChatCoordinator struct {
	rooms  *registry
	store  store.Store
	cipher *crypto.Cipher
	tokens *token.Service
	guard  *floodguard.Guard
}

func NewChatCoordinator(st store.Store, cipher *crypto.Cipher, tokens *token.Service, guard *floodguard.Guard) *ChatCoordinator {
	return &ChatCoordinator{
		rooms:  newRegistry(),
		store:  st,
		cipher: cipher,
		tokens: tokens,
		guard:  guard,
	}
}

// Online reports the live member count for the room, used by the REST
// room list.
func (h *ChatCoordinator) Online(roomID uint) int { return h.rooms.online(roomID) }

func (h *ChatCoordinator) HandleCommand(c *Client, cmd Command) {
	switch cmd := cmd.(type) {
	case JoinRoomCmd:
		h.join(c, cmd)
	case LeaveRoomCmd:
		h.leave(c, cmd.RoomID, true)
	case SendMessageCmd:
		h.sendMessage(c, cmd)
	case TypingCmd:
		h.typing(c, cmd)
	case DeleteMessageCmd:
		h.deleteMessage(c, cmd)
	case KickCmd:
		h.kick(c, cmd)
	}
}

func (h *ChatCoordinator) HandleDisconnect(c *Client) {
	if roomID, _ := c.currentRoom(); roomID != 0 {
		h.leave(c, roomID, true)
	}
}

func (h *ChatCoordinator) join(c *Client, cmd JoinRoomCmd) {
	claims, err := h.tokens.Validate(cmd.Token)
	if err != nil {
		c.enqueue(errorEvent(CodeUnauthorized, "invalid or expired room token"))
		return
	}
	// A token for room A must never open room B, and the token subject
	// must be the connection's own identity.
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

	r, ok := h.rooms.admit(cmd.RoomID, c.id, &member{client: c, role: claims.Role}, room.MaxParticipants)
	if !ok {
		c.enqueue(errorEvent(CodeRoomFull, "room is full"))
		return
	}
	c.setRoom(cmd.RoomID, claims.Role)

	h.broadcast(r, PresenceEvent{
		Event:       EvtUserJoined,
		RoomID:      cmd.RoomID,
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
		Online:      r.count(),
	})
	c.enqueue(h.history(room))
}

// history loads the recent message window, decrypted, oldest first.
// Messages that fail to decrypt are dropped from the reply and logged,
// never surfaced to clients.
func (h *ChatCoordinator) history(room *models.Room) HistoryEvent {
	evt := HistoryEvent{Event: EvtHistory, RoomID: room.ID, Messages: []MessageEvent{}}
	msgs, err := h.store.RecentMessages(room.ID, historyLimit)
	if err != nil {
		log.Error().Err(err).Uint("room_id", room.ID).Msg("load history")
		return evt
	}
	for _, m := range msgs {
		plaintext, err := h.cipher.Decrypt(m.RoomID, m.Content)
		if err != nil {
			log.Error().Err(err).Uint("room_id", m.RoomID).Uint("message_id", m.ID).Msg("history decrypt")
			continue
		}
		evt.Messages = append(evt.Messages, MessageEvent{
			Event:      EvtReceiveMessage,
			ID:         m.ID,
			RoomID:     m.RoomID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Content:    string(plaintext),
			Timestamp:  m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return evt
}

func (h *ChatCoordinator) sendMessage(c *Client, cmd SendMessageCmd) {
	roomID, _ := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		// Stale connection after a kick, membership wins over client state.
		return
	}
	n := utf8.RuneCountInString(cmd.Text)
	if n == 0 || n > maxMessageLen {
		return
	}
	if ok, _ := h.guard.TryAdmit(service.MessageKey(c.identity.UserID, roomID), floodguard.ActionMessage); !ok {
		// Silent drop, no stored record and no error to the sender.
		metrics.FloodDropsTotal.WithLabelValues(string(floodguard.ActionMessage)).Inc()
		return
	}

	blob, err := h.cipher.Encrypt(roomID, []byte(cmd.Text))
	if err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Msg("encrypt message")
		return
	}
	msg := models.Message{RoomID: roomID, SenderID: c.identity.UserID, SenderName: c.identity.DisplayName, Content: blob}
	if err := h.store.AppendMessage(&msg); err != nil {
		// Persistence failure aborts the send, nothing is broadcast.
		log.Error().Err(err).Uint("room_id", roomID).Msg("persist message")
		return
	}
	metrics.ChatMessagesTotal.Inc()
	h.broadcast(r, MessageEvent{
		Event:      EvtReceiveMessage,
		ID:         msg.ID,
		RoomID:     roomID,
		SenderID:   c.identity.UserID,
		SenderName: c.identity.DisplayName,
		Content:    cmd.Text,
		Timestamp:  msg.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *ChatCoordinator) typing(c *Client, cmd TypingCmd) {
	roomID, _ := c.currentRoom()
	if roomID == 0 || roomID != cmd.RoomID {
		return
	}
	r := h.rooms.lookup(roomID)
	if r == nil || !r.has(c.id) {
		return
	}
	h.broadcast(r, TypingEvent{
		Event:       EvtTyping,
		RoomID:      roomID,
		UserID:      c.identity.UserID,
		DisplayName: c.identity.DisplayName,
		IsTyping:    cmd.IsTyping,
	})
}

// deleteMessage soft-deletes one message from the room log, moderator
// only. The row stays in storage, history just stops serving it.
func (h *ChatCoordinator) deleteMessage(c *Client, cmd DeleteMessageCmd) {
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
	if err := h.store.MarkMessageDeleted(roomID, cmd.MessageID); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Uint("message_id", cmd.MessageID).Msg("delete message")
		return
	}
	h.broadcast(r, MessageDeletedEvent{Event: EvtMessageDeleted, RoomID: roomID, MessageID: cmd.MessageID})
}

func (h *ChatCoordinator) leave(c *Client, roomID uint, announce bool) {
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
		h.broadcast(r, PresenceEvent{
			Event:       EvtUserLeft,
			RoomID:      roomID,
			UserID:      c.identity.UserID,
			DisplayName: c.identity.DisplayName,
			Online:      r.count(),
		})
	}
	h.rooms.dropIfEmpty(roomID)
}

func (h *ChatCoordinator) kick(c *Client, cmd KickCmd) {
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
	h.broadcast(r, PresenceEvent{
		Event:       EvtUserLeft,
		RoomID:      roomID,
		UserID:      target.client.identity.UserID,
		DisplayName: target.client.identity.DisplayName,
		Online:      r.count(),
	})
}

// broadcast fans an event out to the room membership snapshot. Delivery
// is best-effort per recipient, one slow client never blocks the rest.
func (h *ChatCoordinator) broadcast(r *roster, evt interface{}) {
	for _, m := range r.snapshot() {
		m.client.enqueue(evt)
	}
}
