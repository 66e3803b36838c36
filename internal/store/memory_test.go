package store

import (
	"errors"
	"testing"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
)

func TestMemory_RoomLifecycle(t *testing.T) {
	s := NewMemory()

	room := &models.Room{Name: "Math10A", PasswordHash: "h", CreatorID: 1, CreatorName: "Alice", MaxParticipants: 10}
	if err := s.CreateRoom(room); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if room.ID == 0 {
		t.Fatal("CreateRoom() must assign an id")
	}
	if !room.IsActive {
		t.Error("new rooms must be active")
	}

	got, err := s.GetRoom(room.ID)
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if got.Name != "Math10A" {
		t.Errorf("GetRoom() Name = %q", got.Name)
	}

	if _, err := s.GetRoom(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRoom(999) error = %v, want ErrNotFound", err)
	}

	if err := s.DeactivateRoom(room.ID); err != nil {
		t.Fatalf("DeactivateRoom() error = %v", err)
	}
	got, err = s.GetRoom(room.ID)
	if err != nil {
		t.Fatalf("GetRoom() after deactivate error = %v", err)
	}
	if got.IsActive {
		t.Error("deactivated room must stay readable but inactive")
	}

	rooms, err := s.ListRooms(10)
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("ListRooms() includes inactive rooms: %d", len(rooms))
	}
}

func TestMemory_Messages(t *testing.T) {
	s := NewMemory()
	room := &models.Room{Name: "r", PasswordHash: "h"}
	if err := s.CreateRoom(room); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		msg := &models.Message{RoomID: room.ID, SenderID: 1, SenderName: "Alice", Content: []byte{byte(i)}}
		if err := s.AppendMessage(msg); err != nil {
			t.Fatalf("AppendMessage() error = %v", err)
		}
		if msg.ID == 0 {
			t.Fatal("AppendMessage() must assign an id")
		}
		if msg.CreatedAt.IsZero() {
			t.Fatal("AppendMessage() must assign a timestamp")
		}
	}

	msgs, err := s.RecentMessages(room.ID, 3)
	if err != nil {
		t.Fatalf("RecentMessages() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("RecentMessages() len = %d, want 3", len(msgs))
	}
	// Oldest first within the most recent window.
	if msgs[0].Content[0] != 2 || msgs[2].Content[0] != 4 {
		t.Errorf("RecentMessages() order wrong: %v %v", msgs[0].Content, msgs[2].Content)
	}

	if err := s.MarkMessageDeleted(999, msgs[2].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkMessageDeleted() wrong room error = %v, want ErrNotFound", err)
	}
	if err := s.MarkMessageDeleted(room.ID, msgs[2].ID); err != nil {
		t.Fatalf("MarkMessageDeleted() error = %v", err)
	}
	msgs, _ = s.RecentMessages(room.ID, 10)
	if len(msgs) != 4 {
		t.Errorf("RecentMessages() after delete len = %d, want 4", len(msgs))
	}
	for _, m := range msgs {
		if m.Deleted {
			t.Error("RecentMessages() must filter deleted messages")
		}
	}
}

func TestMemory_Recording(t *testing.T) {
	s := NewMemory()
	room := &models.Room{Name: "r", PasswordHash: "h", AllowRecording: true}
	if err := s.CreateRoom(room); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}

	first := &models.RecordingSession{ID: "rec-1", RoomID: room.ID, InitiatorID: 1}
	if err := s.StartRecording(first); err != nil {
		t.Fatalf("StartRecording() error = %v", err)
	}

	second := &models.RecordingSession{ID: "rec-2", RoomID: room.ID, InitiatorID: 2}
	if err := s.StartRecording(second); !errors.Is(err, ErrRecordingActive) {
		t.Errorf("StartRecording() while active error = %v, want ErrRecordingActive", err)
	}

	active, err := s.ActiveRecording(room.ID)
	if err != nil {
		t.Fatalf("ActiveRecording() error = %v", err)
	}
	if active.ID != "rec-1" {
		t.Errorf("ActiveRecording() ID = %q, want rec-1", active.ID)
	}

	if err := s.StopRecording("rec-1", time.Now().UTC()); err != nil {
		t.Fatalf("StopRecording() error = %v", err)
	}
	if _, err := s.ActiveRecording(room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ActiveRecording() after stop error = %v, want ErrNotFound", err)
	}
	if err := s.StopRecording("rec-1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Errorf("StopRecording() twice error = %v, want ErrNotFound", err)
	}

	// A new session may start once the previous one stopped.
	if err := s.StartRecording(second); err != nil {
		t.Errorf("StartRecording() after stop error = %v", err)
	}
}
