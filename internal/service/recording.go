package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
)

// RecordingService is the control plane for recording sessions. Actual
// media capture happens elsewhere, this only tracks who recorded which
// room and when, and enforces the single-active-session rule.
type RecordingService struct {
	store store.Store
}

func NewRecordingService(st store.Store) *RecordingService {
	return &RecordingService{store: st}
}

// Start begins a session for the room. Caller role checks happen at the
// transport layer (token role must be moderator), this enforces the room
// flags and the single active session per room.
func (s *RecordingService) Start(roomID, initiatorID uint) (*models.RecordingSession, error) {
	room, err := s.store.GetRoom(roomID)
	if err != nil || !room.IsActive {
		return nil, ErrRoomNotFound
	}
	if !room.AllowRecording {
		return nil, ErrForbidden
	}
	session := models.RecordingSession{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		InitiatorID: initiatorID,
	}
	if err := s.store.StartRecording(&session); err != nil {
		if errors.Is(err, store.ErrRecordingActive) {
			return nil, ErrRecordingActive
		}
		return nil, err
	}
	return &session, nil
}

// Stop ends the active session for the room. Only the initiator may stop
// their own session.
func (s *RecordingService) Stop(roomID, callerID uint) (*models.RecordingSession, error) {
	session, err := s.store.ActiveRecording(roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveRecording
		}
		return nil, err
	}
	if session.InitiatorID != callerID {
		return nil, ErrForbidden
	}
	now := time.Now().UTC()
	if err := s.store.StopRecording(session.ID, now); err != nil {
		return nil, err
	}
	session.StoppedAt = &now
	return session, nil
}
