package store

import (
	"sync"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
)

// Memory keeps everything in process memory. Used for dev and tests,
// selected with STORE_BACKEND=memory.
type Memory struct {
	mu         sync.RWMutex
	rooms      map[uint]*models.Room
	messages   map[uint][]models.Message // keyed by room id
	recordings map[string]*models.RecordingSession
	nextRoomID uint
	nextMsgID  uint
}

func NewMemory() *Memory {
	return &Memory{
		rooms:      make(map[uint]*models.Room),
		messages:   make(map[uint][]models.Message),
		recordings: make(map[string]*models.RecordingSession),
	}
}

func (s *Memory) CreateRoom(room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRoomID++
	room.ID = s.nextRoomID
	room.CreatedAt = time.Now().UTC()
	room.LastActivityAt = room.CreatedAt
	room.IsActive = true
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *Memory) GetRoom(id uint) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Memory) ListRooms(limit int) ([]models.Room, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, 0, len(s.rooms))
	for id := s.nextRoomID; id > 0 && len(out) < limit; id-- {
		if room, ok := s.rooms[id]; ok && room.IsActive {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (s *Memory) TouchRoom(id uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return ErrNotFound
	}
	room.LastActivityAt = at
	return nil
}

func (s *Memory) DeactivateRoom(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return ErrNotFound
	}
	room.IsActive = false
	return nil
}

func (s *Memory) AppendMessage(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsgID++
	msg.ID = s.nextMsgID
	msg.CreatedAt = time.Now().UTC()
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	return nil
}

func (s *Memory) RecentMessages(roomID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[roomID]
	out := make([]models.Message, 0, limit)
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if !msgs[i].Deleted {
			out = append(out, msgs[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Memory) MarkMessageDeleted(roomID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[roomID]
	for i := range msgs {
		if msgs[i].ID == id {
			msgs[i].Deleted = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *Memory) StartRecording(session *models.RecordingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.recordings {
		if rec.RoomID == session.RoomID && rec.StoppedAt == nil {
			return ErrRecordingActive
		}
	}
	session.StartedAt = time.Now().UTC()
	cp := *session
	s.recordings[session.ID] = &cp
	return nil
}

func (s *Memory) StopRecording(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[id]
	if !ok || rec.StoppedAt != nil {
		return ErrNotFound
	}
	rec.StoppedAt = &at
	return nil
}

func (s *Memory) ActiveRecording(roomID uint) (*models.RecordingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.recordings {
		if rec.RoomID == roomID && rec.StoppedAt == nil {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
