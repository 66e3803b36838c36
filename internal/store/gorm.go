package store

import (
	"errors"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"gorm.io/gorm"
)

// Gorm backs the store with Postgres through gorm.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{db: db} }

func (s *Gorm) CreateRoom(room *models.Room) error {
	room.CreatedAt = time.Now().UTC()
	room.LastActivityAt = room.CreatedAt
	room.IsActive = true
	return s.db.Create(room).Error
}

func (s *Gorm) GetRoom(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *Gorm) ListRooms(limit int) ([]models.Room, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var rooms []models.Room
	err := s.db.Where("is_active = ?", true).Order("id desc").Limit(limit).Find(&rooms).Error
	return rooms, err
}

func (s *Gorm) TouchRoom(id uint, at time.Time) error {
	return s.db.Model(&models.Room{}).Where("id = ?", id).Update("last_activity_at", at).Error
}

// DeactivateRoom soft-deletes, rooms are never hard-deleted.
func (s *Gorm) DeactivateRoom(id uint) error {
	res := s.db.Model(&models.Room{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) AppendMessage(msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()
	return s.db.Create(msg).Error
}

func (s *Gorm) RecentMessages(roomID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var msgs []models.Message
	err := s.db.Where("room_id = ? AND deleted = ?", roomID, false).
		Order("id desc").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Gorm) MarkMessageDeleted(roomID, id uint) error {
	res := s.db.Model(&models.Message{}).
		Where("id = ? AND room_id = ?", id, roomID).Update("deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) StartRecording(session *models.RecordingSession) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.RecordingSession{}).
			Where("room_id = ? AND stopped_at IS NULL", session.RoomID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRecordingActive
		}
		session.StartedAt = time.Now().UTC()
		return tx.Create(session).Error
	})
}

func (s *Gorm) StopRecording(id string, at time.Time) error {
	res := s.db.Model(&models.RecordingSession{}).
		Where("id = ? AND stopped_at IS NULL", id).Update("stopped_at", &at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ActiveRecording(roomID uint) (*models.RecordingSession, error) {
	var session models.RecordingSession
	err := s.db.Where("room_id = ? AND stopped_at IS NULL", roomID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}
