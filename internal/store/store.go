package store

import (
	"errors"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrRecordingActive is returned when a room already has a running
	// recording session.
	ErrRecordingActive = errors.New("recording already active")
)

// Store is the persistence boundary for room metadata, the encrypted
// message log and recording sessions. The hubs only ever see this
// interface, backends are selected at startup.
type Store interface {
	CreateRoom(room *models.Room) error
	GetRoom(id uint) (*models.Room, error)
	ListRooms(limit int) ([]models.Room, error)
	TouchRoom(id uint, at time.Time) error
	DeactivateRoom(id uint) error

	// AppendMessage assigns the message id and UTC timestamp.
	AppendMessage(msg *models.Message) error
	// RecentMessages returns up to limit non-deleted messages, oldest first.
	RecentMessages(roomID uint, limit int) ([]models.Message, error)
	// MarkMessageDeleted soft-deletes one message, scoped to the room so
	// a moderator of one room cannot touch another room's log.
	MarkMessageDeleted(roomID, id uint) error

	StartRecording(session *models.RecordingSession) error
	StopRecording(id string, at time.Time) error
	ActiveRecording(roomID uint) (*models.RecordingSession, error)
}
