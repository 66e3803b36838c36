package models

import "time"

// Privacy levels for a room.
const (
	PrivacyPublic     = "public"
	PrivacyPrivate    = "private"
	PrivacyInviteOnly = "invite"
)

// Roles carried by room access tokens.
const (
	RoleModerator   = "moderator"
	RoleParticipant = "participant"
)

type Room struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:128;not null"`
	Description       string `gorm:"size:512"`
	PasswordHash      string `gorm:"not null"`
	CreatorID         uint   `gorm:"index;not null"`
	CreatorName       string `gorm:"size:64;not null"`
	Privacy           string `gorm:"size:16;not null;default:public"`
	MaxParticipants   int    `gorm:"not null;default:30"`
	AllowRecording    bool   `gorm:"not null;default:false"`
	EncryptionEnabled bool   `gorm:"not null;default:true"` // informational, content is encrypted at rest regardless
	CreatedAt         time.Time
	LastActivityAt    time.Time
	IsActive          bool `gorm:"not null;default:true;index"`
}

// Message content is always the encrypted blob, plaintext is never persisted.
type Message struct {
	ID         uint   `gorm:"primaryKey"`
	RoomID     uint   `gorm:"index:idx_msg_room_id;not null"`
	SenderID   uint   `gorm:"index;not null"`
	SenderName string `gorm:"size:64;not null"`
	Content    []byte `gorm:"type:bytea;not null"`
	CreatedAt  time.Time
	Deleted    bool `gorm:"not null;default:false"`
	Edited     bool `gorm:"not null;default:false"`
}

type RecordingSession struct {
	ID          string `gorm:"primaryKey;size:36"`
	RoomID      uint   `gorm:"index;not null"`
	InitiatorID uint   `gorm:"not null"`
	StartedAt   time.Time
	StoppedAt   *time.Time
}
