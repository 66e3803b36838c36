package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/auth"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/floodguard"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
)

// RoomService owns room lifecycle: create, password join (minting the room
// access token), listing and soft deletion.
type RoomService struct {
	store  store.Store
	tokens *token.Service
	guard  *floodguard.Guard
}

func NewRoomService(st store.Store, tokens *token.Service, guard *floodguard.Guard) *RoomService {
	return &RoomService{store: st, tokens: tokens, guard: guard}
}

// RoomDTO is the outward room shape, password material never leaves the
// service layer.
type RoomDTO struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	CreatorID         uint      `json:"creator_id"`
	CreatorName       string    `json:"creator_name"`
	Privacy           string    `json:"privacy"`
	MaxParticipants   int       `json:"max_participants"`
	AllowRecording    bool      `json:"allow_recording"`
	EncryptionEnabled bool      `json:"encryption_enabled"`
	CreatedAt         time.Time `json:"created_at"`
}

func toDTO(room *models.Room) RoomDTO {
	return RoomDTO{
		ID:                room.ID,
		Name:              room.Name,
		Description:       room.Description,
		CreatorID:         room.CreatorID,
		CreatorName:       room.CreatorName,
		Privacy:           room.Privacy,
		MaxParticipants:   room.MaxParticipants,
		AllowRecording:    room.AllowRecording,
		EncryptionEnabled: room.EncryptionEnabled,
		CreatedAt:         room.CreatedAt,
	}
}

type CreateRoomInput struct {
	Name            string
	Description     string
	Password        string
	Privacy         string
	MaxParticipants int
	AllowRecording  bool
}

func (s *RoomService) Create(id *auth.Identity, in CreateRoomInput) (*RoomDTO, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > 128 || in.Password == "" {
		return nil, ErrValidation
	}
	if in.Privacy == "" {
		in.Privacy = models.PrivacyPublic
	}
	switch in.Privacy {
	case models.PrivacyPublic, models.PrivacyPrivate, models.PrivacyInviteOnly:
	default:
		return nil, ErrValidation
	}
	if in.MaxParticipants <= 0 {
		in.MaxParticipants = 30
	}
	if ok, retry := s.guard.TryAdmit(identityKey(id.UserID), floodguard.ActionRoomCreate); !ok {
		return nil, &RateLimitedError{RetryAfter: retry}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	room := models.Room{
		Name:              in.Name,
		Description:       in.Description,
		PasswordHash:      hash,
		CreatorID:         id.UserID,
		CreatorName:       id.DisplayName,
		Privacy:           in.Privacy,
		MaxParticipants:   in.MaxParticipants,
		AllowRecording:    in.AllowRecording,
		EncryptionEnabled: true,
	}
	if err := s.store.CreateRoom(&room); err != nil {
		return nil, err
	}
	dto := toDTO(&room)
	return &dto, nil
}

// JoinResult is the REST join response body: room details plus the room
// access token the client presents to a hub.
type JoinResult struct {
	Token string
	Room  RoomDTO
	Role  string
}

// Join checks the room password and mints a room access token scoped to
// exactly this room. The creator joins as moderator, everyone else as
// participant.
func (s *RoomService) Join(id *auth.Identity, roomID uint, password string) (*JoinResult, error) {
	if ok, retry := s.guard.TryAdmit(identityKey(id.UserID), floodguard.ActionRoomJoin); !ok {
		return nil, &RateLimitedError{RetryAfter: retry}
	}
	room, err := s.store.GetRoom(roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !room.IsActive {
		return nil, ErrRoomNotFound
	}
	if !auth.VerifyPassword(room.PasswordHash, password) {
		return nil, ErrIncorrectPassword
	}
	role := models.RoleParticipant
	if room.CreatorID == id.UserID {
		role = models.RoleModerator
	}
	raw, err := s.tokens.Issue(room.ID, id.UserID, id.DisplayName, role)
	if err != nil {
		return nil, err
	}
	_ = s.store.TouchRoom(room.ID, time.Now().UTC())
	return &JoinResult{Token: raw, Room: toDTO(room), Role: role}, nil
}

func (s *RoomService) List(limit int) ([]RoomDTO, error) {
	rooms, err := s.store.ListRooms(limit)
	if err != nil {
		return nil, err
	}
	out := make([]RoomDTO, 0, len(rooms))
	for i := range rooms {
		out = append(out, toDTO(&rooms[i]))
	}
	return out, nil
}

// Delete soft-deletes a room, creator only.
func (s *RoomService) Delete(id *auth.Identity, roomID uint) error {
	room, err := s.store.GetRoom(roomID)
	if err != nil {
		return ErrRoomNotFound
	}
	if room.CreatorID != id.UserID {
		return ErrForbidden
	}
	return s.store.DeactivateRoom(roomID)
}

func identityKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// MessageKey scopes the message budget to a user within a room.
func MessageKey(userID, roomID uint) string {
	return fmt.Sprintf("user:%d|room:%d", userID, roomID)
}
