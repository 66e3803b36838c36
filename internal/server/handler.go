package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/auth"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/models"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/service"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/ws"
)

// Handler aggregates the REST handlers over the injected services.
type Handler struct {
	roomSvc *service.RoomService
	recSvc  *service.RecordingService
	tokens  *token.Service
	chat    *ws.ChatCoordinator
}

func NewHandler(roomSvc *service.RoomService, recSvc *service.RecordingService, tokens *token.Service, chat *ws.ChatCoordinator) *Handler {
	return &Handler{roomSvc: roomSvc, recSvc: recSvc, tokens: tokens, chat: chat}
}

// CreateRoom handles room creation. The password is hashed in the service
// layer and never echoed back.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		Password        string `json:"password"`
		Privacy         string `json:"privacy"`
		MaxParticipants int    `json:"max_participants"`
		AllowRecording  bool   `json:"allow_recording"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	id := auth.GetIdentity(c)
	room, err := h.roomSvc.Create(id, service.CreateRoomInput{
		Name:            req.Name,
		Description:     req.Description,
		Password:        req.Password,
		Privacy:         req.Privacy,
		MaxParticipants: req.MaxParticipants,
		AllowRecording:  req.AllowRecording,
	})
	if err != nil {
		if rateLimited(c, err) {
			return
		}
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		log.Error().Err(err).Uint("creator_id", id.UserID).Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// JoinRoom checks the room password and hands out the room access token
// the client will present on the hub connection.
func (h *Handler) JoinRoom(c *gin.Context) {
	var req struct {
		RoomID   uint   `json:"room_id"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid payload"})
		return
	}
	id := auth.GetIdentity(c)
	result, err := h.roomSvc.Join(id, req.RoomID, req.Password)
	if err != nil {
		if rateLimited(c, err) {
			return
		}
		if errors.Is(err, service.ErrIncorrectPassword) {
			c.JSON(http.StatusOK, gin.H{"ok": false, "message": "Incorrect password"})
			return
		}
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "room not found"})
			return
		}
		log.Error().Err(err).Uint("room_id", req.RoomID).Uint("user_id", id.UserID).Msg("join room")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "join failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"room_access_token": result.Token,
		"role":              result.Role,
		"room":              result.Room,
	})
}

// ListRooms returns active rooms with their live chat occupancy.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.roomSvc.List(100)
	if err != nil {
		log.Error().Err(err).Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	type roomDTO struct {
		service.RoomDTO
		Online int `json:"online"`
	}
	out := make([]roomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomDTO{RoomDTO: r, Online: h.chat.Online(r.ID)})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// DeleteRoom soft-deletes, creator only.
func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil || roomID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	id := auth.GetIdentity(c)
	if err := h.roomSvc.Delete(id, uint(roomID)); err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "creator only"})
			return
		}
		log.Error().Err(err).Int("room_id", roomID).Msg("delete room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// moderatorClaims validates the room access token presented alongside a
// recording request and requires the moderator role for the given room.
func (h *Handler) moderatorClaims(c *gin.Context, raw string, roomID uint) *token.RoomClaims {
	id := auth.GetIdentity(c)
	claims, err := h.tokens.Validate(raw)
	if err != nil || claims.RoomID != roomID || claims.UserID != id.UserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid room token"})
		return nil
	}
	if claims.Role != models.RoleModerator {
		c.JSON(http.StatusForbidden, gin.H{"error": "moderator role required"})
		return nil
	}
	return claims
}

func (h *Handler) StartRecording(c *gin.Context) {
	var req struct {
		RoomID          uint   `json:"room_id"`
		RoomAccessToken string `json:"room_access_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	claims := h.moderatorClaims(c, req.RoomAccessToken, req.RoomID)
	if claims == nil {
		return
	}
	session, err := h.recSvc.Start(req.RoomID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "recording not allowed for this room"})
		case errors.Is(err, service.ErrRecordingActive):
			c.JSON(http.StatusConflict, gin.H{"error": "recording already active"})
		default:
			log.Error().Err(err).Uint("room_id", req.RoomID).Msg("start recording")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start recording"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "started_at": session.StartedAt})
}

func (h *Handler) StopRecording(c *gin.Context) {
	var req struct {
		RoomID          uint   `json:"room_id"`
		RoomAccessToken string `json:"room_access_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	claims := h.moderatorClaims(c, req.RoomAccessToken, req.RoomID)
	if claims == nil {
		return
	}
	session, err := h.recSvc.Stop(req.RoomID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveRecording):
			c.JSON(http.StatusNotFound, gin.H{"error": "no active recording"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator may stop the recording"})
		default:
			log.Error().Err(err).Uint("room_id", req.RoomID).Msg("stop recording")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stop recording"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "stopped_at": session.StoppedAt})
}

// rateLimited writes the 429 response with a Retry-After hint when the
// flood guard denied the action.
func rateLimited(c *gin.Context, err error) bool {
	var rl *service.RateLimitedError
	if !errors.As(err, &rl) {
		return false
	}
	secs := int(math.Ceil(rl.RetryAfter.Seconds()))
	c.Header("Retry-After", strconv.Itoa(secs))
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "retry_after_seconds": secs})
	return true
}
