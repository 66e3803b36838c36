package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalid = errors.New("room token invalid")
	ErrExpired = errors.New("room token expired")
)

// RoomClaims scope one user to one room with a role until expiry.
type RoomClaims struct {
	RoomID      uint   `json:"rid"`
	UserID      uint   `json:"uid"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and validates room access tokens. Stateless, the only
// state is the signing secret, so any replica with the same secret
// validates tokens minted elsewhere.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

func (s *Service) Issue(roomID, userID uint, displayName, role string) (string, error) {
	now := time.Now()
	claims := RoomClaims{
		RoomID:      roomID,
		UserID:      userID,
		DisplayName: displayName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate checks signature and expiry and returns the embedded claims.
// There is no revocation before natural expiry, membership state on the
// coordinators is what blocks kicked users from acting further.
func (s *Service) Validate(raw string) (*RoomClaims, error) {
	t, err := jwt.ParseWithClaims(raw, &RoomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	claims, ok := t.Claims.(*RoomClaims)
	if !ok || !t.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
