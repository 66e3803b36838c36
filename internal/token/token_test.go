package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueValidate_RoundTrip(t *testing.T) {
	svc := NewService("room-secret", 12*time.Hour)

	raw, err := svc.Issue(7, 42, "Alice", "moderator")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if raw == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := svc.Validate(raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.RoomID != 7 {
		t.Errorf("RoomID = %d, want 7", claims.RoomID)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want Alice", claims.DisplayName)
	}
	if claims.Role != "moderator" {
		t.Errorf("Role = %q, want moderator", claims.Role)
	}
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("room-secret", -time.Minute)
	raw, err := svc.Issue(1, 1, "Bob", "participant")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = svc.Validate(raw)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Validate() error = %v, want ErrExpired", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	svc := NewService("room-secret", time.Hour)
	raw, err := svc.Issue(1, 1, "Bob", "participant")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", raw + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.raw); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate(%q) error = %v, want ErrInvalid", tt.raw, err)
			}
		})
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewService("secret-a", time.Hour)
	validator := NewService("secret-b", time.Hour)

	raw, err := issuer.Issue(1, 1, "Bob", "participant")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := validator.Validate(raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error = %v, want ErrInvalid", err)
	}
}

func TestClaims_ScopeOneRoom(t *testing.T) {
	// A token for room 1 carries room 1 in its claims, the coordinators
	// reject any join where the claim and the target room differ.
	svc := NewService("room-secret", time.Hour)
	raw, err := svc.Issue(1, 42, "Alice", "participant")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := svc.Validate(raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.RoomID == 2 {
		t.Error("claims must carry the issued room id")
	}
	if claims.RoomID != 1 {
		t.Errorf("RoomID = %d, want 1", claims.RoomID)
	}
}
