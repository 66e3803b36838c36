package config

import (
	"encoding/hex"
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Env               string
	DatabaseDSN       string
	StoreBackend      string // "postgres" or "memory"
	JWTSecret         string
	RoomTokenSecret   string
	RoomTokenTTLHours int
	MessageMasterKey  string // hex, 32 bytes once decoded
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func Load() Config {
	// .env is optional, deployments usually set the environment directly.
	_ = godotenv.Load()
	return Config{
		Port:              getenv("APP_PORT", "8080"),
		Env:               getenv("APP_ENV", "dev"),
		DatabaseDSN:       getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=school_comms port=5432 sslmode=disable TimeZone=UTC"),
		StoreBackend:      getenv("STORE_BACKEND", "postgres"),
		JWTSecret:         getenv("JWT_SECRET", "dev-secret-change-me"),
		RoomTokenSecret:   getenv("ROOM_TOKEN_SECRET", "dev-room-secret-change-me"),
		RoomTokenTTLHours: getenvInt("ROOM_TOKEN_TTL_HOURS", 12),
		MessageMasterKey:  getenv("MESSAGE_MASTER_KEY", "6368616e676520746869732064657620656e6372797074696f6e206b65792121"),
	}
}

// Validate rejects configurations that would be unsafe outside dev.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("port must not be empty")
	}
	if cfg.StoreBackend == "postgres" && cfg.DatabaseDSN == "" {
		return errors.New("database dsn must not be empty")
	}
	if cfg.StoreBackend != "postgres" && cfg.StoreBackend != "memory" {
		return errors.New("store backend must be postgres or memory")
	}
	key, err := hex.DecodeString(cfg.MessageMasterKey)
	if err != nil || len(key) != 32 {
		return errors.New("message master key must be 32 hex-encoded bytes")
	}
	if cfg.Env != "dev" {
		if cfg.JWTSecret == "dev-secret-change-me" {
			return errors.New("default jwt secret not allowed outside dev")
		}
		if cfg.RoomTokenSecret == "dev-room-secret-change-me" {
			return errors.New("default room token secret not allowed outside dev")
		}
	}
	return nil
}

// MasterKey decodes the hex message master key. Call Validate first.
func (c Config) MasterKey() []byte {
	key, _ := hex.DecodeString(c.MessageMasterKey)
	return key
}
