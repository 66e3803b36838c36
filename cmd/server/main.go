package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rohitjain-pio/School-Management-System-sub003/internal/config"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/crypto"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/db"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/floodguard"
	clog "github.com/rohitjain-pio/School-Management-System-sub003/internal/log"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/server"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/service"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/store"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/token"
	"github.com/rohitjain-pio/School-Management-System-sub003/internal/ws"
)

func main() {
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	var st store.Store
	if cfg.StoreBackend == "memory" {
		st = store.NewMemory()
	} else {
		gdb, err := db.Connect(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		if err := db.Migrate(gdb); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
		st = store.NewGorm(gdb)
	}

	cipher, err := crypto.NewCipher(cfg.MasterKey())
	if err != nil {
		log.Fatal().Err(err).Msg("message cipher")
	}
	tokens := token.NewService(cfg.RoomTokenSecret, time.Duration(cfg.RoomTokenTTLHours)*time.Hour)
	guard := floodguard.New(floodguard.DefaultBudgets())
	defer guard.Stop()

	roomSvc := service.NewRoomService(st, tokens, guard)
	recSvc := service.NewRecordingService(st)
	chat := ws.NewChatCoordinator(st, cipher, tokens, guard)
	video := ws.NewVideoCoordinator(st, tokens, recSvc)

	h := server.NewHandler(roomSvc, recSvc, tokens, chat)
	r := server.SetupRouter(cfg, h, chat, video)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
