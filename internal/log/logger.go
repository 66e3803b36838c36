package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger, human-readable in dev and JSON
// everywhere else.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	base := zerolog.New(os.Stdout)
	if env == "dev" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	log.Logger = base.With().Timestamp().Str("service", "comms").Logger()
}
