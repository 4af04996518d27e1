package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/ystepanoff/lbmwm1110/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Send()
}
