package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/Ryavnn/Employee-Management-system/internal/logging"
)

func TestSetup_JSONOutsideDev(t *testing.T) {
	defer logging.Setup("DEV", nil)

	var buf bytes.Buffer
	logging.Setup("PROD", &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("outcome", "authorized").Msg("access decision")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "authorized", line["outcome"])
	require.Equal(t, "access decision", line["message"])
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestSetup_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup("DEV", &buf)

	log.Debug().Msg("visible")
	require.Contains(t, buf.String(), "visible")
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
