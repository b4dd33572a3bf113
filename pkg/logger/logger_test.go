package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Out: &buf}).Component("documents")

	log.Info().Int64("document_id", 7).Msg("documento contabilizado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "documents", line["component"])
	assert.Equal(t, "documento contabilizado", line["message"])
	assert.EqualValues(t, 7, line["document_id"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("sí")
	assert.NotZero(t, buf.Len())
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nada") })
}
