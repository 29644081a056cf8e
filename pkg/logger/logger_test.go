package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

func TestNew_SelloDeServicioYNivel(t *testing.T) {
	// Caso 1: en producción la salida es JSON con el sello de servicio.
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Env:     "production",
		Level:   "info",
		Service: "stock-api",
		Out:     &buf,
	})
	log.Info().Str("evento", "arranque").Msg("listo")

	out := buf.String()
	assert.Contains(t, out, `"service":"stock-api"`)
	assert.Contains(t, out, `"evento":"arranque"`)

	// Caso 2: el nivel filtra por debajo del configurado.
	buf.Reset()
	log.Debug().Msg("no debe salir")
	assert.Empty(t, buf.String())
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: "verboso"})
	assert.Equal(t, zerolog.InfoLevel, log.Zerolog().GetLevel())
}
