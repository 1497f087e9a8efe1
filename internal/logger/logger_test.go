package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Init("debug", "json")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Init("not-a-level", "pretty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init("", "json")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
