package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := migrateLogger{log: zap.New(core)}

	l.Printf("Start buffering %d/u %s\n", 3, "practice")
	assert.False(t, l.Verbose())
	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "Start buffering 3/u practice", logs.All()[0].Message)
	}

	debug, _ := observer.New(zapcore.DebugLevel)
	assert.True(t, migrateLogger{log: zap.New(debug)}.Verbose())
}
