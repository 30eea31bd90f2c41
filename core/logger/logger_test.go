package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		level zapcore.Level
	}{
		{"Debug Console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"Info JSON", Config{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"Warn JSON", Config{Level: "warn", Format: "json"}, zapcore.WarnLevel},
		{"Unknown Level Falls Back To Info", Config{Level: "loud"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, l)
			assert.True(t, l.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestForEntity(t *testing.T) {
	l := ForEntity(zap.NewNop(), "run-1", "agency")
	assert.NotNil(t, l)
}
