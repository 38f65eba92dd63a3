package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_LevelParsing(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		debugOn bool
		infoOn  bool
	}{
		{"debug", "debug", true, true},
		{"warn drops info", "warn", false, false},
		{"case insensitive", "ERROR", false, false},
		{"offset form", "warn-8", true, true},
		{"garbage falls back to info", "loud", false, true},
		{"empty falls back to info", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level)

			ctx := context.Background()
			assert.Equal(t, tt.debugOn, slog.Default().Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoOn, slog.Default().Enabled(ctx, slog.LevelInfo))
		})
	}
}
