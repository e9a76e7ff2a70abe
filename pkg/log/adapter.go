package log

import (
	"strings"

	"github.com/prism-render/prism/pkg/core"
)

// renderLogger bridges a leveled logger to the renderer's Printf-style
// core.Logger
type renderLogger struct {
	logger Logger
}

// ForRenderer wraps a leveled logger for use by the renderer
func ForRenderer(logger Logger) core.Logger {
	return &renderLogger{logger: logger}
}

func (rl *renderLogger) Printf(format string, args ...interface{}) {
	rl.logger.Noticef(strings.TrimSuffix(format, "\n"), args...)
}
