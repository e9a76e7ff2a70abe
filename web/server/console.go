package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/prism-render/prism/pkg/core"
	"github.com/prism-render/prism/pkg/log"
)

// ConsoleMessage is one line of renderer output destined for the
// client's console panel
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger mirrors renderer progress to the server log and to a
// per-render console channel
type WebLogger struct {
	logger      log.Logger
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for a single render request
func NewWebLogger(logger log.Logger, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		logger:      logger,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.logger != nil {
		wl.logger.Info(strings.TrimSuffix(message, "\n"))
	}

	// The console stream is best effort: drop messages rather than
	// stall the render when the client lags
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
		}
	}
}
