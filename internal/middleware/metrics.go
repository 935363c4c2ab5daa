package middleware

import (
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/handlers"
	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting
// them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}

		metrics.RecordCommand(extractActionName(c), status, time.Since(start))

		return err
	}
}

// extractActionName keeps label cardinality bounded: callback payloads are
// reduced to their action token and text messages to their command.
func extractActionName(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		if p, err := keyboard.Decode(cb.Data); err == nil {
			return p.Action
		}
		return "malformed_callback"
	}

	if text := c.Text(); text != "" {
		if len(text) > 0 && text[0] == '/' {
			for i := 0; i < len(text); i++ {
				if text[i] == ' ' || text[i] == '@' {
					return text[:i]
				}
			}
			return text
		}
		return "text"
	}

	return "unknown"
}
