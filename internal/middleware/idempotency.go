// Package middleware holds router middlewares that carry their own
// dependencies beyond logging.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/handlers"
	"github.com/sayu-dev/showcase-bot/internal/idempotency"
)

const idempotencyTTL = 24 * time.Hour

// Idempotency ensures handlers execute at most once per Telegram update key.
// Duplicate deliveries and still-in-flight doubles are swallowed silently:
// the original delivery already produced the message edit the user sees.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			key := extractIdempotencyKey(c)
			if key == "" {
				return next(c)
			}

			err := manager.Execute(context.Background(), key, idempotencyTTL, func(context.Context) error {
				return next(c)
			})
			if err != nil {
				if errors.Is(err, idempotency.ErrInProgress) || errors.Is(err, idempotency.ErrDuplicate) {
					log.Debug("skipping duplicate update", slog.String("key", key))
					return nil
				}
				return err
			}

			return nil
		}
	}
}

// extractIdempotencyKey derives a stable key per Telegram delivery. Callback
// IDs are unique per button press; plain messages fall back to their chat
// and message ids.
func extractIdempotencyKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	if cb := c.Callback(); cb != nil {
		if cb.ID != "" {
			return idempotency.GenerateKey("cb", cb.ID)
		}

		if cb.Message != nil && cb.Message.Chat != nil {
			return idempotency.GenerateKey("cb-msg", cb.Message.Chat.ID, cb.Message.ID)
		}
	}

	if msg := c.Message(); msg != nil && msg.ID != 0 {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		return idempotency.GenerateKey("msg", chatID, msg.ID)
	}

	return ""
}
