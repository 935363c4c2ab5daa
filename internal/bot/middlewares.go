package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/handlers"
	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
)

const genericErrorText = "⚠️ Something went wrong. Please try again later."

// RecoveryMiddleware catches panics, reports them via the centralized
// handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := genericErrorText
					if errHandler != nil {
						appErr := apperrors.NewDatabaseError(fmt.Errorf("panic recovered: %v", r))
						if msg, _ := errHandler.Handle(context.Background(), appErr); msg != "" {
							userMsg = msg
						}
					}

					if c != nil {
						if notifyErr := notifyUser(c, userMsg); notifyErr != nil {
							log.Error("failed to notify user about panic", slog.Any("error", notifyErr))
						}
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware centralizes error reporting and user messaging for
// handler failures. Callback errors become callback answers (a toast on the
// pressed button); message errors become chat replies.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			userMsg := genericErrorText
			if errHandler != nil {
				if msg, _ := errHandler.Handle(context.Background(), err); msg != "" {
					userMsg = msg
				}
			}

			if c != nil {
				_ = notifyUser(c, userMsg)
			}

			return nil
		}
	}
}

// LoggingMiddleware logs basic telemetry about incoming updates.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			userID := int64(0)
			if c != nil && c.Sender() != nil {
				userID = c.Sender().ID
			}

			action := actionLabel(c)

			log.Info("handling update", slog.Int64("user_id", userID), slog.String("action", action))
			err := next(c)
			log.Info("handled update",
				slog.Int64("user_id", userID),
				slog.String("action", action),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)

			return err
		}
	}
}

func notifyUser(c telebot.Context, msg string) error {
	if c.Callback() != nil {
		return c.Respond(&telebot.CallbackResponse{Text: msg})
	}
	return c.Send(msg)
}

// actionLabel reduces an update to a loggable action name: the callback
// action (arguments and owner id stripped) or the command token.
func actionLabel(c telebot.Context) string {
	if c == nil {
		return "unknown"
	}

	if cb := c.Callback(); cb != nil && cb.Data != "" {
		if p, err := keyboard.Decode(cb.Data); err == nil {
			return p.Action
		}
		return "malformed_callback"
	}

	if cmd := commandOf(c.Text()); cmd != "" {
		return cmd
	}

	if c.Text() != "" {
		return "text"
	}

	return "unknown"
}
