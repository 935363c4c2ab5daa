package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/repository"
)

const unlinkedText = "Account unlinked. Your template choices are kept."

// NewUnlinkHandler returns the /unlink command handler. Clearing a link that
// does not exist is a no-op and still reports success.
func NewUnlinkHandler(prefs repository.PreferenceRepository, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil {
			return nil
		}

		if err := prefs.ClearLinkedAccount(context.Background(), c.Sender().ID); err != nil {
			if log != nil {
				log.Error("failed to clear linked account", slog.Int64("user_id", c.Sender().ID), slog.Any("error", err))
			}
			return apperrors.NewDatabaseError(err)
		}

		return c.Send(unlinkedText)
	}
}
