package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

const startText = `👋 Welcome!

/link <account id> — link your game account (8–10 digits)
/profile — view your profile card and character roster
/template — customize card templates
/unlink — remove the linked account`

// NewStartHandler returns the /start and /help command handler.
func NewStartHandler(log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		if c.Sender() == nil {
			if log != nil {
				log.Warn("start handler invoked without sender")
			}
			return nil
		}

		return c.Send(startText)
	}
}
