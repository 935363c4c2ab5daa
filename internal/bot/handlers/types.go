package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

// Handler processes bot commands and plain text messages.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events. The router decodes the
// callback data once and hands the payload down.
type CallbackHandler func(c telebot.Context, p keyboard.Payload) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// messageRef extracts the session key of the message the update refers to.
// For callbacks this is the message carrying the pressed button.
func messageRef(c telebot.Context) (session.MessageRef, bool) {
	msg := c.Message()
	if msg == nil || msg.Chat == nil {
		return session.MessageRef{}, false
	}

	return session.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}, true
}
