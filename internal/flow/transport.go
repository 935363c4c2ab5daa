// Package flow drives the card flows: linking an account, previewing the
// profile card, drilling into character build cards, and the template
// selection menu. Exactly one chat message is created per flow initiation;
// every later state change edits that same message in place.
package flow

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/session"
)

// Transport is the chat boundary the flows talk to. Edits are assumed
// atomic: either the message fully changes or its prior content remains.
//
// EditPhoto returns the reference of the resulting message: the very first
// photo transition replaces the plain-text placeholder (the chat API cannot
// turn text into media in place), after which the reference is stable and
// every navigation step edits it.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, markup *telebot.ReplyMarkup) (session.MessageRef, error)
	EditText(ctx context.Context, ref session.MessageRef, text string, markup *telebot.ReplyMarkup) error
	EditPhoto(ctx context.Context, ref session.MessageRef, photo []byte, caption string, markup *telebot.ReplyMarkup) (session.MessageRef, error)
	EditCaption(ctx context.Context, ref session.MessageRef, caption string, markup *telebot.ReplyMarkup) error
}
