package bot

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/flow"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

// TelegramTransport adapts telebot to the flow.Transport boundary. Telebot
// carries no context of its own, so the passed context is honored only as a
// pre-flight cancellation check.
type TelegramTransport struct {
	bot *telebot.Bot
	log *slog.Logger
}

// NewTelegramTransport wraps a telebot instance.
func NewTelegramTransport(tb *telebot.Bot, log *slog.Logger) *TelegramTransport {
	if log == nil {
		log = slog.Default()
	}

	return &TelegramTransport{bot: tb, log: log}
}

var _ flow.Transport = (*TelegramTransport)(nil)

// SendText sends a new plain-text message and returns its reference.
func (t *TelegramTransport) SendText(ctx context.Context, chatID int64, text string, markup *telebot.ReplyMarkup) (session.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return session.MessageRef{}, err
	}

	msg, err := t.bot.Send(telebot.ChatID(chatID), text, sendOptions(markup)...)
	if err != nil {
		return session.MessageRef{}, err
	}

	return refOf(msg), nil
}

// EditText replaces the message's text. Messages that already carry media
// have no text to edit, so the caption is edited instead.
func (t *TelegramTransport) EditText(ctx context.Context, ref session.MessageRef, text string, markup *telebot.ReplyMarkup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Edit(stored(ref), text, sendOptions(markup)...); err != nil {
		t.log.Debug("text edit rejected, retrying as caption edit",
			slog.String("message", ref.Key()),
			slog.Any("error", err),
		)
		return t.EditCaption(ctx, ref, text, markup)
	}

	return nil
}

// EditPhoto swaps the message's media for a new photo. The first photo
// transition of a flow edits a plain-text placeholder, which Telegram cannot
// convert in place; in that case the placeholder is replaced by a fresh photo
// message and the new reference is returned.
func (t *TelegramTransport) EditPhoto(ctx context.Context, ref session.MessageRef, photo []byte, caption string, markup *telebot.ReplyMarkup) (session.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return ref, err
	}

	media := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(photo)),
		Caption: caption,
	}

	msg, err := t.bot.Edit(stored(ref), media, sendOptions(markup)...)
	if err == nil {
		return refOf(msg), nil
	}

	sent, sendErr := t.bot.Send(telebot.ChatID(ref.ChatID), media, sendOptions(markup)...)
	if sendErr != nil {
		return ref, sendErr
	}

	if delErr := t.bot.Delete(stored(ref)); delErr != nil {
		t.log.Warn("failed to delete replaced placeholder",
			slog.String("message", ref.Key()),
			slog.Any("error", delErr),
		)
	}

	return refOf(sent), nil
}

// EditCaption replaces the caption of a media message. A nil markup removes
// the inline keyboard, ending the interactive part of the flow.
func (t *TelegramTransport) EditCaption(ctx context.Context, ref session.MessageRef, caption string, markup *telebot.ReplyMarkup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := t.bot.EditCaption(stored(ref), caption, sendOptions(markup)...)
	return err
}

func sendOptions(markup *telebot.ReplyMarkup) []interface{} {
	if markup == nil {
		// An explicit empty markup clears any existing keyboard.
		return []interface{}{&telebot.ReplyMarkup{}}
	}
	return []interface{}{markup}
}

func stored(ref session.MessageRef) telebot.Editable {
	return &telebot.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
}

func refOf(msg *telebot.Message) session.MessageRef {
	if msg == nil || msg.Chat == nil {
		return session.MessageRef{}
	}
	return session.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}
}
