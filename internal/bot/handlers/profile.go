package handlers

import (
	"context"
	"log/slog"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/flow"
)

// NewProfileHandler returns the /profile command handler. It opens a fresh
// profile view for the sender's linked account.
func NewProfileHandler(machine *flow.Machine, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Chat() == nil {
			return nil
		}

		return machine.ViewProfile(context.Background(), c.Sender().ID, c.Chat().ID)
	}
}

// HandleViewDetail drills into a character build card from the roster grid.
func HandleViewDetail(machine *flow.Machine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, p keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		entityID, err := strconv.ParseInt(p.Arg, 10, 64)
		if err != nil || entityID <= 0 {
			if log != nil {
				log.Info("rejecting malformed detail payload", slog.String("arg", p.Arg))
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Invalid selection."})
		}

		if err := machine.ViewDetail(context.Background(), ref, c.Sender().ID, entityID); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{})
	}
}

// HandleGoBack returns from a build card to the roster view.
func HandleGoBack(machine *flow.Machine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, _ keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		if err := machine.GoBack(context.Background(), ref, c.Sender().ID); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{})
	}
}
