package handlers

import (
	"context"
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/flow"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

const linkPromptText = "Send your account id (8–10 digits)."

// NewLinkHandler returns the /link command handler. With an argument it
// starts the link flow immediately; without one it arms the awaiting-input
// flag so the user's next plain message is treated as the account id.
func NewLinkHandler(machine *flow.Machine, registry *session.Registry, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Chat() == nil {
			return nil
		}

		args := c.Args()
		if len(args) == 0 {
			registry.SetAwaitingInput(c.Sender().ID, true)
			return c.Send(linkPromptText)
		}

		registry.SetAwaitingInput(c.Sender().ID, false)

		return machine.LinkAccount(context.Background(), c.Sender().ID, c.Chat().ID, args[0])
	}
}

// NewAccountInputHandler returns the fallback text handler. It consumes a
// message only when the sender previously issued /link without an argument;
// all other text is ignored.
func NewAccountInputHandler(machine *flow.Machine, registry *session.Registry, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Sender() == nil || c.Chat() == nil {
			return nil
		}

		userID := c.Sender().ID
		if !registry.AwaitingInput(userID) {
			return nil
		}

		registry.SetAwaitingInput(userID, false)

		return machine.LinkAccount(context.Background(), userID, c.Chat().ID, strings.TrimSpace(c.Text()))
	}
}

// HandleConfirmSave persists the pending link when its owner presses Save.
func HandleConfirmSave(machine *flow.Machine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, _ keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		if err := machine.ConfirmSave(context.Background(), ref, c.Sender().ID); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{Text: "Saved"})
	}
}

// HandleConfirmDiscard drops the pending link when its owner presses Discard.
func HandleConfirmDiscard(machine *flow.Machine, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, _ keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		if err := machine.ConfirmDiscard(context.Background(), ref, c.Sender().ID); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{Text: "Discarded"})
	}
}
