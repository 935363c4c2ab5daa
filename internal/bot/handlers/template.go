package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/flow"
)

// NewTemplateHandler returns the /template command handler, opening the
// customization menu.
func NewTemplateHandler(templates *flow.TemplateFlow, log *slog.Logger) Handler {
	return func(c telebot.Context) error {
		if c == nil || c.Chat() == nil {
			return nil
		}

		return templates.OpenMenu(context.Background(), c.Chat().ID)
	}
}

// HandleTemplateMenu switches the menu to the per-index selector for the
// chosen category.
func HandleTemplateMenu(templates *flow.TemplateFlow, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, p keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		if err := templates.ShowCategory(context.Background(), ref, c.Sender().ID, p.Arg); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{})
	}
}

// HandleSelectTemplate persists a template choice and keeps the menu open.
func HandleSelectTemplate(templates *flow.TemplateFlow, log *slog.Logger) CallbackHandler {
	return func(c telebot.Context, p keyboard.Payload) error {
		ref, ok := messageRef(c)
		if !ok || c.Sender() == nil {
			return nil
		}

		category, index, err := keyboard.SplitTemplateArg(p.Arg)
		if err != nil {
			if log != nil {
				log.Info("rejecting malformed template payload", slog.String("arg", p.Arg))
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Invalid selection."})
		}

		if err := templates.Choose(context.Background(), ref, c.Sender().ID, category, index); err != nil {
			return err
		}

		return c.Respond(&telebot.CallbackResponse{Text: "Template updated"})
	}
}
