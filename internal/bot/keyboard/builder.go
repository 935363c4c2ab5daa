package keyboard

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

const (
	// RosterMaxButtons caps how many roster entities get a button.
	RosterMaxButtons = 12
	// RosterRowWidth is the fixed width of roster button rows.
	RosterRowWidth = 4

	selectedMarker = "✅ "
)

// Builder creates the inline keyboards used by the card and template flows.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// ConfirmRow builds the save/discard confirmation row for a link preview.
// Both payloads embed the owning user id.
func (b *Builder) ConfirmRow(ownerID int64) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "Save ✅",
				Data: b.mustEncode(Payload{Action: ActionConfirmSave, OwnerID: ownerID}),
			},
			{
				Text: "Discard ❌",
				Data: b.mustEncode(Payload{Action: ActionConfirmDiscard, OwnerID: ownerID}),
			},
		},
	}
	return markup
}

// RosterGrid builds one button per roster entity, capped at RosterMaxButtons
// and arranged in fixed-width rows. Each payload embeds the entity id and the
// owning user id.
func (b *Builder) RosterGrid(entities []domain.Entity, ownerID int64) *telebot.ReplyMarkup {
	if len(entities) > RosterMaxButtons {
		entities = entities[:RosterMaxButtons]
	}

	var keyboard [][]telebot.InlineButton
	var row []telebot.InlineButton

	for _, entity := range entities {
		row = append(row, telebot.InlineButton{
			Text: entity.DisplayName,
			Data: b.mustEncode(Payload{
				Action:  ActionViewDetail,
				Arg:     fmt.Sprintf("%d", entity.ID),
				OwnerID: ownerID,
			}),
		})

		if len(row) == RosterRowWidth {
			keyboard = append(keyboard, row)
			row = nil
		}
	}

	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}

	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = keyboard
	return markup
}

// BackRow builds the single "go back" button shown on a character detail
// view.
func (b *Builder) BackRow(ownerID int64) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "⬅️ Back",
				Data: b.mustEncode(Payload{Action: ActionGoBack, OwnerID: ownerID}),
			},
		},
	}
	return markup
}

// TemplateMenu builds the top-level template customization menu.
func (b *Builder) TemplateMenu() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{
		{
			{
				Text: "📄 Profile Template",
				Data: b.mustEncode(Payload{Action: ActionTemplateMenu, Arg: string(domain.TemplateProfile)}),
			},
		},
		{
			{
				Text: "🃏 Card Template",
				Data: b.mustEncode(Payload{Action: ActionTemplateMenu, Arg: string(domain.TemplateCard)}),
			},
		},
	}
	return markup
}

// TemplateIndexMenu builds one button per template index for a category,
// marking the currently selected index.
func (b *Builder) TemplateIndexMenu(category domain.TemplateCategory, selected int) *telebot.ReplyMarkup {
	count := domain.TemplateRange(category)

	row := make([]telebot.InlineButton, 0, count)
	for i := 1; i <= count; i++ {
		text := fmt.Sprintf("Template %d", i)
		if i == selected {
			text = selectedMarker + text
		}

		row = append(row, telebot.InlineButton{
			Text: text,
			Data: b.mustEncode(Payload{
				Action: ActionSelectTemplate,
				Arg:    fmt.Sprintf("%s_%d", category, i),
			}),
		})
	}

	markup := &telebot.ReplyMarkup{}
	if len(row) > 0 {
		markup.InlineKeyboard = [][]telebot.InlineButton{row}
	}
	return markup
}

// mustEncode is safe for builder-generated payloads: every shape above stays
// far under the 64-byte limit. A failure still gets logged instead of
// panicking mid-update.
func (b *Builder) mustEncode(p Payload) string {
	data, err := Encode(p)
	if err != nil {
		b.log.Error("failed to encode callback payload", slog.String("action", p.Action), slog.Any("error", err))
		return p.Action
	}

	return data
}
