package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/domain"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/repository"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

const (
	templateMenuText   = "⚙️ Choose what to customize:"
	templateSelectText = "Select %s template:"
	categoryProfile    = "Profile"
	categoryCard       = "Card"
)

// TemplateFlow is the template selection sub-flow. It shares the preference
// store with the card flow but none of its session state: the menu is keyed
// purely by the editing message and the acting user's own id, so it carries
// no delegated authority over anyone else's data.
type TemplateFlow struct {
	prefs     repository.PreferenceRepository
	transport Transport
	kb        *keyboard.Builder
	log       *slog.Logger
}

// NewTemplateFlow wires the sub-flow.
func NewTemplateFlow(prefs repository.PreferenceRepository, transport Transport, kb *keyboard.Builder, log *slog.Logger) *TemplateFlow {
	if log == nil {
		log = slog.Default()
	}

	return &TemplateFlow{
		prefs:     prefs,
		transport: transport,
		kb:        kb,
		log:       log,
	}
}

// OpenMenu sends the top-level customization menu as a new message.
func (f *TemplateFlow) OpenMenu(ctx context.Context, chatID int64) error {
	if _, err := f.transport.SendText(ctx, chatID, templateMenuText, f.kb.TemplateMenu()); err != nil {
		return fmt.Errorf("send template menu: %w", err)
	}

	return nil
}

// ShowCategory edits the menu message into the per-index selector for a
// category, marking the user's current choice.
func (f *TemplateFlow) ShowCategory(ctx context.Context, ref session.MessageRef, userID int64, rawCategory string) error {
	category, err := parseCategory(rawCategory)
	if err != nil {
		return err
	}

	selected, err := f.prefs.GetTemplateChoice(ctx, userID, category)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	text := fmt.Sprintf(templateSelectText, categoryLabel(category))
	if err := f.transport.EditText(ctx, ref, text, f.kb.TemplateIndexMenu(category, selected)); err != nil {
		return fmt.Errorf("edit template selector: %w", err)
	}

	return nil
}

// Choose persists the user's template choice and re-renders the same menu in
// place with the updated marker. The menu stays open for repeated changes.
func (f *TemplateFlow) Choose(ctx context.Context, ref session.MessageRef, userID int64, rawCategory string, index int) error {
	category, err := parseCategory(rawCategory)
	if err != nil {
		return err
	}

	if index < 1 || index > domain.TemplateRange(category) {
		return apperrors.NewValidationError("Invalid selection.")
	}

	if err := f.prefs.SetTemplateChoice(ctx, userID, category, index); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	text := fmt.Sprintf(templateSelectText, categoryLabel(category))
	if err := f.transport.EditText(ctx, ref, text, f.kb.TemplateIndexMenu(category, index)); err != nil {
		return fmt.Errorf("edit template selector: %w", err)
	}

	return nil
}

func parseCategory(raw string) (domain.TemplateCategory, error) {
	switch domain.TemplateCategory(raw) {
	case domain.TemplateProfile:
		return domain.TemplateProfile, nil
	case domain.TemplateCard:
		return domain.TemplateCard, nil
	default:
		return "", apperrors.NewValidationError("Invalid selection.")
	}
}

func categoryLabel(category domain.TemplateCategory) string {
	if category == domain.TemplateCard {
		return categoryCard
	}
	return categoryProfile
}
