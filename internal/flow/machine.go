package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	"github.com/sayu-dev/showcase-bot/internal/domain"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/gamedata"
	"github.com/sayu-dev/showcase-bot/internal/repository"
	"github.com/sayu-dev/showcase-bot/internal/session"
)

const (
	fetchingText    = "⏳ Fetching account data & generating card..."
	emptyRosterText = "No characters found or the profile is private."
	linkPreviewText = "📋 Account %s preview. Save this link?"
	linkSavedText   = "✅ Account %s linked."
	linkDiscardText = "Link discarded. Use /link to try a different account."
	profileCaption  = "📋 Account %s Profile"
	detailCaption   = "🔧 Build: %s\nRanking: %s"
	entityMissing   = "Character not found in your profile."
)

var errInvalidAccountID = apperrors.NewValidationError("Invalid account id: expected 8–10 digits.")

// Machine is the card flow state machine. It owns no transport or storage
// itself; it coordinates the preference store, the session registry, and the
// two external collaborators, pushing every result through a single
// in-place-edited message.
type Machine struct {
	prefs     repository.PreferenceRepository
	portraits repository.PortraitRepository
	provider  gamedata.RosterProvider
	renderer  gamedata.Renderer
	registry  *session.Registry
	transport Transport
	kb        *keyboard.Builder
	log       *slog.Logger
}

// NewMachine wires a Machine from its collaborators.
func NewMachine(
	prefs repository.PreferenceRepository,
	portraits repository.PortraitRepository,
	provider gamedata.RosterProvider,
	renderer gamedata.Renderer,
	registry *session.Registry,
	transport Transport,
	kb *keyboard.Builder,
	log *slog.Logger,
) *Machine {
	if log == nil {
		log = slog.Default()
	}

	return &Machine{
		prefs:     prefs,
		portraits: portraits,
		provider:  provider,
		renderer:  renderer,
		registry:  registry,
		transport: transport,
		kb:        kb,
		log:       log,
	}
}

// LinkAccount starts the link flow: validate, send a placeholder, fetch the
// roster, render a preview, and park the account id behind a save/discard
// confirmation. Validation failures return before any collaborator call.
func (m *Machine) LinkAccount(ctx context.Context, userID, chatID int64, rawID string) error {
	rawID = strings.TrimSpace(rawID)
	if err := ValidateAccountID(rawID); err != nil {
		return err
	}

	// Only one preview may be pending per user; starting over invalidates
	// the previous one.
	m.registry.ForgetPendingFor(userID)

	ref, err := m.transport.SendText(ctx, chatID, fetchingText, nil)
	if err != nil {
		return fmt.Errorf("send link placeholder: %w", err)
	}

	m.registry.RegisterOwner(ref, userID)

	roster, err := m.provider.Roster(ctx, rawID)
	if err != nil {
		return m.failTerminal(ctx, ref, apperrors.NewUpstreamDataError(err))
	}

	if len(roster) == 0 {
		return m.failTerminal(ctx, ref, apperrors.NewUpstreamDataError(errors.New(emptyRosterText)))
	}

	template, err := m.prefs.GetTemplateChoice(ctx, userID, domain.TemplateProfile)
	if err != nil {
		return m.failTerminal(ctx, ref, apperrors.NewDatabaseError(err))
	}

	image, err := m.renderer.RenderProfile(ctx, rawID, template)
	if err != nil {
		return m.failTerminal(ctx, ref, apperrors.NewRenderError(err))
	}

	caption := fmt.Sprintf(linkPreviewText, rawID)
	finalRef, err := m.transport.EditPhoto(ctx, ref, image, caption, m.kb.ConfirmRow(userID))
	if err != nil {
		return fmt.Errorf("edit link preview: %w", err)
	}

	if finalRef != ref {
		m.registry.Forget(ref)
	}

	m.registry.Put(session.FlowSession{
		Ref:              finalRef,
		OwnerID:          userID,
		Kind:             session.KindPendingLinkConfirmation,
		PendingAccountID: rawID,
		CurrentAccountID: rawID,
	})

	return nil
}

// ConfirmSave persists the pending account id as the owner's linked account.
// A press with no pending state (restart, double-tap) ends in an expired
// notice and writes nothing.
func (m *Machine) ConfirmSave(ctx context.Context, ref session.MessageRef, actingUserID int64) error {
	if err := m.ensureOwner(ctx, ref, actingUserID); err != nil {
		return err
	}

	return m.registry.Update(ref, func(sess *session.FlowSession) error {
		if sess.Kind != session.KindPendingLinkConfirmation || sess.PendingAccountID == "" {
			expired := apperrors.NewSessionExpiredError()
			if editErr := m.transport.EditCaption(ctx, ref, expired.UserMessage, nil); editErr != nil {
				m.log.Error("failed to edit expired confirmation", slog.Any("error", editErr))
			}
			return expired
		}

		if err := m.prefs.SetLinkedAccount(ctx, sess.OwnerID, sess.PendingAccountID); err != nil {
			return apperrors.NewDatabaseError(err)
		}

		caption := fmt.Sprintf(linkSavedText, sess.PendingAccountID)
		if err := m.transport.EditCaption(ctx, ref, caption, nil); err != nil {
			return fmt.Errorf("edit save confirmation: %w", err)
		}

		sess.PendingAccountID = ""
		return nil
	})
}

// ConfirmDiscard drops the pending link and clears any previously linked
// account, honoring the same ownership and expiry checks as ConfirmSave.
func (m *Machine) ConfirmDiscard(ctx context.Context, ref session.MessageRef, actingUserID int64) error {
	if err := m.ensureOwner(ctx, ref, actingUserID); err != nil {
		return err
	}

	return m.registry.Update(ref, func(sess *session.FlowSession) error {
		if sess.Kind != session.KindPendingLinkConfirmation || sess.PendingAccountID == "" {
			expired := apperrors.NewSessionExpiredError()
			if editErr := m.transport.EditCaption(ctx, ref, expired.UserMessage, nil); editErr != nil {
				m.log.Error("failed to edit expired confirmation", slog.Any("error", editErr))
			}
			return expired
		}

		if err := m.prefs.ClearLinkedAccount(ctx, sess.OwnerID); err != nil {
			return apperrors.NewDatabaseError(err)
		}

		if err := m.transport.EditCaption(ctx, ref, linkDiscardText, nil); err != nil {
			return fmt.Errorf("edit discard notice: %w", err)
		}

		sess.PendingAccountID = ""
		return nil
	})
}

// ViewProfile opens a profile view for the user's linked account in a fresh
// message.
func (m *Machine) ViewProfile(ctx context.Context, userID, chatID int64) error {
	accountID, err := m.prefs.GetLinkedAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotLinkedError()
		}
		return apperrors.NewDatabaseError(err)
	}

	ref, err := m.transport.SendText(ctx, chatID, fetchingText, nil)
	if err != nil {
		return fmt.Errorf("send profile placeholder: %w", err)
	}

	m.registry.RegisterOwner(ref, userID)

	finalRef, live, err := m.renderProfileView(ctx, ref, userID, accountID)
	if err != nil {
		return err
	}
	if !live {
		m.registry.Forget(ref)
		return nil
	}

	if finalRef != ref {
		m.registry.Forget(ref)
	}

	m.registry.Put(session.FlowSession{
		Ref:              finalRef,
		OwnerID:          userID,
		Kind:             session.KindProfileView,
		CurrentAccountID: accountID,
	})

	return nil
}

// ViewDetail drills into a single character's build card, editing the
// profile message in place. The roster and rankings are re-fetched rather
// than cached across the transition: freshness over latency.
func (m *Machine) ViewDetail(ctx context.Context, ref session.MessageRef, actingUserID, entityID int64) error {
	if err := m.ensureOwner(ctx, ref, actingUserID); err != nil {
		return err
	}

	terminal := false

	err := m.registry.Update(ref, func(sess *session.FlowSession) error {
		if sess.CurrentAccountID == "" || !session.IsTransitionAllowed(sess.Kind, session.KindCharacterDetailView) {
			return apperrors.NewSessionExpiredError()
		}

		accountID := sess.CurrentAccountID

		roster, err := m.provider.Roster(ctx, accountID)
		if err != nil {
			terminal = true
			return m.editFailure(ctx, ref, apperrors.NewUpstreamDataError(err))
		}

		var entity *domain.Entity
		for i := range roster {
			if roster[i].ID == entityID {
				entity = &roster[i]
				break
			}
		}
		if entity == nil {
			return apperrors.NewValidationError(entityMissing)
		}

		stat := m.lookupRanking(ctx, accountID, entity.DisplayName)

		template, err := m.prefs.GetTemplateChoice(ctx, sess.OwnerID, domain.TemplateCard)
		if err != nil {
			return apperrors.NewDatabaseError(err)
		}

		portraitURL := m.lookupPortrait(ctx, sess.OwnerID, entity.DisplayName)

		image, err := m.renderer.RenderCard(ctx, gamedata.CardRequest{
			AccountID:   accountID,
			EntityID:    entity.ID,
			Template:    template,
			Overlay:     stat,
			PortraitURL: portraitURL,
		})
		if err != nil {
			terminal = true
			return m.editFailure(ctx, ref, apperrors.NewRenderError(err))
		}

		// Photo-to-photo edit: the message reference is already stable here.
		caption := fmt.Sprintf(detailCaption, entity.DisplayName, FormatRanking(stat))
		if _, err := m.transport.EditPhoto(ctx, ref, image, caption, m.kb.BackRow(sess.OwnerID)); err != nil {
			return fmt.Errorf("edit detail view: %w", err)
		}

		sess.Kind = session.KindCharacterDetailView
		return nil
	})

	if terminal {
		m.registry.Forget(ref)
	}

	return err
}

// GoBack re-renders the profile view for the session's current account,
// replacing the detail view in place.
func (m *Machine) GoBack(ctx context.Context, ref session.MessageRef, actingUserID int64) error {
	if err := m.ensureOwner(ctx, ref, actingUserID); err != nil {
		return err
	}

	terminal := false

	err := m.registry.Update(ref, func(sess *session.FlowSession) error {
		if sess.CurrentAccountID == "" || !session.IsTransitionAllowed(sess.Kind, session.KindProfileView) {
			return apperrors.NewSessionExpiredError()
		}

		_, live, err := m.renderProfileView(ctx, ref, sess.OwnerID, sess.CurrentAccountID)
		if err != nil {
			return err
		}
		if !live {
			terminal = true
			return nil
		}

		sess.Kind = session.KindProfileView
		return nil
	})

	if terminal {
		m.registry.Forget(ref)
	}

	return err
}

// ensureOwner guards a button press. A message with no session at all
// (restart, TTL eviction) gets an expired notice edited onto it; a live
// session owned by someone else is rejected without touching the message.
func (m *Machine) ensureOwner(ctx context.Context, ref session.MessageRef, actingUserID int64) error {
	if _, err := m.registry.Get(ref); errors.Is(err, session.ErrSessionNotFound) {
		expired := apperrors.NewSessionExpiredError()
		if editErr := m.transport.EditCaption(ctx, ref, expired.UserMessage, nil); editErr != nil {
			m.log.Error("failed to edit expired message", slog.Any("error", editErr))
		}
		return expired
	}

	if !m.registry.CheckOwner(ref, actingUserID) {
		return apperrors.NewAuthorizationError()
	}

	return nil
}

// renderProfileView fetches the roster, renders the profile card, and edits
// ref into the photo-plus-roster-keyboard presentation. Shared between the
// fresh profile view and the go-back path so both produce an identical
// layout. Returns the reference of the resulting message, which differs from
// ref only when the placeholder had to be replaced, and whether the flow is
// still live: a false with a nil error means the message was edited into a
// terminal failure notice and the caller must not keep a session for it.
func (m *Machine) renderProfileView(ctx context.Context, ref session.MessageRef, userID int64, accountID string) (session.MessageRef, bool, error) {
	roster, err := m.provider.Roster(ctx, accountID)
	if err != nil {
		return ref, false, m.editFailure(ctx, ref, apperrors.NewUpstreamDataError(err))
	}

	if len(roster) == 0 {
		return ref, false, m.editFailure(ctx, ref, apperrors.NewUpstreamDataError(errors.New(emptyRosterText)))
	}

	// Best-effort: ranking data is supplementary for the profile view and
	// its absence must not abort the render.
	if _, err := m.provider.Rankings(ctx, accountID); err != nil {
		m.log.Warn("ranking fetch failed, degrading view",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}

	template, err := m.prefs.GetTemplateChoice(ctx, userID, domain.TemplateProfile)
	if err != nil {
		return ref, false, m.editFailure(ctx, ref, apperrors.NewDatabaseError(err))
	}

	image, err := m.renderer.RenderProfile(ctx, accountID, template)
	if err != nil {
		return ref, false, m.editFailure(ctx, ref, apperrors.NewRenderError(err))
	}

	caption := fmt.Sprintf(profileCaption, accountID)
	finalRef, err := m.transport.EditPhoto(ctx, ref, image, caption, m.kb.RosterGrid(roster, userID))
	if err != nil {
		return ref, false, fmt.Errorf("edit profile view: %w", err)
	}

	return finalRef, true, nil
}

// lookupRanking re-fetches rankings and returns the stat for the entity, or
// nil when the fetch fails or the entity has no entry. Always degraded, never
// fatal.
func (m *Machine) lookupRanking(ctx context.Context, accountID, displayName string) *domain.RankingStat {
	rankings, err := m.provider.Rankings(ctx, accountID)
	if err != nil {
		m.log.Warn("ranking fetch failed, showing placeholder",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
		return nil
	}

	stat, ok := rankings[displayName]
	if !ok {
		return nil
	}

	return &stat
}

// lookupPortrait resolves a custom portrait URL, empty when none is stored.
func (m *Machine) lookupPortrait(ctx context.Context, userID int64, displayName string) string {
	if m.portraits == nil {
		return ""
	}

	link, err := m.portraits.Get(ctx, userID, displayName)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			m.log.Warn("portrait lookup failed",
				slog.Int64("user_id", userID),
				slog.Any("error", err),
			)
		}
		return ""
	}

	return link.ImageURL
}

// failTerminal edits the message into a final explanatory state with no
// buttons and ends the flow. The underlying error is logged, not returned:
// the user-facing edit is the report.
func (m *Machine) failTerminal(ctx context.Context, ref session.MessageRef, appErr *apperrors.AppError) error {
	if err := m.editFailure(ctx, ref, appErr); err != nil {
		return err
	}

	m.registry.Forget(ref)
	return nil
}

func (m *Machine) editFailure(ctx context.Context, ref session.MessageRef, appErr *apperrors.AppError) error {
	m.log.Error("flow step failed",
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
	)

	if err := m.transport.EditText(ctx, ref, appErr.UserMessage, nil); err != nil {
		return fmt.Errorf("edit failure notice: %w", err)
	}

	return nil
}
