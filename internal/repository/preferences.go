package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

// ErrNotFound indicates that no record exists for the requested key.
var ErrNotFound = errors.New("record not found")

// PreferenceRepository defines persistence operations for per-user
// preferences. All writes are single-field upserts: concurrent writes for the
// same user resolve last-write-wins, which is acceptable because writes are
// user-driven and serialized per chat by the transport.
type PreferenceRepository interface {
	GetLinkedAccount(ctx context.Context, userID int64) (string, error)
	SetLinkedAccount(ctx context.Context, userID int64, accountID string) error
	ClearLinkedAccount(ctx context.Context, userID int64) error
	GetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory) (int, error)
	SetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory, index int) error
	GetPreferences(ctx context.Context, userID int64) (*domain.UserPreference, error)
}

type preferenceRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPreferenceRepository creates a SQL-backed preference repository.
func NewPreferenceRepository(db *sql.DB, log *slog.Logger) PreferenceRepository {
	return &preferenceRepository{
		db:  db,
		log: log,
	}
}

// GetLinkedAccount returns the linked account id or ErrNotFound when the user
// has none.
func (r *preferenceRepository) GetLinkedAccount(ctx context.Context, userID int64) (string, error) {
	const query = `
		SELECT linked_account_id
		FROM user_preferences
		WHERE user_id = $1
	`

	var accountID sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}

		r.logError("get_linked_account", userID, err)
		return "", fmt.Errorf("select linked account: %w", err)
	}

	if !accountID.Valid || accountID.String == "" {
		return "", ErrNotFound
	}

	return accountID.String, nil
}

// SetLinkedAccount upserts the linked account id, replacing any previous
// value. Template choices in the same row are left untouched.
func (r *preferenceRepository) SetLinkedAccount(ctx context.Context, userID int64, accountID string) error {
	const query = `
		INSERT INTO user_preferences (user_id, linked_account_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET linked_account_id = EXCLUDED.linked_account_id, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, userID, accountID); err != nil {
		r.logError("set_linked_account", userID, err)
		return fmt.Errorf("upsert linked account: %w", err)
	}

	return nil
}

// ClearLinkedAccount removes only the linked account id; a no-op when the
// user has no record.
func (r *preferenceRepository) ClearLinkedAccount(ctx context.Context, userID int64) error {
	const query = `
		UPDATE user_preferences
		SET linked_account_id = NULL, updated_at = NOW()
		WHERE user_id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		r.logError("clear_linked_account", userID, err)
		return fmt.Errorf("clear linked account: %w", err)
	}

	return nil
}

// GetTemplateChoice returns the stored index for the category, defaulting to
// domain.DefaultTemplateIndex when unset or when the user has no record.
func (r *preferenceRepository) GetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory) (int, error) {
	column, err := templateColumn(category)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(%s, %d)
		FROM user_preferences
		WHERE user_id = $1
	`, column, domain.DefaultTemplateIndex)

	var index int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&index); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultTemplateIndex, nil
		}

		r.logError("get_template_choice", userID, err)
		return 0, fmt.Errorf("select template choice: %w", err)
	}

	if index <= 0 {
		index = domain.DefaultTemplateIndex
	}

	return index, nil
}

// SetTemplateChoice upserts a single category column, leaving the other
// category and the linked account untouched.
func (r *preferenceRepository) SetTemplateChoice(ctx context.Context, userID int64, category domain.TemplateCategory, index int) error {
	column, err := templateColumn(category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO user_preferences (user_id, %s, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET %s = EXCLUDED.%s, updated_at = NOW()
	`, column, column, column)

	if _, err := r.db.ExecContext(ctx, query, userID, index); err != nil {
		r.logError("set_template_choice", userID, err)
		return fmt.Errorf("upsert template choice: %w", err)
	}

	return nil
}

// GetPreferences loads the full preference row, ErrNotFound when absent.
func (r *preferenceRepository) GetPreferences(ctx context.Context, userID int64) (*domain.UserPreference, error) {
	const query = `
		SELECT user_id, COALESCE(linked_account_id, ''),
		       COALESCE(profile_template, 0), COALESCE(card_template, 0),
		       updated_at
		FROM user_preferences
		WHERE user_id = $1
	`

	var pref domain.UserPreference
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&pref.LinkedAccountID,
		&pref.ProfileTemplate,
		&pref.CardTemplate,
		&pref.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("get_preferences", userID, err)
		return nil, fmt.Errorf("select preferences: %w", err)
	}

	return &pref, nil
}

// templateColumn maps a category to its column. Category names never reach
// SQL directly; only the two known columns can be interpolated.
func templateColumn(category domain.TemplateCategory) (string, error) {
	switch category {
	case domain.TemplateProfile:
		return "profile_template", nil
	case domain.TemplateCard:
		return "card_template", nil
	default:
		return "", fmt.Errorf("unknown template category %q", category)
	}
}

func (r *preferenceRepository) logError(operation string, userID int64, err error) {
	if r == nil || r.log == nil || err == nil {
		return
	}

	r.log.Error("preference repository operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}
