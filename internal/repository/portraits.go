package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

// PortraitRepository stores custom portrait links keyed by user id and
// lowercased character name.
type PortraitRepository interface {
	Get(ctx context.Context, userID int64, entityName string) (*domain.PortraitLink, error)
	Set(ctx context.Context, userID int64, entityName, imageURL string) error
	Delete(ctx context.Context, userID int64, entityName string) error
}

type portraitRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPortraitRepository creates a SQL-backed portrait repository.
func NewPortraitRepository(db *sql.DB, log *slog.Logger) PortraitRepository {
	return &portraitRepository{
		db:  db,
		log: log,
	}
}

// Get returns the portrait link for the pair or ErrNotFound.
func (r *portraitRepository) Get(ctx context.Context, userID int64, entityName string) (*domain.PortraitLink, error) {
	const query = `
		SELECT user_id, entity_name, image_url, updated_at
		FROM custom_portraits
		WHERE user_id = $1 AND entity_name = $2
	`

	var link domain.PortraitLink
	if err := r.db.QueryRowContext(ctx, query, userID, normalizeName(entityName)).Scan(
		&link.UserID,
		&link.EntityName,
		&link.ImageURL,
		&link.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		r.logError("get_portrait", userID, err)
		return nil, fmt.Errorf("select portrait: %w", err)
	}

	return &link, nil
}

// Set upserts the portrait link for the pair.
func (r *portraitRepository) Set(ctx context.Context, userID int64, entityName, imageURL string) error {
	const query = `
		INSERT INTO custom_portraits (user_id, entity_name, image_url, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, entity_name) DO UPDATE
		SET image_url = EXCLUDED.image_url, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, userID, normalizeName(entityName), imageURL); err != nil {
		r.logError("set_portrait", userID, err)
		return fmt.Errorf("upsert portrait: %w", err)
	}

	return nil
}

// Delete removes the link; a no-op when absent.
func (r *portraitRepository) Delete(ctx context.Context, userID int64, entityName string) error {
	const query = `
		DELETE FROM custom_portraits
		WHERE user_id = $1 AND entity_name = $2
	`

	if _, err := r.db.ExecContext(ctx, query, userID, normalizeName(entityName)); err != nil {
		r.logError("delete_portrait", userID, err)
		return fmt.Errorf("delete portrait: %w", err)
	}

	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *portraitRepository) logError(operation string, userID int64, err error) {
	if r == nil || r.log == nil || err == nil {
		return
	}

	r.log.Error("portrait repository operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}
