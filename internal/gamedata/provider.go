// Package gamedata defines the boundary to the two external collaborators:
// the showcase API that supplies rosters and ranking stats, and the render
// service that turns account data into card images. The bot consumes these
// as opaque operations and makes no correctness guarantees about them.
package gamedata

import (
	"context"

	"github.com/sayu-dev/showcase-bot/internal/domain"
)

// RosterProvider supplies the playable roster and ranking stats for a linked
// account.
type RosterProvider interface {
	// Roster returns the account's showcased characters. An empty slice
	// means the profile is empty or private.
	Roster(ctx context.Context, accountID string) ([]domain.Entity, error)
	// Rankings returns per-character ranking stats keyed by display name.
	// Callers treat failures as a degraded view, not a fatal error.
	Rankings(ctx context.Context, accountID string) (map[string]domain.RankingStat, error)
}

// Renderer produces card images through the external rendering service.
type Renderer interface {
	RenderProfile(ctx context.Context, accountID string, template int) ([]byte, error)
	RenderCard(ctx context.Context, req CardRequest) ([]byte, error)
}

// CardRequest carries everything the render service needs for a single
// character build card.
type CardRequest struct {
	AccountID   string
	EntityID    int64
	Template    int
	Overlay     *domain.RankingStat
	PortraitURL string
}

// AssetRefresher updates the upstream rendering assets (character art,
// localization tables). Run at startup and on a schedule.
type AssetRefresher interface {
	RefreshAssets(ctx context.Context) error
}
