// Package handlers holds asynq task handlers.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sayu-dev/showcase-bot/internal/gamedata"
	"github.com/sayu-dev/showcase-bot/internal/jobs"
)

// AssetRefreshHandler asks the showcase service to update its rendering
// assets (character art, templates) so newly released characters render
// correctly.
type AssetRefreshHandler struct {
	refresher gamedata.AssetRefresher
	log       *slog.Logger
}

// NewAssetRefreshHandler builds the handler.
func NewAssetRefreshHandler(refresher gamedata.AssetRefresher, log *slog.Logger) *AssetRefreshHandler {
	if log == nil {
		log = slog.Default()
	}

	return &AssetRefreshHandler{
		refresher: refresher,
		log:       log,
	}
}

// ProcessTask implements asynq.Handler.
func (h *AssetRefreshHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.AssetRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode asset refresh payload: %w", err)
	}

	h.log.Info("refreshing rendering assets", slog.String("reason", payload.Reason))

	if err := h.refresher.RefreshAssets(ctx); err != nil {
		h.log.Error("asset refresh failed", slog.Any("error", err))
		return err
	}

	h.log.Info("rendering assets refreshed")
	return nil
}
