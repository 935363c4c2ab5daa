package gamedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/pkg/metrics"
)

// renderTimeout is longer than the data timeout: the service rasterizes a
// full card per request.
const renderTimeout = 45 * time.Second

// RenderClient is the HTTP implementation of Renderer backed by the external
// card rendering service.
type RenderClient struct {
	baseURL string
	client  *http.Client
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewRenderClient constructs a client for the given render service base URL.
func NewRenderClient(baseURL string, log *slog.Logger) *RenderClient {
	if log == nil {
		log = slog.Default()
	}

	return &RenderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: renderTimeout},
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

type renderProfilePayload struct {
	AccountID string `json:"account_id"`
	Template  int    `json:"template"`
}

type renderCardPayload struct {
	AccountID   string              `json:"account_id"`
	CharacterID int64               `json:"character_id"`
	Template    int                 `json:"template"`
	Overlay     *renderOverlay      `json:"overlay,omitempty"`
	PortraitURL string              `json:"portrait_url,omitempty"`
}

type renderOverlay struct {
	TopPercent float64 `json:"top_percent"`
	Rank       int64   `json:"rank"`
	PoolSize   int64   `json:"pool_size"`
}

// RenderProfile renders the account profile card.
func (c *RenderClient) RenderProfile(ctx context.Context, accountID string, template int) ([]byte, error) {
	return c.post(ctx, "render_profile", "/render/profile", renderProfilePayload{
		AccountID: accountID,
		Template:  template,
	})
}

// RenderCard renders a single character build card, optionally with a
// ranking overlay and a custom portrait.
func (c *RenderClient) RenderCard(ctx context.Context, req CardRequest) ([]byte, error) {
	payload := renderCardPayload{
		AccountID:   req.AccountID,
		CharacterID: req.EntityID,
		Template:    req.Template,
		PortraitURL: req.PortraitURL,
	}

	if req.Overlay != nil {
		payload.Overlay = &renderOverlay{
			TopPercent: req.Overlay.TopPercent,
			Rank:       req.Overlay.Rank,
			PoolSize:   req.Overlay.PoolSize,
		}
	}

	return c.post(ctx, "render_card", "/render/card", payload)
}

func (c *RenderClient) post(ctx context.Context, operation, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode render payload: %w", err)
	}

	var image []byte

	start := time.Now()
	err = apperrors.WithRetry(ctx, func() error {
		return c.breaker.Call(func() error {
			req, buildErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
			if buildErr != nil {
				return fmt.Errorf("build render request: %w", buildErr)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, callErr := c.client.Do(req)
			if callErr != nil {
				return apperrors.NewExternalAPIError("render", callErr)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusInternalServerError {
				return apperrors.NewExternalAPIError("render", fmt.Errorf("unexpected status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("render service status %d", resp.StatusCode)
			}

			data, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return apperrors.NewExternalAPIError("render", readErr)
			}

			image = data
			return nil
		})
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordCollaboratorRequest(operation, status, time.Since(start))

	if err != nil {
		c.log.Error("render request failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return nil, err
	}

	return image, nil
}
