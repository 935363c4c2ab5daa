package gamedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sayu-dev/showcase-bot/internal/domain"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/pkg/metrics"
)

const defaultRequestTimeout = 15 * time.Second

// ShowcaseClient is the HTTP implementation of RosterProvider backed by the
// public showcase API. Calls run behind a shared circuit breaker and the
// standard retry policy.
type ShowcaseClient struct {
	baseURL string
	client  *http.Client
	breaker *apperrors.CircuitBreaker
	log     *slog.Logger
}

// NewShowcaseClient constructs a client for the given API base URL.
func NewShowcaseClient(baseURL string, log *slog.Logger) *ShowcaseClient {
	if log == nil {
		log = slog.Default()
	}

	return &ShowcaseClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
		breaker: apperrors.NewCircuitBreaker(),
		log:     log,
	}
}

type showcaseResponse struct {
	Characters []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"characters"`
}

type rankingsResponse struct {
	Rankings map[string]struct {
		TopPercent float64 `json:"top_percent"`
		Rank       int64   `json:"rank"`
		PoolSize   int64   `json:"pool_size"`
	} `json:"rankings"`
}

// Roster fetches the showcased characters for the account. An empty result
// is returned as-is: the caller decides how to surface an empty or private
// profile.
func (c *ShowcaseClient) Roster(ctx context.Context, accountID string) ([]domain.Entity, error) {
	url := fmt.Sprintf("%s/api/uid/%s", c.baseURL, accountID)

	body, err := c.get(ctx, "showcase_roster", url)
	if err != nil {
		return nil, err
	}

	var decoded showcaseResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperrors.NewExternalAPIError("showcase", fmt.Errorf("decode roster response: %w", err))
	}

	entities := make([]domain.Entity, 0, len(decoded.Characters))
	for _, ch := range decoded.Characters {
		entities = append(entities, domain.Entity{
			ID:          ch.ID,
			DisplayName: ch.Name,
		})
	}

	return entities, nil
}

// Rankings fetches ranking stats keyed by character display name.
func (c *ShowcaseClient) Rankings(ctx context.Context, accountID string) (map[string]domain.RankingStat, error) {
	url := fmt.Sprintf("%s/api/rankings/%s", c.baseURL, accountID)

	body, err := c.get(ctx, "showcase_rankings", url)
	if err != nil {
		return nil, err
	}

	var decoded rankingsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperrors.NewExternalAPIError("showcase", fmt.Errorf("decode rankings response: %w", err))
	}

	stats := make(map[string]domain.RankingStat, len(decoded.Rankings))
	for name, s := range decoded.Rankings {
		stats[name] = domain.RankingStat{
			TopPercent: s.TopPercent,
			Rank:       s.Rank,
			PoolSize:   s.PoolSize,
		}
	}

	return stats, nil
}

// RefreshAssets asks the upstream service to update its rendering assets.
func (c *ShowcaseClient) RefreshAssets(ctx context.Context) error {
	url := fmt.Sprintf("%s/api/assets/refresh", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build assets refresh request: %w", err)
	}

	_, err = c.do("showcase_assets", req)
	return err
}

func (c *ShowcaseClient) get(ctx context.Context, operation, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return c.do(operation, req)
}

// do executes the request through the retry policy and circuit breaker,
// recording duration and status metrics per operation.
func (c *ShowcaseClient) do(operation string, req *http.Request) ([]byte, error) {
	var body []byte

	start := time.Now()
	err := apperrors.WithRetry(req.Context(), func() error {
		return c.breaker.Call(func() error {
			resp, callErr := c.client.Do(req)
			if callErr != nil {
				return apperrors.NewExternalAPIError("showcase", callErr)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusInternalServerError {
				return apperrors.NewExternalAPIError("showcase", fmt.Errorf("unexpected status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("showcase api status %d", resp.StatusCode)
			}

			data, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return apperrors.NewExternalAPIError("showcase", readErr)
			}

			body = data
			return nil
		})
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordCollaboratorRequest(operation, status, time.Since(start))

	if err != nil {
		c.log.Error("showcase api request failed",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return nil, err
	}

	return body, nil
}
