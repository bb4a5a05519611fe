package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinebase/models"
)

// Minimal TMDB v3 client (popular listings, search, per-title details).
// It does pure translation: no caching and no retries, callers decide
// how to degrade.

const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrNotConfigured is returned when no API key is available. It is wrapped
// in an UpstreamError like any other provider failure.
var ErrNotConfigured = errors.New("tmdb api key not configured")

// UpstreamError reports a failed provider call. Status is zero for
// transport-level failures.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tmdb %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey, baseURL string, httpc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

func (c *Client) isConfigured() bool { return c.apiKey != "" }

type listPayload struct {
	Results []models.RawItem `json:"results"`
}

// FetchPopular returns one page of the provider's popular listing for the
// given kind, in provider order.
func (c *Client) FetchPopular(ctx context.Context, kind models.MediaKind, page int) ([]models.RawItem, error) {
	if page < 1 {
		page = 1
	}
	endpoint := "movie/popular"
	if kind == models.KindSeries {
		endpoint = "tv/popular"
	}
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))

	var payload listPayload
	if err := c.doGET(ctx, endpoint, q, &payload); err != nil {
		return nil, err
	}
	items := payload.Results
	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}

// Search queries the provider. An empty kind uses the combined endpoint;
// combined results carry a per-item media_type and anything that is not a
// movie or series (people, collections) is discarded.
func (c *Client) Search(ctx context.Context, term string, kind models.MediaKind) ([]models.RawItem, error) {
	endpoint := "search/multi"
	switch kind {
	case models.KindMovie:
		endpoint = "search/movie"
	case models.KindSeries:
		endpoint = "search/tv"
	}
	q := url.Values{}
	q.Set("query", term)

	var payload listPayload
	if err := c.doGET(ctx, endpoint, q, &payload); err != nil {
		return nil, err
	}

	items := make([]models.RawItem, 0, len(payload.Results))
	for _, item := range payload.Results {
		if kind != "" {
			item.Kind = kind
		} else if item.Kind != models.KindMovie && item.Kind != models.KindSeries {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchDetails returns the per-title enrichment (runtime, genres, credits).
// A 404 means the title has no detail record and yields (nil, nil); callers
// normalize with degraded fields in that case.
func (c *Client) FetchDetails(ctx context.Context, tmdbID int64, kind models.MediaKind) (*models.TitleDetails, error) {
	endpoint := fmt.Sprintf("movie/%d", tmdbID)
	if kind == models.KindSeries {
		endpoint = fmt.Sprintf("tv/%d", tmdbID)
	}
	q := url.Values{}
	q.Set("append_to_response", "credits")

	var details models.TitleDetails
	err := c.doGET(ctx, endpoint, q, &details)
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) doGET(ctx context.Context, endpoint string, q url.Values, v any) error {
	if !c.isConfigured() {
		return &UpstreamError{Endpoint: endpoint, Err: ErrNotConfigured}
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)

	u := c.baseURL + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &UpstreamError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
