package datacube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/basinwatch/basin-cli/internal/resilience"
)

// Client defines the archive operations used by the polygon drill.
type Client interface {
	// Scenes lists the scenes of a product intersecting bbox with
	// acquisition time strictly after from, in chronological order.
	// A zero from returns the full history.
	Scenes(ctx context.Context, product string, bbox BBox, from time.Time) ([]Scene, error)
	// Pixels fetches one scene's water-flag block clipped to bbox.
	Pixels(ctx context.Context, sceneID string, bbox BBox) (*Grid, error)
	// Drill lists scenes and fetches every pixel block, preserving the
	// chronological scene order in the result.
	Drill(ctx context.Context, product string, bbox BBox, from time.Time) ([]SceneGrid, error)
}

// Options configures the archive client.
type Options struct {
	BaseURL          string
	Token            string
	Timeout          time.Duration
	MaxRetries       int
	RatePerSec       float64
	FetchConcurrency int
	HTTPClient       *http.Client
}

type httpClient struct {
	baseURL     string
	token       string
	http        *http.Client
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
	concurrency int
}

// NewClient creates an archive client.
func NewClient(opts Options) Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 4
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = 4
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries
	}

	return &httpClient{
		baseURL:     opts.BaseURL,
		token:       opts.Token,
		http:        hc,
		limiter:     rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		retry:       retry,
		concurrency: opts.FetchConcurrency,
	}
}

// get performs a rate-limited GET with retries on transient failures and
// decodes the JSON response into out.
func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	retry := c.retry
	retry.OnRetry = resilience.RetryLogger(path)

	return resilience.Do(ctx, retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "datacube: create request")
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "datacube: request")
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "datacube: read response body")
		}

		if resp.StatusCode != http.StatusOK {
			statusErr := eris.Errorf("datacube: %s: status %d: %s", path, resp.StatusCode, string(body))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.NewTransientError(statusErr, resp.StatusCode)
			}
			return statusErr
		}

		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrapf(err, "datacube: unmarshal %s response", path)
		}
		return nil
	})
}

type scenesResponse struct {
	Scenes []Scene `json:"scenes"`
}

func (c *httpClient) Scenes(ctx context.Context, product string, bbox BBox, from time.Time) ([]Scene, error) {
	q := url.Values{}
	q.Set("bbox", bbox.String())
	if !from.IsZero() {
		q.Set("from", from.UTC().Format(time.RFC3339Nano))
	}

	var resp scenesResponse
	path := fmt.Sprintf("/v1/products/%s/scenes", url.PathEscape(product))
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return resp.Scenes, nil
}

func (c *httpClient) Pixels(ctx context.Context, sceneID string, bbox BBox) (*Grid, error) {
	q := url.Values{}
	q.Set("bbox", bbox.String())

	var grid Grid
	path := fmt.Sprintf("/v1/scenes/%s/pixels", url.PathEscape(sceneID))
	if err := c.get(ctx, path, q, &grid); err != nil {
		return nil, err
	}

	if len(grid.Flags) != grid.Width*grid.Height {
		return nil, eris.Errorf("datacube: scene %s: %d flags for %dx%d grid",
			sceneID, len(grid.Flags), grid.Width, grid.Height)
	}
	return &grid, nil
}

func (c *httpClient) Drill(ctx context.Context, product string, bbox BBox, from time.Time) ([]SceneGrid, error) {
	scenes, err := c.Scenes(ctx, product, bbox, from)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, nil
	}

	// Pixel blocks fetch concurrently, but the result keeps the scene
	// listing's chronological order.
	out := make([]SceneGrid, len(scenes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, scene := range scenes {
		i, scene := i, scene
		g.Go(func() error {
			grid, err := c.Pixels(gctx, scene.ID, bbox)
			if err != nil {
				return err
			}
			out[i] = SceneGrid{Scene: scene, Grid: grid}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
