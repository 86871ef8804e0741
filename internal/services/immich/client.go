package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"dupesweep/internal/services"
)

const (
	userAgent          = "dupesweep/0.1.0"
	defaultHTTPTimeout = 30 * time.Second
)

// APIError describes a non-2xx response from the Immich server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("immich api: http %d", e.Status)
	}
	return fmt.Sprintf("immich api: http %d: %s", e.Status, msg)
}

// Client talks to the Immich REST API using x-api-key authentication.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client for the given server. The URL and API key are
// validated here so the pipeline never runs against a misconfigured client.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrValidation, "immich", "new client", "api key is empty", nil)
	}

	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "immich", "new client", "parse base url", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, services.Wrap(services.ErrValidation, "immich", "new client", fmt.Sprintf("unsupported scheme %q", parsed.Scheme), nil)
	}
	if parsed.Host == "" {
		return nil, services.Wrap(services.ErrValidation, "immich", "new client", "base url has no host", nil)
	}

	client := &Client{
		baseURL:    parsed,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListDuplicateGroups fetches every duplicate group the server knows about.
func (c *Client) ListDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error) {
	var groups []DuplicateGroup
	if err := c.doJSON(ctx, http.MethodGet, "/api/duplicates", nil, &groups); err != nil {
		return nil, fmt.Errorf("list duplicate groups: %w", err)
	}
	return groups, nil
}

// GetAsset fetches a single asset with its EXIF metadata.
func (c *Client) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	var asset Asset
	err := c.doJSON(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(assetID), nil, &asset)
	if err != nil {
		if apiErr := asAPIError(err); apiErr != nil && apiErr.Status == http.StatusNotFound {
			return nil, services.Wrap(services.ErrNotFound, "immich", "get asset", assetID, err)
		}
		return nil, fmt.Errorf("get asset %s: %w", assetID, err)
	}
	return &asset, nil
}

// DownloadOriginal streams the asset's original file to destPath.
func (c *Client) DownloadOriginal(ctx context.Context, assetID, destPath string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/assets/"+url.PathEscape(assetID)+"/original", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download asset %s: %w", assetID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("download asset %s: %w", assetID, readAPIError(resp))
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "immich", "download", destPath, err)
	}

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		file.Close()
		_ = os.Remove(destPath)
		return 0, fmt.Errorf("stream asset %s to %s: %w", assetID, destPath, err)
	}
	if err := file.Close(); err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "immich", "download", destPath, err)
	}
	return written, nil
}

// DeleteAssets deletes the given assets in a single call. When force is true
// they are removed permanently instead of moved to trash.
func (c *Client) DeleteAssets(ctx context.Context, assetIDs []string, force bool) error {
	body := struct {
		IDs   []string `json:"ids"`
		Force bool     `json:"force"`
	}{IDs: assetIDs, Force: force}

	if err := c.doJSON(ctx, http.MethodDelete, "/api/assets", body, nil); err != nil {
		return fmt.Errorf("delete %d assets: %w", len(assetIDs), err)
	}
	return nil
}

// UpdateAssetMetadata changes only the fields present in update.
func (c *Client) UpdateAssetMetadata(ctx context.Context, assetID string, update MetadataUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/assets/"+url.PathEscape(assetID), update, nil); err != nil {
		return fmt.Errorf("update asset %s: %w", assetID, err)
	}
	return nil
}

// ListAlbumsForAsset returns the albums containing the given asset.
func (c *Client) ListAlbumsForAsset(ctx context.Context, assetID string) ([]Album, error) {
	var albums []Album
	path := "/api/albums?assetId=" + url.QueryEscape(assetID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &albums); err != nil {
		return nil, fmt.Errorf("list albums for asset %s: %w", assetID, err)
	}
	return albums, nil
}

// AddAssetsToAlbum adds assets to an album.
func (c *Client) AddAssetsToAlbum(ctx context.Context, albumID string, assetIDs []string) error {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: assetIDs}
	if err := c.doJSON(ctx, http.MethodPut, "/api/albums/"+url.PathEscape(albumID)+"/assets", body, nil); err != nil {
		return fmt.Errorf("add assets to album %s: %w", albumID, err)
	}
	return nil
}

// RemoveAssetsFromAlbum removes assets from an album.
func (c *Client) RemoveAssetsFromAlbum(ctx context.Context, albumID string, assetIDs []string) error {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: assetIDs}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/albums/"+url.PathEscape(albumID)+"/assets", body, nil); err != nil {
		return fmt.Errorf("remove assets from album %s: %w", albumID, err)
	}
	return nil
}

// Ping verifies the server is reachable and the API key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	var pong struct {
		Res string `json:"res"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/server/ping", nil, &pong); err != nil {
		return fmt.Errorf("ping server: %w", err)
	}
	if pong.Res != "pong" {
		return fmt.Errorf("ping server: unexpected response %q", pong.Res)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	parsed, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("build request url %q: %w", path, err)
	}
	endpoint := c.baseURL.ResolveReference(parsed)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
