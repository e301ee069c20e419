package modsyncsdk

import (
	"context"
	"os"
	"time"

	"github.com/imroc/req/v3"

	"github.com/stopperw/modsync/internal/api"
	"github.com/stopperw/modsync/internal/version"
)

const (
	routeHello         = "/hello"
	routeModpackCreate = "/modpack/create"
	routeModpack       = "/modpack/{modpack_id}"
	routeFileSync      = "/modpack/{modpack_id}/filesync"
	routeUpload        = "/modpack/{modpack_id}/upload"
	routeDelete        = "/modpack/{modpack_id}/delete"
	routeDownload      = "/dl/hash/{hash}"
)

// Config carries everything the client needs to talk to one server. It is
// passed in explicitly; the SDK keeps no process-wide state.
type Config struct {
	ServerURL string
	APIKey    string

	// Timeout applies per request. Zero means DefaultTimeout.
	Timeout time.Duration
}

const DefaultTimeout = 2 * time.Minute

// Client is the HTTP client for the modsync API.
type Client struct {
	client *req.Client
}

func New(cfg *Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, ErrNoServerURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := req.C().
		SetBaseURL(cfg.ServerURL).
		SetUserAgent("Modsync/"+version.Version).
		SetTimeout(timeout).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetCommonBearerAuthToken(cfg.APIKey).
		SetCommonErrorResult(&api.Error{})

	return &Client{client: client}, nil
}

// Hello probes the server version and validates the API key.
func (c *Client) Hello(ctx context.Context) (*api.HelloResponse, error) {
	var result api.HelloResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		Post(routeHello)

	if err := handleAPIError(resp, err, "hello"); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateModpack registers a new modpack on the server.
func (c *Client) CreateModpack(ctx context.Context, body *api.ModpackCreateRequest) (*api.ModpackCreateResponse, error) {
	var result api.ModpackCreateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetSuccessResult(&result).
		Post(routeModpackCreate)

	if err := handleAPIError(resp, err, "modpack create"); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetModpack fetches the authoritative snapshot: modpack metadata plus the
// complete file record listing.
func (c *Client) GetModpack(ctx context.Context, modpackID string) (*api.ModpackResponse, error) {
	var result api.ModpackResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("modpack_id", modpackID).
		SetSuccessResult(&result).
		Get(routeModpack)

	if err := handleAPIError(resp, err, "modpack get"); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteModpack removes the modpack and all of its file records.
func (c *Client) DeleteModpack(ctx context.Context, modpackID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("modpack_id", modpackID).
		Post(routeDelete)

	return handleAPIError(resp, err, "modpack delete")
}

// FileSync pushes one path's {state, hash} delta to the server.
func (c *Client) FileSync(ctx context.Context, modpackID string, body *api.FileSyncRequest) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("modpack_id", modpackID).
		SetBody(body).
		Post(routeFileSync)

	return handleAPIError(resp, err, "filesync")
}

// UploadFile streams the file at localPath as the content for relPath. The
// server hashes the bytes itself and answers with its dedup decision.
func (c *Client) UploadFile(ctx context.Context, modpackID, relPath, localPath string) (*api.UploadResponse, error) {
	var result api.UploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetPathParam("modpack_id", modpackID).
		SetQueryParam("file_path", relPath).
		SetFile("upload", localPath).
		SetSuccessResult(&result).
		Post(routeUpload)

	if err := handleAPIError(resp, err, "upload"); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadByHash streams the blob for digest into destPath. The caller
// owns digest verification and any atomic rename into place.
func (c *Client) DownloadByHash(ctx context.Context, digest, destPath string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetPathParam("hash", digest).
		DisableAutoReadResponse().
		SetOutputFile(destPath).
		Get(routeDownload)

	if err := handleAPIError(resp, err, "download "+digest); err != nil {
		// On an error status the body lands in destPath; drop it.
		os.Remove(destPath)
		return err
	}
	return nil
}
