package share

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/heightchart/pkg/errors"
	"github.com/matzehuels/heightchart/pkg/observability"
)

// DefaultTimeout bounds one share request.
const DefaultTimeout = 15 * time.Second

// Client stores payloads behind the share boundary.
type Client interface {
	Create(ctx context.Context, data string) (ItemID, error)
	Fetch(ctx context.Context, id ItemID) (string, error)
}

// HTTPClient talks to a share endpoint over HTTP. Create POSTs to the
// endpoint; Fetch GETs endpoint/<id>.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient returns a client for endpoint. A nil httpClient uses a
// client with DefaultTimeout.
func NewHTTPClient(endpoint string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPClient{endpoint: strings.TrimRight(endpoint, "/"), http: httpClient}
}

// Create implements [Client]. Any transport failure, non-2xx status or a
// response with success=false is a SHARE_FAILED error.
func (c *HTTPClient) Create(ctx context.Context, data string) (ItemID, error) {
	body, err := json.Marshal(createRequest{Data: data})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode share request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "share endpoint %q", c.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	var out createResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if !out.Success || out.ItemID == "" {
		return "", errors.New(errors.ErrCodeShareFailed, "share rejected: %s", cmp.Or(out.Error, "no item id"))
	}
	return out.ItemID, nil
}

// Fetch implements [Client].
func (c *HTTPClient) Fetch(ctx context.Context, id ItemID) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "share endpoint %q", c.endpoint)
	}
	var out struct {
		Data string `json:"data"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Data, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	hooks := observability.HTTP()
	ctx := req.Context()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "share request")
		}
		return errors.Wrap(errors.ErrCodeShareFailed, err, "share request")
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "share item not found")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return errors.New(errors.ErrCodeShareFailed, "share endpoint returned %s", resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxPayloadBytes)).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeShareFailed, err, "decode share response")
	}
	return nil
}

