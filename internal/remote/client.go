package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/isq-24/weekly-planner/internal/model"
	"github.com/isq-24/weekly-planner/internal/week"
)

// maxLoadBody caps how much of a load response is read.
const maxLoadBody = 8 << 20

// Client is the bridge to the external spreadsheet-backed endpoint.
//
// Load reads and decodes the stored week. Save is a best-effort send: the response is
// closed unread, so a nil error only means the request left this process.
type Client struct {
	endpoint string
	http     *http.Client
	codec    Codec
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithCodec(codec Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("remote: missing endpoint url")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: endpoint must be http(s): %s", endpoint)
	}

	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		codec:    DaysCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Codec() Codec { return c.codec }

func (c *Client) loadURL(w week.Week) string {
	q := c.codec.Query(w)
	if len(q) == 0 {
		return c.endpoint
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return c.endpoint
	}
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String()
}

// Load fetches the stored snapshot for w. A nil snapshot with a nil error means the
// remote has nothing stored.
func (c *Client) Load(ctx context.Context, w week.Week) (*model.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.loadURL(w), nil)
	if err != nil {
		return nil, &LoadError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &LoadError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoadBody))
	if err != nil {
		return nil, &LoadError{Endpoint: c.endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Endpoint: c.endpoint, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	snap, err := c.codec.Decode(w, body)
	if err != nil {
		return nil, &LoadError{Endpoint: c.endpoint, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return snap, nil
}

// Save posts s for w. Only transport failures are reported.
func (c *Client) Save(ctx context.Context, w week.Week, s model.Snapshot) error {
	body, err := c.codec.Encode(w, s)
	if err != nil {
		return &SaveError{Endpoint: c.endpoint, Err: fmt.Errorf("encode: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &SaveError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &SaveError{Endpoint: c.endpoint, Err: err}
	}
	// Deliberately unread: acceptance by the remote is not observable.
	_ = resp.Body.Close()
	return nil
}
