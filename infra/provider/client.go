package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/infra/logger"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Client queries the timetable export service.
type Client struct {
	baseURL   string
	userAgent string
	encoding  string
	http      *http.Client
	limiter   *rate.Limiter
	log       logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client from cfg. Defaults are applied to a copy of cfg.
func NewClient(cfg config.ProviderConfig, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if _, err := lookupEncoding(cfg.Encoding); err != nil {
		return nil, err
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		encoding:  cfg.Encoding,
		http:      &http.Client{Timeout: cfg.Timeout()},
		log:       logger.New("provider"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// FetchRooms lists every room known to the service. Entries with a blank
// identifier or name are dropped and the rest are trimmed.
func (c *Client) FetchRooms(ctx context.Context) ([]model.Room, error) {
	q := url.Values{}
	q.Set("req_type", "obj_list")
	q.Set("req_mode", "room")
	q.Set("show_ID", "yes")
	var resp objListResponse
	if err := c.getJSON(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	return resp.rooms(), nil
}

// FetchRoomSchedule returns the raw schedule of roomID between begin and end
// (inclusive, day.month.year).
func (c *Client) FetchRoomSchedule(ctx context.Context, roomID, begin, end string) ([]model.ScheduleEntry, error) {
	q := url.Values{}
	q.Set("req_type", "rozklad")
	q.Set("req_mode", "room")
	q.Set("OBJ_ID", roomID)
	q.Set("OBJ_name", "")
	q.Set("dep_name", "")
	q.Set("ros_text", "united")
	q.Set("begin_date", begin)
	q.Set("end_date", end)
	var resp rozkladResponse
	if err := c.getJSON(ctx, q, &resp); err != nil {
		return nil, fmt.Errorf("fetch schedule of room %s: %w", roomID, err)
	}
	entries := make([]model.ScheduleEntry, 0, len(resp.Export.Items))
	for _, it := range resp.Export.Items {
		entries = append(entries, it.entry())
	}
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, q url.Values, out any) error {
	q.Set("req_format", "json")
	q.Set("coding_mode", c.encoding)
	q.Set("bs", "ok")
	u := c.baseURL + "?" + q.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	c.log.Debugf("GET %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Errorf("close body: %v", err)
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: u}
	}

	body, err := decompress(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		return err
	}
	defer body.Close()

	charset := charsetOf(resp.Header.Get("Content-Type"))
	if charset == "" {
		charset = c.encoding
	}
	data, err := toUTF8(body, charset)
	if err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}
