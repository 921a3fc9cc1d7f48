package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/abelbrown/moments/internal/logging"
	"github.com/abelbrown/moments/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	Burst     int
	UserAgent string
}

// Client talks to the feed service over REST. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient creates a client for opts.BaseURL.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "moments/0.1"
	}
	h := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if opts.Timeout > 0 {
		h.SetTimeout(opts.Timeout)
	}

	h.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("HTTP request", "method", req.Method, "url", req.URL)
		return nil
	})
	h.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("HTTP response", "status", resp.StatusCode(), "took", resp.Time())
		return nil
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &Client{http: h, limiter: limiter}
}

// request waits for the rate limiter and returns a request bound to ctx.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.http.R().SetContext(ctx).SetError(&ErrorResponse{}), nil
}

func check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %w", what, parseError(resp))
	}
	return nil
}

// FetchSlides returns the page of target's feed after cursor.
func (c *Client) FetchSlides(ctx context.Context, target string, cursor model.Cursor, size int) (model.Page[model.Slide], error) {
	req, err := c.request(ctx)
	if err != nil {
		return model.Page[model.Slide]{}, err
	}
	var out FeedResponse
	resp, err := req.
		SetPathParam("target", target).
		SetQueryParams(CursorParams(cursor, size)).
		SetResult(&out).
		Get("/api/v1/feed/{target}")
	if err := check(resp, err, "fetch feed "+target); err != nil {
		return model.Page[model.Slide]{}, err
	}
	return out.Page(), nil
}

// FetchStoryMoments returns the page of a story's moments after cursor.
func (c *Client) FetchStoryMoments(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error) {
	req, err := c.request(ctx)
	if err != nil {
		return model.Page[model.Moment]{}, err
	}
	var out MomentsResponse
	resp, err := req.
		SetPathParam("id", storyID).
		SetQueryParams(CursorParams(cursor, size)).
		SetResult(&out).
		Get("/api/v1/stories/{id}/moments")
	if err := check(resp, err, "fetch story "+storyID); err != nil {
		return model.Page[model.Moment]{}, err
	}
	return out.Page(), nil
}

// React adds one reaction and returns the updated moment.
func (c *Client) React(ctx context.Context, momentID, emoji string) (model.Moment, error) {
	req, err := c.request(ctx)
	if err != nil {
		return model.Moment{}, err
	}
	var out model.Moment
	resp, err := req.
		SetPathParam("id", momentID).
		SetBody(ReactionRequest{Emoji: emoji}).
		SetResult(&out).
		Post("/api/v1/moments/{id}/reactions")
	if err := check(resp, err, "react to "+momentID); err != nil {
		return model.Moment{}, err
	}
	return out, nil
}

// DeleteMoment removes a moment.
func (c *Client) DeleteMoment(ctx context.Context, momentID string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.
		SetPathParam("id", momentID).
		Delete("/api/v1/moments/{id}")
	return check(resp, err, "delete "+momentID)
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.Get("/healthz")
	return check(resp, err, "health")
}
