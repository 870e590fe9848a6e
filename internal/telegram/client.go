// Package telegram binds the bot to the Telegram Bot API: outbound calls,
// update decoding and long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.telegram.org"

// APIError is a request the Bot API answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// IsAPIError reports whether err is an APIError with the given code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client calls Bot API methods for a single bot token. It is safe for
// concurrent use.
type Client struct {
	http   *resty.Client
	logger logging.Logger
}

// NewClient creates a Client. An empty baseURL selects the public Bot API.
func NewClient(baseURL, token string, timeout time.Duration, l logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	h := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/bot"+token).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: h, logger: l.With("module", "telegram")}
}

// call posts params as JSON to method and returns the "result" field of the
// response envelope.
func (c *Client) call(ctx context.Context, method string, params any) (gjson.Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("telegram %s: %w", method, err)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("telegram %s: unexpected response, status %d", method, resp.StatusCode())
	}

	env := gjson.ParseBytes(body)
	if !env.Get("ok").Bool() {
		return gjson.Result{}, &APIError{
			Method:      method,
			Code:        int(env.Get("error_code").Int()),
			Description: env.Get("description").String(),
			RetryAfter:  time.Duration(env.Get("parameters.retry_after").Int()) * time.Second,
		}
	}

	return env.Get("result"), nil
}
