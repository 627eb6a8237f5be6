// Package chat provides a resilient Telegram Bot API client for outbound replies
package chat

import (
	"bytes"
	"context"
	json "encoding/json/v2"
	"fmt"
	"net/http"
	"time"

	perr "storecast/internal/platform/errors"
	"storecast/internal/platform/logger"
)

const (
	baseURLDefault   = "https://api.telegram.org"
	defaultTimeout   = 10 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal Bot API client with retry and rate limit handling
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("telegram"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Send posts a sendMessage call for the chat. The bot token rides in the
// URL path, so logs carry only the method name, never the URL
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if c.opts.Token == "" {
		return perr.InvalidArgf("telegram token not configured")
	}
	body, err := json.Marshal(sendMessageReq{ChatID: chatID, Text: text})
	if err != nil {
		return perr.JSONErrf("telegram marshal failed: %v", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.opts.BaseURL, c.opts.Token)

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "telegram new request failed")
		}
		req.Header.Set("Content-Type", "application/json")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "telegram send failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("telegram transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		api, derr := decodeResponse(resp.Body)
		_ = resp.Body.Close()

		c.log.Debug().
			Str("method", "sendMessage").
			Int64("chat_id", chatID).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("telegram http response")

		switch {
		case resp.StatusCode == http.StatusOK && derr == nil && api.OK:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header, api)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				return perr.Unavailablef("telegram rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("telegram rate limited backing off")
			c.sleep(wait)
			attempts++
			continue
		case resp.StatusCode >= http.StatusInternalServerError:
			if !c.shouldRetry(attempts) {
				return perr.Unavailablef("telegram transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("telegram transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			desc := "unknown error"
			if derr == nil && api.Description != "" {
				desc = api.Description
			}
			return perr.Newf(perr.ErrorCodeUnknown, "telegram sendMessage status %d: %s", resp.StatusCode, desc)
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
