// internal/client/client.go
//
// REST client for the composting-process backend. One resty client,
// Basic auth injected per request, non-2xx responses normalized to
// *APIError, and an unauthorized hook the caller wires to its own
// session policy (the client itself never navigates or exits).
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// DefaultBasePath is the same-origin API prefix used when no explicit
// base URL is configured.
const DefaultBasePath = "/api/v2"

// Config holds the client connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the backend REST API.
type Client struct {
	http           *resty.Client
	creds          *CredentialStore
	logger         *logrus.Logger
	onUnauthorized func()
}

// New creates a client. creds must not be nil; logger may be nil.
func New(cfg Config, creds *CredentialStore, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBasePath
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	c := &Client{
		creds:  creds,
		logger: logger,
	}

	c.http = resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if h := c.creds.Header(); h != "" {
				req.Header.Set("Authorization", h)
			}
			return nil
		})

	return c
}

// SetUnauthorizedHandler registers a hook fired once per 401 response.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// Credentials exposes the credential store for login/logout flows.
func (c *Client) Credentials() *CredentialStore {
	return c.creds
}

// r builds a request bound to ctx.
func (c *Client) r(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// check converts a completed exchange into the error model: transport
// failures wrap, 401 fires the unauthorized hook, other non-2xx become
// *APIError with the body parsed for detail/message.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == 401 && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.IsError() {
		apiErr := parseAPIError(resp.StatusCode(), resp.Body())
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode(),
			"url":    resp.Request.URL,
		}).Debug("backend error response")
		return apiErr
	}
	return nil
}

// DetailResp is the backend's generic acknowledgement body.
type DetailResp struct {
	Detail string `json:"detail"`
}

// ListResp is the backend's list envelope.
type ListResp[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}
