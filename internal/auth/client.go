// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth is the client for the account API's change-password call.
//
// The client adds no retry logic: a failed change is reported once and the
// user decides whether to submit again. Timeouts come from the underlying
// http.Client.
package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/pwchange-tui/internal/config"
)

const (
	// MaxResponseSize bounds how much of a response body is read.
	MaxResponseSize = 1 << 20

	// RequestIDHeader carries a per-request id for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	userAgent = "pwchange/1.0"
)

// Error variables for change-password failures.
var (
	// ErrRequestFailed matches every failure of the change-password call,
	// whether local, network or server side.
	ErrRequestFailed = errors.New("change password request failed")

	// ErrNotAuthenticated indicates no bearer token is configured.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenExpired indicates the bearer token's exp claim has passed.
	ErrTokenExpired = errors.New("session token expired")
)

// ChangePasswordRequest is the payload sent to the server. It deliberately
// has no confirmation field.
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// BaseResponse is the common response envelope of the account API.
type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// APIError is a failure reported by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth API error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("auth API error (HTTP %d): %s", e.Status, e.Message)
}

// Is makes every APIError match ErrRequestFailed.
func (e *APIError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Doer performs the change-password call. The dialog depends on this rather
// than on *Client.
type Doer interface {
	ChangePassword(ctx context.Context, req ChangePasswordRequest) (*BaseResponse, error)
}

// Client talks to the account API.
type Client struct {
	baseURL    string
	path       string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
	now        func() time.Time
}

var _ Doer = (*Client)(nil)

// NewClient creates a client from the auth section of the config.
func NewClient(cfg config.AuthConfig, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if cfg.MinInterval() > 0 {
		limit = rate.Every(cfg.MinInterval())
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		path:    cfg.ChangePasswordPath,
		token:   strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "auth").Logger(),
		now:     time.Now,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// IsConfigured reports whether a bearer token is set.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// ChangePassword sends the new password to the server.
//
// Every returned error matches ErrRequestFailed; more specific causes
// (ErrNotAuthenticated, ErrTokenExpired, *APIError, context errors) are
// reachable through errors.Is and errors.As.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*BaseResponse, error) {
	if err := c.checkToken(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrRequestFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrRequestFailed, err)
	}
	requestID := uuid.NewString()
	c.setHeaders(httpReq, requestID)

	start := c.now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn().
			Str("request_id", requestID).
			Str("path", c.path).
			Dur("duration", c.now().Sub(start)).
			Err(err).
			Msg("change password request failed")
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Info().
		Str("request_id", requestID).
		Str("method", httpReq.Method).
		Str("path", c.path).
		Int("status", resp.StatusCode).
		Dur("duration", c.now().Sub(start)).
		Msg("change password response")

	return c.parseResponse(resp)
}

// setHeaders sets the required headers. The token is never logged.
func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, requestID)
}

// checkToken rejects a missing token, and a JWT whose exp has passed, before
// any network I/O. Opaque tokens are passed through untouched. The signature
// is not verified: only the server holds the key.
func (c *Client) checkToken() error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	if strings.Count(c.token, ".") != 2 {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		// Not a JWT after all; let the server judge it.
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !c.now().Before(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}

// parseResponse decodes the envelope and turns failures into *APIError.
func (c *Client) parseResponse(resp *http.Response) (*BaseResponse, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	var out BaseResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Code: out.Code, Message: out.Message}
		if decodeErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		// 204 or an empty 200: the change went through.
		return &BaseResponse{Success: true}, nil
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrRequestFailed, decodeErr)
	}
	if !out.Success {
		return nil, &APIError{Status: resp.StatusCode, Code: out.Code, Message: out.Message}
	}
	return &out, nil
}
