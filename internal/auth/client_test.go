// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/pwchange-tui/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.AuthConfig{
		BaseURL:            srv.URL,
		Token:              token,
		ChangePasswordPath: config.DefaultChangePasswordPath,
		TimeoutSecs:        5,
	}, zerolog.Nop())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestChangePassword_Success(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, config.DefaultChangePasswordPath, r.URL.Path)
		gotHeaders = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}, "opaque-token")

	resp, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)

	assert.Equal(t, map[string]any{"password": "Password1?"}, gotBody,
		"only the new password is transmitted")
	assert.NotContains(t, gotBody, "confirmPassword")
	assert.Equal(t, "Bearer opaque-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	_, err = uuid.Parse(gotHeaders.Get(RequestIDHeader))
	assert.NoError(t, err, "request id should be a UUID")
}

func TestChangePassword_EmptyBodyIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "tok")

	resp, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestChangePassword_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"code":"PASSWORD_REUSED","message":"password was used before"}`))
	}, "tok")

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "PASSWORD_REUSED", apiErr.Code)
	assert.Equal(t, "password was used before", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "PASSWORD_REUSED")
}

func TestChangePassword_NonJSONError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}, "tok")

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
	assert.Equal(t, "auth API error (HTTP 502): Bad Gateway", apiErr.Error())
}

func TestChangePassword_SuccessFalseIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"rejected"}`))
	}, "tok")

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestChangePassword_NoTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, "")

	assert.False(t, client.IsConfigured())
	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(0), hits.Load())
}

func TestChangePassword_ExpiredJWTFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, signedToken(t, time.Now().Add(-time.Hour)))

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Equal(t, int32(0), hits.Load())
}

func TestChangePassword_ValidJWTIsSent(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true}`))
	}, token)

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	require.NoError(t, err)
}

func TestChangePassword_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "tok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ChangePassword(ctx, ChangePasswordRequest{Password: "Password1?"})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChangePassword_NoRetry(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "tok")

	_, err := client.ChangePassword(context.Background(), ChangePasswordRequest{Password: "Password1?"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestChangePasswordRequest_HasNoConfirmation(t *testing.T) {
	data, err := json.Marshal(ChangePasswordRequest{Password: "Password1?"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"Password1?"}`, string(data))
}
