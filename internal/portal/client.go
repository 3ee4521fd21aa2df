package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ptec-dev/audit-management/internal"
)

type Client struct {
	baseURL         string
	source          string
	loginTimeout    time.Duration
	validateTimeout time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
}

type Config struct {
	BaseURL         string
	Source          string
	LoginTimeout    time.Duration
	ValidateTimeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	loginTimeout := cfg.LoginTimeout
	if loginTimeout <= 0 {
		loginTimeout = 10 * time.Second
	}
	validateTimeout := cfg.ValidateTimeout
	if validateTimeout <= 0 {
		validateTimeout = 5 * time.Second
	}
	source := cfg.Source
	if source == "" {
		source = "audit"
	}

	return &Client{
		baseURL:         cfg.BaseURL,
		source:          source,
		loginTimeout:    loginTimeout,
		validateTimeout: validateTimeout,
		httpClient:      &http.Client{},
		logger:          logger,
	}
}

func (c *Client) Login(ctx context.Context, loginname, password string) (*LoginResponse, error) {
	payload := map[string]interface{}{
		"loginname": loginname,
		"password":  password,
		"source":    c.source,
	}

	var out LoginResponse
	if err := c.post(ctx, "/login", payload, c.loginTimeout, &out); err != nil {
		if errors.Is(err, internal.ErrPortalRejected) {
			// 401 body still carries the portal's user-facing message.
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOtp(ctx context.Context, usercode, otpCode string, trustDevice bool) (*VerifyOtpResponse, error) {
	payload := map[string]interface{}{
		"usercode":    usercode,
		"otpCode":     otpCode,
		"trustDevice": trustDevice,
		"source":      c.source,
	}

	var out VerifyOtpResponse
	if err := c.post(ctx, "/verify-otp", payload, c.loginTimeout, &out); err != nil {
		if errors.Is(err, internal.ErrPortalRejected) {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendOtp(ctx context.Context, usercode string) (*ResendOtpResponse, error) {
	payload := map[string]interface{}{
		"usercode": usercode,
		"source":   c.source,
	}

	var out ResendOtpResponse
	if err := c.post(ctx, "/resend-otp", payload, c.loginTimeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendOtp(ctx context.Context, email string) (*ResendOtpResponse, error) {
	payload := map[string]interface{}{
		"email":  email,
		"source": c.source,
	}

	var out ResendOtpResponse
	if err := c.post(ctx, "/send-otp", payload, c.loginTimeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Validate(ctx context.Context, accessToken string) (*ValidateResponse, error) {
	payload := map[string]interface{}{
		"access_token": accessToken,
	}

	var out ValidateResponse
	if err := c.post(ctx, "/validate", payload, c.validateTimeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserWithRoles(ctx context.Context, userCode, accessToken string) (*ProfileResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/GetUserWithRoles?UserCode=%s", c.baseURL, url.QueryEscape(userCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to build portal request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, internal.ErrPortalRejected
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, internal.ErrPortalUnavailable.WithCause(fmt.Errorf("portal returned status %d", resp.StatusCode))
	}

	var out ProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, internal.NewInternalError("failed to decode portal response", err)
	}
	return &out, nil
}

// post performs one bounded POST round-trip. Non-2xx responses that still
// carry a portal body are decoded so the caller sees the portal's message;
// 401 maps to ErrPortalRejected, transport failures to
// ErrPortalUnavailable/ErrPortalTimeout.
func (c *Client) post(ctx context.Context, path string, payload interface{}, timeout time.Duration, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return internal.NewInternalError("failed to marshal portal request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return internal.NewInternalError("failed to build portal request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return internal.ErrPortalUnavailable.WithCause(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Decode anyway: the portal's 401 body carries the user-facing
		// message (wrong password, bad OTP).
		if len(body) > 0 && out != nil {
			_ = json.Unmarshal(body, out)
		}
		return internal.ErrPortalRejected
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("portal returned error status", "path", path, "status", resp.StatusCode)
		return internal.ErrPortalUnavailable.WithCause(fmt.Errorf("portal returned status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return internal.NewInternalError("failed to decode portal response", err)
	}
	return nil
}

func (c *Client) transportError(err error) error {
	c.logger.Error("portal request failed", "error", err)

	if errors.Is(err, context.DeadlineExceeded) {
		return internal.ErrPortalTimeout.WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return internal.ErrPortalTimeout.WithCause(err)
	}
	return internal.ErrPortalUnavailable.WithCause(err)
}
