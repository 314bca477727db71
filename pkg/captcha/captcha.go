package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/odvhub/odvhub-backend/config"
	"github.com/odvhub/odvhub-backend/pkg/logger"
)

// Verifier is the pluggable CAPTCHA pre-check run before a public submission
// reaches any business logic.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// New returns the configured verifier; when the captcha is disabled every
// submission passes the pre-check.
func New(cfg config.CaptchaConfig) Verifier {
	if !cfg.Enabled {
		return &noopVerifier{}
	}
	return &httpVerifier{
		verifyURL: cfg.VerifyURL,
		secret:    cfg.Secret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type noopVerifier struct{}

func (v *noopVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	return true, nil
}

// httpVerifier posts the challenge response to the provider's siteverify
// endpoint (Turnstile/hCaptcha compatible form encoding).
type httpVerifier struct {
	verifyURL string
	secret    string
	client    *http.Client
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *httpVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("captcha verification decode failed: %w", err)
	}

	if !result.Success {
		logger.Warn("Captcha verification rejected", map[string]interface{}{
			"error_codes": result.ErrorCodes,
		})
	}
	return result.Success, nil
}
