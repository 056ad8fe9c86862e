// Package captcha verifies the human check required before a blood donor's
// contact details are revealed.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weforyou/ledger/internal/domain"
)

// Verifier checks a client captcha token. Failures wrap domain.ErrCaptcha.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// SiteVerify posts tokens to an hCaptcha/reCAPTCHA compatible siteverify endpoint.
type SiteVerify struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

func NewSiteVerify(secret, verifyURL string, httpClient *http.Client) *SiteVerify {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SiteVerify{secret: secret, verifyURL: verifyURL, httpClient: httpClient}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *SiteVerify) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrCaptcha)
	}
	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("captcha: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("captcha: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("captcha: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("captcha: status %d", resp.StatusCode)
	}
	var decoded siteVerifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("captcha: decode response: %w", err)
	}
	if !decoded.Success {
		return fmt.Errorf("%w: %s", domain.ErrCaptcha, strings.Join(decoded.ErrorCodes, ","))
	}
	return nil
}

// Static accepts any non-empty token. Used in development when no secret is configured.
type Static struct{}

func (Static) Verify(_ context.Context, token, _ string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", domain.ErrCaptcha)
	}
	return nil
}

var (
	_ Verifier = (*SiteVerify)(nil)
	_ Verifier = Static{}
)
