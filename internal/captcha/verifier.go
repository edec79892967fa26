package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/durga1023/ContactUsRepository/internal/secrets"
	"github.com/durga1023/ContactUsRepository/pkg/logger"
	"github.com/durga1023/ContactUsRepository/pkg/metrics"
)

// Verification outcomes. Callers show the same generic message for missing
// and rejected tokens, but the distinction matters for logging and metrics.
var (
	// ErrTokenMissing indicates an absent token; no network call is made.
	ErrTokenMissing = errors.New("captcha: token missing")

	// ErrRejected indicates the service rejected the token or scored it
	// below the configured threshold.
	ErrRejected = errors.New("captcha: token rejected")

	// ErrUnavailable indicates a transport failure or an unparseable
	// response from the verification service.
	ErrUnavailable = errors.New("captcha: verification service unavailable")

	// ErrNotConfigured indicates the verification secret is missing. This
	// is a configuration failure, not a user-correctable one.
	ErrNotConfigured = errors.New("captcha: secret not configured")
)

// Verifier confirms that a client-supplied CAPTCHA token belongs to a human.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// Config controls the reCAPTCHA siteverify client.
type Config struct {
	VerifyURL  string
	SecretName string
	SecretKey  string
	MinScore   float64
	Timeout    time.Duration
}

const (
	defaultVerifyURL  = "https://www.google.com/recaptcha/api/siteverify"
	defaultSecretName = "contactformcredentials"
	defaultSecretKey  = "SECRET_KEY"
	defaultMinScore   = 0.5
	defaultTimeout    = 5 * time.Second
)

type recaptchaVerifier struct {
	cfg    Config
	source secrets.Source
	client *http.Client
	log    *zap.Logger
}

// NewRecaptchaVerifier builds a verifier that redeems tokens against the
// reCAPTCHA siteverify endpoint, fetching the shared secret from source.
func NewRecaptchaVerifier(cfg Config, source secrets.Source) (Verifier, error) {
	if source == nil {
		return nil, errors.New("captcha: secret source is required")
	}

	if strings.TrimSpace(cfg.VerifyURL) == "" {
		cfg.VerifyURL = defaultVerifyURL
	}
	if strings.TrimSpace(cfg.SecretName) == "" {
		cfg.SecretName = defaultSecretName
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = defaultSecretKey
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.MinScore > 1 {
		return nil, fmt.Errorf("captcha: min score %v out of range (0,1]", cfg.MinScore)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &recaptchaVerifier{
		cfg:    cfg,
		source: source,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.WithModule("captcha"),
	}, nil
}

// siteverifyResponse is the documented shape of the verification reply.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *recaptchaVerifier) Verify(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		metrics.CaptchaVerifications.WithLabelValues("rejected").Inc()
		return ErrTokenMissing
	}

	secret, err := v.source.Fetch(ctx, v.cfg.SecretName, v.cfg.SecretKey)
	if err != nil || strings.TrimSpace(secret) == "" {
		metrics.CaptchaVerifications.WithLabelValues("misconfigured").Inc()
		v.log.Error("verification secret unavailable",
			zap.String("secret_name", v.cfg.SecretName),
			zap.Error(err),
		)
		if err == nil {
			err = secrets.ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	resp, err := v.post(ctx, secret, token)
	if err != nil {
		metrics.CaptchaVerifications.WithLabelValues("unavailable").Inc()
		v.log.Error("verification call failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if !resp.Success {
		metrics.CaptchaVerifications.WithLabelValues("rejected").Inc()
		v.log.Info("token rejected by verification service",
			zap.Strings("error_codes", resp.ErrorCodes),
		)
		return ErrRejected
	}

	if resp.Score < v.cfg.MinScore {
		metrics.CaptchaVerifications.WithLabelValues("rejected").Inc()
		v.log.Info("token score below threshold",
			zap.Float64("score", resp.Score),
			zap.Float64("min_score", v.cfg.MinScore),
		)
		return ErrRejected
	}

	metrics.CaptchaVerifications.WithLabelValues("passed").Inc()
	v.log.Debug("token verified", zap.Float64("score", resp.Score))
	return nil
}

// post issues the single siteverify call. Tokens are single-use, so there are
// no retries: a failed call surfaces immediately.
func (v *recaptchaVerifier) post(ctx context.Context, secret, token string) (*siteverifyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	form := url.Values{
		"secret":   {secret},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify call: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("siteverify status: %s", httpResp.Status)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errors.New("empty response body")
	}

	var resp siteverifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &resp, nil
}
