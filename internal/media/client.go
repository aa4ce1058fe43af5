// Package media talks to the video hosting provider's admin API.
package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrNotConfigured = errors.New("media provider credentials are not configured")

type Config struct {
	BaseURL           string
	CloudName         string
	APIKey            string
	APISecret         string
	RequestsPerSecond int
}

// Client deletes video assets through the provider's signed destroy endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
	log        *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		now:     time.Now,
		log:     log,
	}
}

type destroyResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// DeleteAsset removes a video. An asset the provider no longer knows counts as deleted.
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	if c.cfg.CloudName == "" || c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("media rate limiter: %w", err)
	}

	params := map[string]string{
		"public_id":  assetID,
		"invalidate": "true",
		"timestamp":  strconv.FormatInt(c.now().Unix(), 10),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", c.cfg.APIKey)
	form.Set("signature", Sign(params, c.cfg.APISecret))

	endpoint := fmt.Sprintf("%s/%s/video/destroy", c.cfg.BaseURL, c.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("media provider unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug("media asset already gone", zap.String("asset_id", assetID))
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("media provider returned %d: %s", resp.StatusCode, string(body))
	}

	var result destroyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode media provider response: %w", err)
	}
	switch {
	case result.Error != nil:
		return fmt.Errorf("media provider error: %s", result.Error.Message)
	case result.Result == "ok", result.Result == "not found":
		return nil
	default:
		return fmt.Errorf("media provider result %q", result.Result)
	}
}

// Sign computes the provider request signature: the sorted key=value pairs joined
// by '&', followed by the secret, hashed with SHA-1.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "&") + secret))
	return hex.EncodeToString(sum[:])
}
