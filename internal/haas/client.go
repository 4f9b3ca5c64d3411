// Package haas implements the HTTP binding for the trading platform
// API: lab result retrieval, account and bot listing, price lookups
// and bot creation.
package haas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/config"
	"github.com/iamcos/haaslab/internal/transport"
)

// API endpoint paths relative to the platform base URL.
const (
	labsAPI    = "LabsAPI.php"
	accountAPI = "AccountAPI.php"
	botAPI     = "BotAPI.php"
	priceAPI   = "PriceAPI.php"
	userAPI    = "UserAPI.php"
)

// Client implements the platform REST client
type Client struct {
	httpClient *transport.RateLimitedHTTPClient
	cfg        *config.HaasConfig
	logger     *logrus.Logger
}

// NewClient creates a new platform API client
func NewClient(cfg *config.HaasConfig, httpClient *transport.RateLimitedHTTPClient, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// channelParams attaches the channel name and session credentials that
// every platform call carries.
func (c *Client) channelParams(channel string, params url.Values) url.Values {
	if params == nil {
		params = url.Values{}
	}
	params.Set("channel", channel)
	params.Set("interfacekey", c.cfg.InterfaceKey)
	params.Set("userid", c.cfg.UserID)
	return params
}

// makeRequest performs a read-only channel request as a GET and unwraps
// the standard response envelope.
func (c *Client) makeRequest(ctx context.Context, api, channel string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s?%s", c.cfg.APIEndpoint(api), c.channelParams(channel, params).Encode())

	c.logger.WithFields(logrus.Fields{
		"api":     api,
		"channel": channel,
	}).Debug("Making platform API request")

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return c.decodeResponse(resp, api, channel)
}

// makePostRequest performs a state-changing channel request as a
// form-encoded POST.
func (c *Client) makePostRequest(ctx context.Context, api, channel string, params url.Values) (json.RawMessage, error) {
	body := strings.NewReader(c.channelParams(channel, params).Encode())

	c.logger.WithFields(logrus.Fields{
		"api":     api,
		"channel": channel,
	}).Debug("Making platform API request")

	resp, err := c.httpClient.Post(ctx, c.cfg.APIEndpoint(api), "application/x-www-form-urlencoded", body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return c.decodeResponse(resp, api, channel)
}

func (c *Client) decodeResponse(resp *http.Response, api, channel string) (json.RawMessage, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewAuthenticationError(fmt.Sprintf("status %d from %s", resp.StatusCode, api), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIError(fmt.Sprintf("unexpected status code %d", resp.StatusCode), channel, nil)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		return nil, mapPlatformError(env.Error, channel)
	}

	return env.Data, nil
}

// Authenticate verifies the configured credentials against the
// platform. It must succeed before any per-lab work starts; a failure
// here is fatal for the run.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.InterfaceKey == "" || c.cfg.UserID == "" {
		return NewAuthenticationError("interface key and user id must be configured", nil)
	}

	_, err := c.makeRequest(ctx, userAPI, "CHECK_CREDENTIALS", nil)
	if err != nil {
		if IsAuthenticationError(err) {
			return err
		}
		// Connection-level failures before any lab work are equally fatal.
		return NewAuthenticationError("credential check failed", err)
	}

	c.logger.Info("Platform credentials verified")
	return nil
}
