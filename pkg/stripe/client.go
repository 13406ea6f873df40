package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/config"
	"github.com/Tag-Take/tagandtake-backend-sub000/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired          = errors.New("stripe api key is required")
	errPlatformSecretRequired  = errors.New("stripe platform webhook secret is required")
	errConnectedSecretRequired = errors.New("stripe connected webhook secret is required")
	errInvalidStripeEnv        = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps Stripe's API client plus env-specific metadata. The platform
// and connected-account webhook endpoints carry separate signing secrets.
type Client struct {
	api             *stripe.Client
	environment     string
	platformSecret  string
	connectedSecret string
	callTimeout     time.Duration
}

// NewClient initializes Stripe once with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	platformSecret := strings.TrimSpace(cfg.PlatformWebhookSecret)
	if platformSecret == "" {
		return nil, errPlatformSecretRequired
	}

	connectedSecret := strings.TrimSpace(cfg.ConnectedWebhookSecret)
	if connectedSecret == "" {
		return nil, errConnectedSecretRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:             api,
		environment:     env,
		platformSecret:  platformSecret,
		connectedSecret: connectedSecret,
		callTimeout:     cfg.CallTimeout,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// PlatformSecret returns the signing secret for the platform webhook endpoint.
func (c *Client) PlatformSecret() string {
	if c == nil {
		return ""
	}
	return c.platformSecret
}

// ConnectedSecret returns the signing secret for the connected-account webhook endpoint.
func (c *Client) ConnectedSecret() string {
	if c == nil {
		return ""
	}
	return c.connectedSecret
}

// CallTimeout bounds outbound Stripe API calls.
func (c *Client) CallTimeout() time.Duration {
	if c == nil || c.callTimeout <= 0 {
		return 10 * time.Second
	}
	return c.callTimeout
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
