package xero

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/common/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	defaultAuthURL  = "https://login.xero.com/identity/connect/authorize"
	defaultTokenURL = "https://identity.xero.com/connect/token"
	defaultAPIBase  = "https://api.xero.com"

	// refreshLeeway refreshes tokens slightly before their expiry so an
	// in-flight API call never races the deadline.
	refreshLeeway = 2 * time.Minute
)

var (
	// ErrNotConfigured is returned when Xero credentials are missing
	ErrNotConfigured = errors.New("xero is not configured")
	// ErrNotConnected is returned when no token has been stored yet
	ErrNotConnected = errors.New("xero is not connected")
	// ErrStateMismatch is returned when the OAuth callback state is unknown
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Client wraps the Xero OAuth2 flow and Accounting API
type Client struct {
	logger  *zap.Logger
	cfg     *config.XeroConfig
	db      database.Database
	oauth   *oauth2.Config
	http    *http.Client
	apiBase string

	mu            sync.Mutex
	pendingStates map[string]time.Time
}

// Option configures a Client
type Option func(*Client)

// WithAPIBase overrides the Accounting API base URL
func WithAPIBase(url string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(url, "/")
	}
}

// WithTokenURL overrides the OAuth token endpoint
func WithTokenURL(url string) Option {
	return func(c *Client) {
		c.oauth.Endpoint.TokenURL = url
	}
}

// WithHTTPClient overrides the HTTP client used for API calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// NewClient creates a Xero client. A client with empty credentials is
// still constructed; every operation then fails with ErrNotConfigured.
func NewClient(logger *zap.Logger, db database.Database, cfg *config.XeroConfig, opts ...Option) *Client {
	c := &Client{
		logger: logger.Named("xero"),
		cfg:    cfg,
		db:     db,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       strings.Fields(cfg.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  defaultAuthURL,
				TokenURL: defaultTokenURL,
			},
		},
		http:          &http.Client{Timeout: 30 * time.Second},
		apiBase:       defaultAPIBase,
		pendingStates: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether OAuth credentials are present
func (c *Client) Configured() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// AuthURL returns the authorization redirect URL with a fresh state value
func (c *Client) AuthURL() (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(buf)

	c.mu.Lock()
	now := time.Now()
	for s, issued := range c.pendingStates {
		if now.Sub(issued) > 10*time.Minute {
			delete(c.pendingStates, s)
		}
	}
	c.pendingStates[state] = now
	c.mu.Unlock()

	return c.oauth.AuthCodeURL(state), nil
}

func (c *Client) consumeState(state string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pendingStates[state]; !ok {
		return false
	}
	delete(c.pendingStates, state)
	return true
}

// HandleCallback exchanges the authorization code, discovers the tenant and
// stores the resulting token as the active connection.
func (c *Client) HandleCallback(ctx context.Context, code, state string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if !c.consumeState(state) {
		return ErrStateMismatch
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	tenantID, err := c.discoverTenant(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	return c.db.SaveXeroToken(ctx, &database.XeroToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		TenantID:     tenantID,
	})
}

type connection struct {
	TenantID   string `json:"tenantId"`
	TenantType string `json:"tenantType"`
}

// discoverTenant resolves the first organisation connection for the token
func (c *Client) discoverTenant(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/connections", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("list connections: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("connections returned status %d", resp.StatusCode)
	}

	var connections []connection
	if err := json.NewDecoder(resp.Body).Decode(&connections); err != nil {
		return "", fmt.Errorf("decode connections: %w", err)
	}
	if len(connections) == 0 {
		return "", errors.New("no xero organisation connected")
	}
	return connections[0].TenantID, nil
}

// ensureToken returns a valid access token, refreshing the stored token in
// place when it is near expiry.
func (c *Client) ensureToken(ctx context.Context) (*database.XeroToken, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	stored, err := c.db.GetActiveXeroToken(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}

	if time.Until(stored.ExpiresAt) > refreshLeeway {
		return stored, nil
	}

	c.logger.Info("refreshing xero token", zap.Uint("token_id", stored.ID))
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	src := c.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	})
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	stored.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		stored.RefreshToken = fresh.RefreshToken
	}
	stored.ExpiresAt = fresh.Expiry
	if err := c.db.UpdateXeroToken(ctx, stored); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}
	return stored, nil
}

// doAPI performs an authenticated Accounting API request
func (c *Client) doAPI(ctx context.Context, method, path string, body io.Reader, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Xero-tenant-id", token.TenantID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("xero request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("xero api error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", payload))
		return fmt.Errorf("xero returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
