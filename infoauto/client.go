// Package infoauto wraps the InfoAuto pricing-reference API: basic-auth
// login yields an access/refresh token pair, reads are bearer-authenticated,
// and a 401 is answered with exactly one refresh and one retried call.
package infoauto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"autofinder/utils"
)

// ErrUnauthorized is returned when a call still gets a 401 after the single
// refresh-and-retry the contract allows.
var ErrUnauthorized = errors.New("infoauto: unauthorized after token refresh")

// Brand is one entry of the brand catalog.
type Brand struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Model is one entry of a brand's model catalog.
type Model struct {
	Codia       int    `json:"codia"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
	ListPrice   int    `json:"list_price"`
	PricesFrom  int    `json:"prices_from"`
	PricesTo    int    `json:"prices_to"`
}

// Client talks to the InfoAuto API. Token state is the only mutable state; it
// is guarded so concurrent callers share one login and at most one in-flight
// refresh.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	logger     *utils.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	refreshGroup singleflight.Group
}

// NewClient creates a logged-out Client; the first authenticated call logs in
// lazily.
func NewClient(baseURL, user, password string, logger *utils.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		user:       user,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Login exchanges the configured credentials for a token pair. A response
// without an access token fails the client.
func (c *Client) Login(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.password)

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.doJSON(req, &tokens); err != nil {
		return fmt.Errorf("infoauto login: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("infoauto login: response carried no access token")
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()

	c.logger.Info("[infoauto] Logged in")
	return nil
}

// refresh swaps the access token using the refresh token. Concurrent callers
// collapse onto one in-flight refresh and all observe its outcome.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		c.mu.Lock()
		refreshToken := c.refreshToken
		c.mu.Unlock()
		if refreshToken == "" {
			return nil, errors.New("infoauto refresh: no refresh token held")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+refreshToken)

		var tokens struct {
			AccessToken string `json:"access_token"`
		}
		if err := c.doJSON(req, &tokens); err != nil {
			return nil, fmt.Errorf("infoauto refresh: %w", err)
		}
		if tokens.AccessToken == "" {
			return nil, errors.New("infoauto refresh: response carried no access token")
		}

		c.mu.Lock()
		c.accessToken = tokens.AccessToken
		c.mu.Unlock()

		c.logger.Debug("[infoauto] Access token refreshed")
		return nil, nil
	})
	return err
}

// ensureAuthenticated triggers the lazy first login.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	held := c.accessToken != ""
	c.mu.Unlock()
	if held {
		return nil
	}
	return c.Login(ctx)
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// get performs a bearer-authenticated GET with the 401-then-refresh flow:
// one refresh, one retry, then ErrUnauthorized.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return err
	}

	status, err := c.getOnce(ctx, path, out)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return nil
	}

	if err := c.refresh(ctx); err != nil {
		return err
	}
	status, err = c.getOnce(ctx, path, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// getOnce performs a single authenticated GET. A 401 is reported through the
// status so the caller can apply the refresh policy; other non-2xx statuses
// are hard errors.
func (c *Client) getOnce(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("infoauto GET %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("infoauto GET %s: decode: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Brands lists the brand catalog.
func (c *Client) Brands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := c.get(ctx, "/pub/brands", &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// ModelsByBrand lists the models of one brand.
func (c *Client) ModelsByBrand(ctx context.Context, brandID int) ([]Model, error) {
	var ms []Model
	if err := c.get(ctx, fmt.Sprintf("/pub/brands/%d/models/", brandID), &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// ModelDetail fetches one model by its codia identifier.
func (c *Client) ModelDetail(ctx context.Context, codia int) (*Model, error) {
	var m Model
	if err := c.get(ctx, fmt.Sprintf("/pub/models/%d", codia), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Search runs the API's free-text search.
func (c *Client) Search(ctx context.Context, query string) ([]Model, error) {
	var ms []Model
	if err := c.get(ctx, "/pub/search?q="+url.QueryEscape(query), &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// DownloadBrands fetches the full brand/price-table dump.
func (c *Client) DownloadBrands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := c.get(ctx, "/pub/brands/download", &brands); err != nil {
		return nil, err
	}
	return brands, nil
}
