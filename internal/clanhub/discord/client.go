// Package discord implements the OAuth2 authorization-code exchange used to
// link a Discord account to a player.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	authorizeEndpoint = "https://discord.com/oauth2/authorize"
	tokenEndpoint     = "https://discord.com/api/oauth2/token"
	userEndpoint      = "https://discord.com/api/users/@me"
)

// ErrUpstream reports a transport failure or error response from Discord.
var ErrUpstream = errors.New("discord: upstream unavailable")

type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	HTTP         *http.Client

	// overridable in tests
	tokenURL string
	userURL  string
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		HTTP:         &http.Client{Timeout: 5 * time.Second},
		tokenURL:     tokenEndpoint,
		userURL:      userEndpoint,
	}
}

// AuthURL builds the authorization redirect carrying the CSRF state.
func (c *Client) AuthURL(state string) string {
	q := url.Values{
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"response_type": {"code"},
		"scope":         {"identify"},
		"state":         {state},
	}
	return authorizeEndpoint + "?" + q.Encode()
}

// User is the subset of the Discord /users/@me response the hub persists.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ExchangeCode swaps the authorization code for an access token and fetches
// the user's identity in one call.
func (c *Client) ExchangeCode(ctx context.Context, code string) (User, error) {
	form := url.Values{
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.RedirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("%w: token exchange status %d", ErrUpstream, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if token.AccessToken == "" {
		return User{}, fmt.Errorf("%w: empty access token", ErrUpstream)
	}

	return c.fetchUser(ctx, token.TokenType, token.AccessToken)
}

func (c *Client) fetchUser(ctx context.Context, tokenType, accessToken string) (User, error) {
	if tokenType == "" {
		tokenType = "Bearer"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("Authorization", tokenType+" "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("%w: user fetch status %d", ErrUpstream, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return user, nil
}
