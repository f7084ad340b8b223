// Package steam talks to the Steam Web API and verifies Steam OpenID 2.0
// login callbacks.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	openIDEndpoint  = "https://steamcommunity.com/openid/login"
	summariesURL    = "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2/"
	claimedIDPrefix = "https://steamcommunity.com/openid/id/"

	// MaxSummariesBatch is the Steam API limit on ids per summaries call.
	MaxSummariesBatch = 100
)

var (
	// ErrVerificationFailed reports a callback Steam refused to vouch for.
	ErrVerificationFailed = errors.New("steam: openid verification failed")

	// ErrUpstream reports a transport failure or non-200 from Steam.
	ErrUpstream = errors.New("steam: upstream unavailable")
)

var steamIDPattern = regexp.MustCompile(`^\d{17}$`)

// Client wraps the Steam endpoints this service needs. The zero value is not
// usable; use NewClient.
type Client struct {
	APIKey string
	HTTP   *http.Client

	// overridable in tests
	openIDURL    string
	summariesURL string
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:       apiKey,
		HTTP:         &http.Client{Timeout: 5 * time.Second},
		openIDURL:    openIDEndpoint,
		summariesURL: summariesURL,
	}
}

// AuthURL builds the OpenID 2.0 login redirect pointing back at returnTo.
func (c *Client) AuthURL(returnTo, realm string) string {
	q := url.Values{
		"openid.ns":         {"http://specs.openid.net/auth/2.0"},
		"openid.mode":       {"checkid_setup"},
		"openid.return_to":  {returnTo},
		"openid.realm":      {realm},
		"openid.identity":   {"http://specs.openid.net/auth/2.0/identifier_select"},
		"openid.claimed_id": {"http://specs.openid.net/auth/2.0/identifier_select"},
	}
	return c.openIDURL + "?" + q.Encode()
}

// VerifyCallback replays the callback parameters to Steam with
// check_authentication and returns the asserted 64-bit Steam ID. The
// claimed_id is only trusted after Steam answers is_valid:true.
func (c *Client) VerifyCallback(ctx context.Context, params url.Values) (string, error) {
	claimed := params.Get("openid.claimed_id")
	steamID := strings.TrimPrefix(claimed, claimedIDPrefix)
	if steamID == claimed || !steamIDPattern.MatchString(steamID) {
		return "", ErrVerificationFailed
	}

	verify := url.Values{}
	for key, vals := range params {
		if strings.HasPrefix(key, "openid.") {
			verify[key] = vals
		}
	}
	verify.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.openIDURL,
		strings.NewReader(verify.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !strings.Contains(string(body), "is_valid:true") {
		return "", ErrVerificationFailed
	}
	return steamID, nil
}

// PlayerSummary is the subset of the Steam player summary the hub uses.
type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	AvatarFull   string `json:"avatarfull"`
	PersonaState int    `json:"personastate"`
	GameID       string `json:"gameid,omitempty"`
}

// GetPlayerSummaries fetches summaries for up to MaxSummariesBatch ids.
// Callers batch larger sets themselves.
func (c *Client) GetPlayerSummaries(ctx context.Context, steamIDs []string) ([]PlayerSummary, error) {
	if len(steamIDs) == 0 {
		return nil, nil
	}
	if len(steamIDs) > MaxSummariesBatch {
		return nil, fmt.Errorf("steam: batch of %d exceeds limit %d", len(steamIDs), MaxSummariesBatch)
	}

	q := url.Values{
		"key":      {c.APIKey},
		"steamids": {strings.Join(steamIDs, ",")},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.summariesURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var payload struct {
		Response struct {
			Players []PlayerSummary `json:"players"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return payload.Response.Players, nil
}
