package spotify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"music-assistant/internal/domain"
	"music-assistant/internal/infra"
)

// lyricSearchLimit bounds the candidate set scanned for a lyric match.
const lyricSearchLimit = 10

// Client is the Spotify Web API implementation of the music service. It holds
// a refresh token obtained out of band and exchanges it for short-lived access
// tokens as needed.
type Client struct {
	clientID     string
	clientSecret string
	refreshToken string
	baseURL      string
	accountsURL  string
	httpClient   *http.Client

	mu       sync.RWMutex
	token    string
	expireAt time.Time
}

func NewClient(clientID, clientSecret, refreshToken string) *Client {
	return NewClientWithURLs(clientID, clientSecret, refreshToken,
		"https://api.spotify.com", "https://accounts.spotify.com")
}

func NewClientWithURLs(clientID, clientSecret, refreshToken, baseURL, accountsURL string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		baseURL:      baseURL,
		accountsURL:  accountsURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// PlayByTitle searches for the single best (title, artist) match and starts
// playback on the first available device. An under-specified slot is passed
// through as-is; the search simply fails to match and yields not-found.
func (c *Client) PlayByTitle(ctx context.Context, slot domain.TitleSlot) (*domain.Outcome, error) {
	premium, err := c.isPremium(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking account: %w", err)
	}
	if !premium {
		return &domain.Outcome{
			Kind:    domain.OutcomePremiumRequired,
			Message: "Spotify Premium is required to play songs.",
		}, nil
	}

	query := fmt.Sprintf("track:%q artist:%q", slot.Title, slot.Artist)
	tracks, err := c.searchTracks(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return &domain.Outcome{
			Kind:    domain.OutcomeNotFound,
			Message: "No song found with that name and artist.",
		}, nil
	}

	return c.startPlayback(ctx, tracks[0])
}

// PlayByLyric runs the fragment as a free-text search over a bounded ranked
// candidate set, plays the first candidate whose name or artist contains the
// fragment, and falls back to the top-ranked candidate when none does. There
// is deliberately no relevance threshold on the fallback.
func (c *Client) PlayByLyric(ctx context.Context, slot domain.LyricSlot) (*domain.Outcome, error) {
	tracks, err := c.searchTracks(ctx, slot.Fragment, lyricSearchLimit)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return &domain.Outcome{
			Kind:    domain.OutcomeNotFound,
			Message: "No song found with those lyrics.",
		}, nil
	}

	for _, track := range tracks {
		if track.Matches(slot.Fragment) {
			return c.startPlayback(ctx, track)
		}
	}

	return c.startPlayback(ctx, tracks[0])
}

// Pause pauses playback on the first available device. A 403 from the player
// endpoint is a device restriction, reported as a business outcome.
func (c *Client) Pause(ctx context.Context) (*domain.Outcome, error) {
	device, err := c.firstDevice(ctx)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return noDeviceOutcome(), nil
	}

	query := url.Values{"device_id": {device.ID}}
	status, body, err := c.doRequest(ctx, http.MethodPut, "/v1/me/player/pause", query, nil)
	if err != nil {
		return nil, fmt.Errorf("pausing playback: %w", err)
	}
	if status == http.StatusForbidden {
		return &domain.Outcome{
			Kind:    domain.OutcomeRestricted,
			Message: "Unable to pause playback: restriction violated. Ensure the device supports this action.",
		}, nil
	}
	if status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("spotify pause error %d: %s", status, string(body))
	}

	return &domain.Outcome{Kind: domain.OutcomePaused, Message: "Playback paused."}, nil
}

// SkipNext skips to the next track on the first available device.
func (c *Client) SkipNext(ctx context.Context) (*domain.Outcome, error) {
	device, err := c.firstDevice(ctx)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return noDeviceOutcome(), nil
	}

	query := url.Values{"device_id": {device.ID}}
	status, body, err := c.doRequest(ctx, http.MethodPost, "/v1/me/player/next", query, nil)
	if err != nil {
		return nil, fmt.Errorf("skipping track: %w", err)
	}
	if status == http.StatusForbidden {
		return &domain.Outcome{
			Kind:    domain.OutcomeRestricted,
			Message: "Unable to skip: restriction violated. Ensure the device supports this action.",
		}, nil
	}
	if status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("spotify skip error %d: %s", status, string(body))
	}

	return &domain.Outcome{Kind: domain.OutcomeSkipped, Message: "Skipped to the next song."}, nil
}

func noDeviceOutcome() *domain.Outcome {
	return &domain.Outcome{
		Kind:    domain.OutcomeNoDevice,
		Message: "No active devices found.",
	}
}

// startPlayback queues the track on the first available device and starts it.
func (c *Client) startPlayback(ctx context.Context, track domain.Track) (*domain.Outcome, error) {
	device, err := c.firstDevice(ctx)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return noDeviceOutcome(), nil
	}

	query := url.Values{"uri": {track.URI}, "device_id": {device.ID}}
	status, body, err := c.doRequest(ctx, http.MethodPost, "/v1/me/player/queue", query, nil)
	if err != nil {
		return nil, fmt.Errorf("queueing track: %w", err)
	}
	if status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("spotify queue error %d: %s", status, string(body))
	}

	playBody, _ := json.Marshal(map[string]any{"uris": []string{track.URI}})
	query = url.Values{"device_id": {device.ID}}
	status, body, err = c.doRequest(ctx, http.MethodPut, "/v1/me/player/play", query, playBody)
	if err != nil {
		return nil, fmt.Errorf("starting playback: %w", err)
	}
	if status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("spotify play error %d: %s", status, string(body))
	}

	artist := track.PrimaryArtist()
	return &domain.Outcome{
		Kind:    domain.OutcomePlaying,
		Message: fmt.Sprintf("Playing: %s by %s", track.Name, artist),
		Track:   track.Name,
		Artist:  artist,
	}, nil
}

func (c *Client) isPremium(ctx context.Context) (bool, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, "/v1/me", nil, nil)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, fmt.Errorf("spotify profile error %d: %s", status, string(body))
	}

	var profile struct {
		Product string `json:"product"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return false, fmt.Errorf("parsing profile: %w", err)
	}

	return profile.Product == "premium", nil
}

func (c *Client) searchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {fmt.Sprintf("%d", limit)},
	}

	status, body, err := c.doRequest(ctx, http.MethodGet, "/v1/search", params, nil)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("spotify search error %d: %s", status, string(body))
	}

	var result struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				URI     string `json:"uri"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
			} `json:"items"`
		} `json:"tracks"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	tracks := make([]domain.Track, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		track := domain.Track{
			ID:   item.ID,
			URI:  item.URI,
			Name: item.Name,
		}
		for _, artist := range item.Artists {
			track.Artists = append(track.Artists, artist.Name)
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

// firstDevice returns the first device the player reports, or nil when there
// are none. The first listed device is used regardless of its active flag.
func (c *Client) firstDevice(ctx context.Context) (*domain.Device, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, "/v1/me/player/devices", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching devices: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("spotify devices error %d: %s", status, string(body))
	}

	var result struct {
		Devices []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"is_active"`
		} `json:"devices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing devices: %w", err)
	}

	if len(result.Devices) == 0 {
		return nil, nil
	}

	d := result.Devices[0]
	return &domain.Device{ID: d.ID, Name: d.Name, Active: d.Active}, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	if err := c.ensureToken(ctx); err != nil {
		return 0, nil, err
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	var status int
	var respBody []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		status = resp.StatusCode
		if infra.IsRetryableHTTPStatus(status) {
			return fmt.Errorf("spotify API error %d (retryable): %s", status, string(respBody))
		}

		return nil
	})

	if retryErr != nil {
		return 0, nil, retryErr
	}

	return status, respBody, nil
}

func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.RLock()
	if c.token != "" && time.Now().Add(time.Minute).Before(c.expireAt) {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Add(time.Minute).Before(c.expireAt) {
		return nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token error %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err = json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	c.token = tokenResp.AccessToken
	c.expireAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return nil
}
