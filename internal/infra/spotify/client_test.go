package spotify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"music-assistant/internal/domain"
	"music-assistant/internal/infra/spotify"
)

type fakeBackend struct {
	product      string
	searchItems  []map[string]any
	devices      []map[string]any
	pauseStatus  int
	queuedURIs   []string
	playedURIs   []string
	skipCalls    int
	searchQuery  string
	searchLimit  string
	tokenGranted bool
}

func trackItem(name, uri string, artists ...string) map[string]any {
	artistList := make([]map[string]any, 0, len(artists))
	for _, a := range artists {
		artistList = append(artistList, map[string]any{"name": a})
	}
	return map[string]any{
		"id":      uri,
		"uri":     uri,
		"name":    name,
		"artists": artistList,
	}
}

func (f *fakeBackend) accounts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		f.tokenGranted = true
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
}

func (f *fakeBackend) api() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/me":
			json.NewEncoder(w).Encode(map[string]any{"product": f.product})
		case r.URL.Path == "/v1/search":
			f.searchQuery = r.URL.Query().Get("q")
			f.searchLimit = r.URL.Query().Get("limit")
			json.NewEncoder(w).Encode(map[string]any{
				"tracks": map[string]any{"items": f.searchItems},
			})
		case r.URL.Path == "/v1/me/player/devices":
			json.NewEncoder(w).Encode(map[string]any{"devices": f.devices})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/me/player/queue":
			f.queuedURIs = append(f.queuedURIs, r.URL.Query().Get("uri"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPut && r.URL.Path == "/v1/me/player/play":
			var body struct {
				URIs []string `json:"uris"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.playedURIs = append(f.playedURIs, body.URIs...)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPut && r.URL.Path == "/v1/me/player/pause":
			status := f.pauseStatus
			if status == 0 {
				status = http.StatusNoContent
			}
			w.WriteHeader(status)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/me/player/next":
			f.skipCalls++
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, backend *fakeBackend) *spotify.Client {
	t.Helper()

	accounts := httptest.NewServer(backend.accounts())
	t.Cleanup(accounts.Close)

	api := httptest.NewServer(backend.api())
	t.Cleanup(api.Close)

	return spotify.NewClientWithURLs("client-id", "secret", "refresh-token", api.URL, accounts.URL)
}

func TestClient_PlayByTitle(t *testing.T) {
	backend := &fakeBackend{
		product:     "premium",
		searchItems: []map[string]any{trackItem("Enemy", "spotify:track:1", "Imagine Dragons", "JID")},
		devices:     []map[string]any{{"id": "dev1", "name": "Desktop", "is_active": true}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByTitle(context.Background(), domain.TitleSlot{Title: "enemy", Artist: "imagine dragons"})
	if err != nil {
		t.Fatalf("PlayByTitle error: %v", err)
	}

	if outcome.Kind != domain.OutcomePlaying {
		t.Errorf("outcome kind: got %s, want playing", outcome.Kind)
	}

	if outcome.Message != "Playing: Enemy by Imagine Dragons" {
		t.Errorf("message: got %q", outcome.Message)
	}

	if !backend.tokenGranted {
		t.Error("access token was never requested")
	}

	if backend.searchQuery != `track:"enemy" artist:"imagine dragons"` {
		t.Errorf("search query: got %q", backend.searchQuery)
	}

	if len(backend.queuedURIs) != 1 || backend.queuedURIs[0] != "spotify:track:1" {
		t.Errorf("queued URIs: got %v", backend.queuedURIs)
	}

	if len(backend.playedURIs) != 1 || backend.playedURIs[0] != "spotify:track:1" {
		t.Errorf("played URIs: got %v", backend.playedURIs)
	}
}

func TestClient_PlayByTitle_NotFound(t *testing.T) {
	backend := &fakeBackend{
		product: "premium",
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByTitle(context.Background(), domain.TitleSlot{Title: "does not exist", Artist: "nobody"})
	if err != nil {
		t.Fatalf("not-found must not be an error, got: %v", err)
	}

	if outcome.Kind != domain.OutcomeNotFound {
		t.Errorf("outcome kind: got %s, want not_found", outcome.Kind)
	}

	if len(backend.queuedURIs) != 0 {
		t.Errorf("queued URIs on not-found: %v", backend.queuedURIs)
	}
}

func TestClient_PlayByTitle_NoDevice(t *testing.T) {
	backend := &fakeBackend{
		product:     "premium",
		searchItems: []map[string]any{trackItem("Enemy", "spotify:track:1", "Imagine Dragons")},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByTitle(context.Background(), domain.TitleSlot{Title: "enemy", Artist: "imagine dragons"})
	if err != nil {
		t.Fatalf("no-device must not be an error, got: %v", err)
	}

	if outcome.Kind != domain.OutcomeNoDevice {
		t.Errorf("outcome kind: got %s, want no_device", outcome.Kind)
	}

	if outcome.Message != "No active devices found." {
		t.Errorf("message: got %q", outcome.Message)
	}
}

func TestClient_PlayByTitle_PremiumRequired(t *testing.T) {
	backend := &fakeBackend{
		product:     "free",
		searchItems: []map[string]any{trackItem("Enemy", "spotify:track:1", "Imagine Dragons")},
		devices:     []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByTitle(context.Background(), domain.TitleSlot{Title: "enemy", Artist: "imagine dragons"})
	if err != nil {
		t.Fatalf("PlayByTitle error: %v", err)
	}

	if outcome.Kind != domain.OutcomePremiumRequired {
		t.Errorf("outcome kind: got %s, want premium_required", outcome.Kind)
	}

	if len(backend.playedURIs) != 0 {
		t.Errorf("playback started on a free account: %v", backend.playedURIs)
	}
}

func TestClient_PlayByLyric_FirstMatchingCandidate(t *testing.T) {
	backend := &fakeBackend{
		searchItems: []map[string]any{
			trackItem("Some Other Song", "spotify:track:1", "Someone"),
			trackItem("Whatever It Takes", "spotify:track:2", "Imagine Dragons"),
			trackItem("Whatever It Takes (Live)", "spotify:track:3", "Imagine Dragons"),
		},
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByLyric(context.Background(), domain.LyricSlot{Fragment: "whatever it takes"})
	if err != nil {
		t.Fatalf("PlayByLyric error: %v", err)
	}

	if outcome.Kind != domain.OutcomePlaying {
		t.Errorf("outcome kind: got %s", outcome.Kind)
	}

	if backend.searchLimit != "10" {
		t.Errorf("search limit: got %s, want 10", backend.searchLimit)
	}

	// First candidate whose name matches, not the top-ranked one.
	if len(backend.playedURIs) != 1 || backend.playedURIs[0] != "spotify:track:2" {
		t.Errorf("played URIs: got %v, want spotify:track:2", backend.playedURIs)
	}
}

func TestClient_PlayByLyric_FallsBackToTopCandidate(t *testing.T) {
	backend := &fakeBackend{
		searchItems: []map[string]any{
			trackItem("Top Ranked Result", "spotify:track:1", "First Artist"),
			trackItem("Second Result", "spotify:track:2", "Second Artist"),
		},
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByLyric(context.Background(), domain.LyricSlot{Fragment: "just a young gun with a quick fuse"})
	if err != nil {
		t.Fatalf("PlayByLyric error: %v", err)
	}

	if outcome.Kind != domain.OutcomePlaying {
		t.Errorf("outcome kind: got %s", outcome.Kind)
	}

	if len(backend.playedURIs) != 1 || backend.playedURIs[0] != "spotify:track:1" {
		t.Errorf("played URIs: got %v, want top candidate", backend.playedURIs)
	}
}

func TestClient_PlayByLyric_NotFound(t *testing.T) {
	backend := &fakeBackend{
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.PlayByLyric(context.Background(), domain.LyricSlot{Fragment: "no such lyrics"})
	if err != nil {
		t.Fatalf("PlayByLyric error: %v", err)
	}

	if outcome.Kind != domain.OutcomeNotFound {
		t.Errorf("outcome kind: got %s, want not_found", outcome.Kind)
	}

	if outcome.Message != "No song found with those lyrics." {
		t.Errorf("message: got %q", outcome.Message)
	}
}

func TestClient_Pause(t *testing.T) {
	backend := &fakeBackend{
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.Pause(context.Background())
	if err != nil {
		t.Fatalf("Pause error: %v", err)
	}

	if outcome.Kind != domain.OutcomePaused {
		t.Errorf("outcome kind: got %s, want paused", outcome.Kind)
	}
}

func TestClient_Pause_Restriction(t *testing.T) {
	backend := &fakeBackend{
		devices:     []map[string]any{{"id": "dev1"}},
		pauseStatus: http.StatusForbidden,
	}

	client := newTestClient(t, backend)

	outcome, err := client.Pause(context.Background())
	if err != nil {
		t.Fatalf("restriction must not be an error, got: %v", err)
	}

	if outcome.Kind != domain.OutcomeRestricted {
		t.Errorf("outcome kind: got %s, want restricted", outcome.Kind)
	}
}

func TestClient_Pause_NoDevice(t *testing.T) {
	backend := &fakeBackend{}

	client := newTestClient(t, backend)

	outcome, err := client.Pause(context.Background())
	if err != nil {
		t.Fatalf("Pause error: %v", err)
	}

	if outcome.Kind != domain.OutcomeNoDevice {
		t.Errorf("outcome kind: got %s, want no_device", outcome.Kind)
	}
}

func TestClient_SkipNext(t *testing.T) {
	backend := &fakeBackend{
		devices: []map[string]any{{"id": "dev1"}},
	}

	client := newTestClient(t, backend)

	outcome, err := client.SkipNext(context.Background())
	if err != nil {
		t.Fatalf("SkipNext error: %v", err)
	}

	if outcome.Kind != domain.OutcomeSkipped {
		t.Errorf("outcome kind: got %s, want skipped", outcome.Kind)
	}

	if backend.skipCalls != 1 {
		t.Errorf("skip calls: got %d, want 1", backend.skipCalls)
	}
}
