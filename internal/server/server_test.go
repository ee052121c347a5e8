package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-nowplaying-go/internal/auth"
	"github.com/strefethen/sonos-nowplaying-go/internal/config"
	"github.com/strefethen/sonos-nowplaying-go/internal/sonosapi"
)

const zonesPayload = `[
  {
    "uuid": "RINCON_1",
    "members": [{"uuid": "RINCON_1", "roomName": "Kitchen"}],
    "coordinator": {
      "uuid": "RINCON_1",
      "roomName": "Kitchen",
      "state": {
        "currentTrack": {
          "uri": "x-sonos-spotify:spotify%3atrack%3aabc?sid=12",
          "artist": "Artist",
          "title": "Title",
          "albumArtUri": "/getaa?s=1&u=abc",
          "absoluteAlbumArtUri": "http://192.168.1.10:1400/getaa?s=1&u=abc"
        },
        "playbackState": "PLAYING"
      }
    }
  }
]`

type stubFetcher struct {
	mu      sync.Mutex
	payload string
	err     error
}

func (f *stubFetcher) FetchZones(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.payload), nil
}

func (f *stubFetcher) set(payload string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payload = payload
	f.err = err
}

func newTestServer(t *testing.T, cfg config.Config, fetcher *stubFetcher) *httptest.Server {
	t.Helper()
	handler, shutdown, err := NewHandler(cfg, Options{Fetcher: fetcher, DisablePolling: true})
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		_ = shutdown(context.Background())
	})
	return server
}

func doRequest(t *testing.T, method, url, token string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_ReadyAfterRefresh(t *testing.T) {
	fetcher := &stubFetcher{payload: zonesPayload}
	server := newTestServer(t, config.Default(), fetcher)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_LOADED")

	resp, body = doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var refresh RefreshResponse
	require.NoError(t, json.Unmarshal(body, &refresh))
	assert.Equal(t, "room_refresh", refresh.Object)
	assert.True(t, refresh.Changed)
	require.Len(t, refresh.Rooms, 1)
	assert.Equal(t, "Kitchen", refresh.Rooms[0].Name)

	resp, _ = doRequest(t, http.MethodGet, server.URL+"/v1/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RoomsList(t *testing.T) {
	fetcher := &stubFetcher{payload: zonesPayload}
	server := newTestServer(t, config.Default(), fetcher)
	doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")

	resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/rooms/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Object string `json:"object"`
		Data   []struct {
			Name     string `json:"name"`
			State    string `json:"state"`
			Artist   string `json:"artist"`
			Track    string `json:"track"`
			AlbumArt string `json:"albumArt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, "list", list.Object)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "PLAYING", list.Data[0].State)
	assert.Equal(t, "Title", list.Data[0].Track)
	assert.Equal(t, "http://192.168.1.10:1400/getaa?s=1&u=abc", list.Data[0].AlbumArt)
}

func TestServer_RefreshErrors(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		err     error
		status  int
		code    string
	}{
		{"malformed payload", `{"zones": []}`, nil, http.StatusBadGateway, "MALFORMED_PAYLOAD"},
		{"timeout", "", &sonosapi.TimeoutError{URL: "http://localhost:5005/zones"}, http.StatusBadGateway, "SONOS_TIMEOUT"},
		{"unreachable", "", &sonosapi.UnreachableError{URL: "http://localhost:5005/zones", Err: errors.New("refused")}, http.StatusBadGateway, "SONOS_UNREACHABLE"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &stubFetcher{payload: tc.payload, err: tc.err}
			server := newTestServer(t, config.Default(), fetcher)

			resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Contains(t, string(body), tc.code)

			resp, _ = doRequest(t, http.MethodGet, server.URL+"/v1/health/ready", "")
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		})
	}
}

func TestServer_RefreshRequiresTokenWhenSecretSet(t *testing.T) {
	cfg := config.Default()
	cfg.AuthSecret = "0123456789abcdef0123456789abcdef"
	server := newTestServer(t, cfg, &stubFetcher{payload: zonesPayload})

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := auth.GenerateToken(cfg.AuthSecret, auth.TokenPayload{Sub: "test"}, time.Hour)
	require.NoError(t, err)
	resp, _ = doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, http.MethodGet, server.URL+"/v1/rooms", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_DisplayAndHTML(t *testing.T) {
	cfg := config.Default()
	cfg.Language = "de"
	fetcher := &stubFetcher{payload: zonesPayload}
	server := newTestServer(t, cfg, fetcher)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Lade")

	doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")

	resp, body = doRequest(t, http.MethodGet, server.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Kitchen")
	assert.Contains(t, string(body), "Artist")

	resp, body = doRequest(t, http.MethodGet, server.URL+"/v1/display", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var data map[string]any
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Equal(t, true, data["loaded"])
	assert.Equal(t, true, data["showAlbumArtRight"])
	assert.Equal(t, float64(1000), data["animationSpeed"])
}

func TestServer_PollerStatus(t *testing.T) {
	fetcher := &stubFetcher{payload: zonesPayload}
	server := newTestServer(t, config.Default(), fetcher)
	doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")

	resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/poller", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]any
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, float64(1), status["polls"])
	assert.Equal(t, float64(1), status["changes"])
	assert.Equal(t, "@every 30s", status["schedule"])
}

func TestServer_WebSocketPushesChanges(t *testing.T) {
	fetcher := &stubFetcher{payload: "[]"}
	server := newTestServer(t, config.Default(), fetcher)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/rooms"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	type pushed struct {
		Type           string `json:"type"`
		AnimationSpeed int    `json:"animation_speed"`
		Data           struct {
			Loaded   bool `json:"loaded"`
			RoomList []struct {
				Name string `json:"name"`
			} `json:"roomList"`
		} `json:"data"`
	}

	read := func() pushed {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg pushed
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	initial := read()
	assert.Equal(t, "rooms", initial.Type)
	assert.Equal(t, 1000, initial.AnimationSpeed)
	assert.False(t, initial.Data.Loaded)

	fetcher.set(zonesPayload, nil)
	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/rooms/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	update := read()
	assert.True(t, update.Data.Loaded)
	require.Len(t, update.Data.RoomList, 1)
	assert.Equal(t, "Kitchen", update.Data.RoomList[0].Name)
}

func TestServer_BackgroundPolling(t *testing.T) {
	cfg := config.Default()
	cfg.PollSchedule = "@every 1h"
	handler, shutdown, err := NewHandler(cfg, Options{Fetcher: &stubFetcher{payload: zonesPayload}})
	require.NoError(t, err)
	defer shutdown(context.Background())

	// The loop polls once right after starting.
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health/ready", nil))
		return rec.Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
}
