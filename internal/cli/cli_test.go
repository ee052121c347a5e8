package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/sonos-nowplaying-go/internal/auth"
	"github.com/strefethen/sonos-nowplaying-go/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func stubConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	orig := loadConfig
	t.Cleanup(func() { loadConfig = orig })
	loadConfig = func(string) (config.Config, error) { return cfg, nil }
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SilenceErrors = true
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHelpWorksForAllCommands(t *testing.T) {
	for _, path := range [][]string{{}, {"serve"}, {"once"}, {"token"}} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			out, err := run(t, append(path, "--help")...)
			require.NoError(t, err)
			assert.Contains(t, out, "Usage:")
		})
	}
}

func TestOnceCommandPrintsRooms(t *testing.T) {
	zones := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/zones", r.URL.Path)
		_, _ = w.Write([]byte(`[{"uuid":"RINCON_1","members":[{"uuid":"RINCON_1","roomName":"Office"}],
			"coordinator":{"uuid":"RINCON_1","roomName":"Office","state":{
			"currentTrack":{"type":"line_in","artist":"","title":"","albumArtUri":""},
			"playbackState":"PLAYING"}}}]`))
	}))
	defer zones.Close()

	host, port, err := net.SplitHostPort(strings.TrimPrefix(zones.URL, "http://"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.APIBase = "http://" + host
	cfg.APIPort, err = strconv.Atoi(port)
	require.NoError(t, err)
	stubConfig(t, cfg)

	out, err := run(t, "once")
	require.NoError(t, err)

	var rooms []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "Office", rooms[0]["name"])
	assert.Equal(t, "TV", rooms[0]["state"])
}

func TestOnceCommandReportsFetchFailure(t *testing.T) {
	zones := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer zones.Close()

	host, port, err := net.SplitHostPort(strings.TrimPrefix(zones.URL, "http://"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.APIBase = "http://" + host
	cfg.APIPort, _ = strconv.Atoi(port)
	stubConfig(t, cfg)

	_, err = run(t, "once")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	cfg := config.Default()
	cfg.AuthSecret = testSecret
	stubConfig(t, cfg)

	out, err := run(t, "token", "--sub", "hallway", "--name", "Hallway Mirror")
	require.NoError(t, err)

	payload, err := auth.VerifyToken(testSecret, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "hallway", payload.Sub)
	assert.Equal(t, "Hallway Mirror", payload.ClientName)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	stubConfig(t, config.Default())

	_, err := run(t, "token")
	assert.ErrorContains(t, err, "AUTH_SECRET")
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		logger, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}
