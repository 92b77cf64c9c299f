package container

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logmein/config"
	"logmein/internal/gateway"
	"logmein/internal/handler"
	"logmein/internal/notify"
	"logmein/internal/preference"
	"logmein/internal/status"
	"logmein/internal/task"
	"logmein/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(&logger.Config{Level: "fatal", Output: "stdout"}); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	m.Run()
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	cfg := config.Default()
	cfg.Gateway.BaseURL = baseURL
	cfg.Preference.FilePath = filepath.Join(t.TempDir(), "prefs.yaml")
	return cfg
}

func TestInit_ResolvesHandler(t *testing.T) {
	cfg := testConfig(t, "https://portal.example/cgi-bin/login")
	require.NoError(t, Init(cfg))
	defer Close()

	err := Invoke(func(h *handler.GatewayHandler, c *gateway.Client, s preference.Store) {
		assert.NotNil(t, h)
		assert.Equal(t, cfg.Gateway.BaseURL, c.BaseURL())
		assert.IsType(t, &preference.FileStore{}, s)
	})
	require.NoError(t, err)
}

func TestInit_RunnerNotifiesExtras(t *testing.T) {
	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Logout")
	}))
	defer portal.Close()

	var out bytes.Buffer
	require.NoError(t, Init(testConfig(t, portal.URL), notify.NewWriter(&out)))
	defer Close()

	var runner *task.Runner
	require.NoError(t, Invoke(func(r *task.Runner) { runner = r }))

	result := <-runner.Logout(context.Background())
	assert.Equal(t, status.LogoutSuccess, result.Code)
	assert.Equal(t, "Logout Successful", strings.TrimSpace(out.String()))
}

func TestInit_DefaultUsernameFromConfig(t *testing.T) {
	cfg := testConfig(t, "https://portal.example/cgi-bin/login")
	cfg.Preference.DefaultUsername = "guest"
	require.NoError(t, Init(cfg))
	defer Close()

	require.NoError(t, Invoke(func(r *task.Runner) {
		assert.Equal(t, "guest", r.SelectedUsername(context.Background()))
	}))
}

func TestInit_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, "https://portal.example/cgi-bin/login")
	cfg.Preference.Backend = "redis"
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1
	cfg.Redis.DialTimeout = 1
	require.NoError(t, Init(cfg))
	defer Close()

	err := Invoke(func(preference.Store) {})
	assert.Error(t, err)
}

func TestInit_InvalidGatewayURL(t *testing.T) {
	require.NoError(t, Init(testConfig(t, "ftp://portal.example")))
	defer Close()

	err := Invoke(func(*gateway.Client) {})
	assert.Error(t, err)
}
