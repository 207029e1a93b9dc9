package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt103perf/internal/mock"
	"mt103perf/internal/probe"
	"mt103perf/internal/report"
	"mt103perf/internal/runner"
)

func testConfig(url string) runner.Config {
	cfg := runner.DefaultConfig()
	cfg.BaseURL = url
	cfg.PageLoads = 3
	cfg.APICalls = 2
	cfg.ConcurrentUsers = 2
	cfg.RequestsPerUser = 2
	cfg.HealthTimeout = time.Second
	cfg.PageTimeout = time.Second
	cfg.APITimeout = 2 * time.Second
	return cfg
}

func TestStart_AgainstMock(t *testing.T) {
	srv := httptest.NewServer(mock.NewServer(mock.Config{}, nil).Handler())
	defer srv.Close()

	var out bytes.Buffer
	rep, err := Start(context.Background(), testConfig(srv.URL), Options{
		Stdout: &out,
		Prober: probe.NewWithClient(srv.Client()),
	})
	require.NoError(t, err)

	require.NotNil(t, rep.PageLoad)
	require.NotNil(t, rep.APICalls)
	assert.Equal(t, 3+2*2, rep.PageLoad.Stats.Count)
	assert.Equal(t, 2, rep.APICalls.Stats.Count)
	assert.Zero(t, rep.TotalErrors)
	assert.NotNil(t, rep.HealthMillis)
	assert.NotEmpty(t, rep.Meta.RunID)

	text := out.String()
	assert.Contains(t, text, "STARTING MT103 PERFORMANCE TEST")
	assert.Contains(t, text, "PERFORMANCE REPORT")
	assert.Contains(t, text, "completed 4 requests successfully")
}

func TestStart_FailingTarget(t *testing.T) {
	srv := httptest.NewServer(mock.NewServer(mock.Config{FailRate: 1}, nil).Handler())
	defer srv.Close()

	var out bytes.Buffer
	rep, err := Start(context.Background(), testConfig(srv.URL), Options{
		Stdout: &out,
		Prober: probe.NewWithClient(srv.Client()),
	})
	require.NoError(t, err)

	assert.Nil(t, rep.PageLoad)
	assert.Nil(t, rep.APICalls)
	assert.NotNil(t, rep.HealthMillis)
	assert.Equal(t, 3+2+4, rep.TotalErrors)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, "HTTP 500", rep.Errors[0].Description)
	assert.Contains(t, rep.Recommendations, "Review the service error logs")
}

func TestStart_InvalidConfig(t *testing.T) {
	cfg := runner.DefaultConfig()
	cfg.BaseURL = "localhost:5000"

	var out bytes.Buffer
	rep, err := Start(context.Background(), cfg, Options{Stdout: &out})

	assert.ErrorIs(t, err, runner.ErrInvalidURL)
	assert.Nil(t, rep)
	assert.Empty(t, out.String())
}

func TestStart_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()

	t.Run("json written", func(t *testing.T) {
		path := filepath.Join(dir, "run.json")
		var out bytes.Buffer
		_, err := Start(context.Background(), testConfig(srv.URL), Options{
			Stdout: &out,
			Out:    path,
			Prober: probe.NewWithClient(srv.Client()),
		})
		require.NoError(t, err)

		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
		assert.Contains(t, out.String(), "Report saved to")
	})

	t.Run("unsupported format is logged only", func(t *testing.T) {
		var logs bytes.Buffer
		logger := zerolog.New(&logs)
		var out bytes.Buffer

		rep, err := Start(context.Background(), testConfig(srv.URL), Options{
			Stdout: &out,
			Out:    filepath.Join(dir, "run.xml"),
			Logger: &logger,
			Prober: probe.NewWithClient(srv.Client()),
		})

		require.NoError(t, err)
		assert.NotNil(t, rep)
		assert.Contains(t, logs.String(), "export failed")
		assert.Contains(t, logs.String(), report.ErrUnsupportedFormat.Error())
		assert.NotContains(t, out.String(), "Report saved to")
	})
}
