package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"webshop-env/internal/domain/entity"
	"webshop-env/internal/infrastructure/browser/htmlparse"
	"webshop-env/internal/infrastructure/logger"
	"webshop-env/internal/infrastructure/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	resets  int
	actions []string
	stepErr error
}

func (f *fakeEnv) Reset(context.Context) (*entity.Observation, error) {
	f.resets++
	return &entity.Observation{
		URL:         "http://127.0.0.1:3000/abcde",
		Instruction: "find a red mug",
		Image:       &entity.Screenshot{Data: []byte("png-bytes"), Format: "png", Width: 2, Height: 1},
	}, nil
}

func (f *fakeEnv) Step(_ context.Context, action string) (*entity.StepResult, error) {
	f.actions = append(f.actions, action)
	if f.stepErr != nil {
		return nil, f.stepErr
	}
	return &entity.StepResult{
		Observation: &entity.Observation{URL: "http://127.0.0.1:3000/done"},
		Reward:      1,
		Done:        action == "click[Buy Now]",
	}, nil
}

func (f *fakeEnv) AvailableActions(context.Context) (*entity.AvailableActions, error) {
	return &entity.AvailableActions{HasSearchBar: true, Clickables: []string{"Search"}}, nil
}

func (f *fakeEnv) Session() string         { return "abcde" }
func (f *fakeEnv) InstructionText() string { return "find a red mug" }
func (f *fakeEnv) Close() error            { return nil }

func newTestServer(t *testing.T, env *fakeEnv) *httptest.Server {
	t.Helper()
	return newTestServerWithConfig(t, env, Config{ServiceName: "test", LogLevel: "error"})
}

func newTestServerWithConfig(t *testing.T, env *fakeEnv, cfg Config) *httptest.Server {
	t.Helper()
	srv := NewServer(env, logger.NewNop(), metrics.NewCollector("test"), cfg)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeEnv{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthz_BrowserClosed(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	ts := newTestServerWithConfig(t, &fakeEnv{}, Config{
		ServiceName: "test",
		LogLevel:    "error",
		Ready:       ready.Load,
	})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ready.Store(false)
	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "browser closed", body["status"])
}

func TestReset_ReturnsObservationWithBase64Image(t *testing.T) {
	env := &fakeEnv{}
	ts := newTestServer(t, env)

	resp, err := http.Post(ts.URL+"/reset", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	decode(t, resp, &raw)
	image := raw["image"].(map[string]any)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), image["data"])
	assert.Equal(t, "find a red mug", raw["instruction"])
	assert.Equal(t, 1, env.resets)
}

func TestStep(t *testing.T) {
	env := &fakeEnv{}
	ts := newTestServer(t, env)

	resp, err := http.Post(ts.URL+"/step", "application/json", strings.NewReader(`{"action":"click[Buy Now]"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res entity.StepResult
	decode(t, resp, &res)
	assert.True(t, res.Done)
	assert.Equal(t, 1.0, res.Reward)
	assert.Equal(t, []string{"click[Buy Now]"}, env.actions)
}

func TestStep_BadBody(t *testing.T) {
	env := &fakeEnv{}
	ts := newTestServer(t, env)

	resp, err := http.Post(ts.URL+"/step", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, env.actions)
}

func TestStep_MalformedRewardIsBadGateway(t *testing.T) {
	env := &fakeEnv{stepErr: fmt.Errorf("read reward: %w", htmlparse.ErrMalformedReward)}
	ts := newTestServer(t, env)

	resp, err := http.Post(ts.URL+"/step", "application/json", strings.NewReader(`{"action":"click[x]"}`))
	require.NoError(t, err)

	var body errorResponse
	decode(t, resp, &body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, http.StatusBadGateway, body.Status)
	assert.Contains(t, body.Error, "malformed reward")
}

func TestActionsAndSession(t *testing.T) {
	ts := newTestServer(t, &fakeEnv{})

	resp, err := http.Get(ts.URL + "/actions")
	require.NoError(t, err)
	var actions entity.AvailableActions
	decode(t, resp, &actions)
	assert.True(t, actions.HasSearchBar)
	assert.Equal(t, []string{"Search"}, actions.Clickables)

	resp, err = http.Get(ts.URL + "/session")
	require.NoError(t, err)
	var sess sessionResponse
	decode(t, resp, &sess)
	assert.Equal(t, "abcde", sess.Session)
	assert.Equal(t, "find a red mug", sess.Instruction)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeEnv{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestMetricsEndpoint_UnmatchedPathsShareOneLabel(t *testing.T) {
	ts := newTestServer(t, &fakeEnv{})

	for _, p := range []string{"/nope", "/wp-admin/setup.php", "/nope/again"} {
		resp, err := http.Get(ts.URL + p)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",path="unmatched",status="404"} 3`)
	assert.NotContains(t, string(body), "/nope")
	assert.NotContains(t, string(body), "wp-admin")
}
