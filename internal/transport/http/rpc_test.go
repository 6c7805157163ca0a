package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/driver"
	"github.com/xiaot623/autopilot/internal/navcache"
	"github.com/xiaot623/autopilot/internal/playback"
	"github.com/xiaot623/autopilot/internal/policy"
	"github.com/xiaot623/autopilot/internal/recorder"
	"github.com/xiaot623/autopilot/internal/service"
	"github.com/xiaot623/autopilot/internal/sim"
	"github.com/xiaot623/autopilot/internal/store"
	"github.com/xiaot623/autopilot/internal/tools"
)

type rpcTestResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

func newTestServer(t *testing.T) (*echo.Echo, *sim.Widgets) {
	t.Helper()

	actor := sim.NewActor()
	widgets := sim.NewWidgets()
	cache := navcache.New(navcache.DefaultCapacity, navcache.DefaultTolerance)
	querier := sim.NewGridQuerier()
	querier.Block(domain.Vector{X: 9000, Y: -100, Z: -100}, domain.Vector{X: 9100, Y: 100, Z: 100})
	ctx := &driver.Context{
		Actuator: actor,
		Widgets:  widgets,
		Nav:      cache,
		Finder:   querier,
	}
	drv := driver.New(ctx)

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := service.New(service.Options{
		Driver:   drv,
		Context:  ctx,
		Cache:    cache,
		Recorder: recorder.New(actor, recorder.DefaultOptions()),
		Player:   playback.New(drv),
		Store:    st,
		Stepper:  actor,
	})

	registry := tools.NewRegistry()
	svc.RegisterTools(registry)

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	return NewServer(registry, engine), widgets
}

func postRPC(t *testing.T, e *echo.Echo, body string) (*httptest.ResponseRecorder, rpcTestResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp rpcTestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func toolResultOf(t *testing.T, resp rpcTestResponse) toolResult {
	t.Helper()
	require.NotNil(t, resp.Result, "expected a result, got error %+v", resp.Error)
	var res toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	return res
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestToolsList(t *testing.T) {
	e, _ := newTestServer(t)
	rec, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, resp.Error)
	assert.Equal(t, "1", string(resp.ID))

	var result struct {
		Tools []tools.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.NotEmpty(t, result.Tools)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, "tool %s has no description", tool.Name)
	}
	for _, want := range []string{
		"driver/move_to_location", "driver/rotate_to", "driver/press_input",
		"driver/click_widget", "driver/read_widget", "driver/wait_for_widget",
		"driver/stop_command", "driver/query_status", "driver/set_enabled",
		"cache/stats", "cache/clear",
		"recording/start", "recording/stop", "recording/save", "recording/list",
		"playback/play", "playback/pause", "playback/resume", "playback/stop",
		"playback/seek", "playback/set_speed", "playback/status",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestToolCallSuccess(t *testing.T) {
	e, widgets := newTestServer(t)
	widgets.Add(domain.WidgetInfo{Name: "ScoreLabel", Visible: true, Enabled: true, Text: "Score: 7"})

	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":42,"method":"tools/call","params":{"name":"driver/read_widget","arguments":{"widget_name":"ScoreLabel"}}}`)

	require.Nil(t, resp.Error)
	assert.Equal(t, "42", string(resp.ID))
	res := toolResultOf(t, resp)
	assert.False(t, res.IsError)
	assert.Equal(t, "Score: 7", res.Content[0].Text)
}

func TestToolCallStartsAsyncCommand(t *testing.T) {
	e, _ := newTestServer(t)

	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"driver/move_to_location","arguments":{"x":500,"y":0,"z":0}}}`)

	require.Nil(t, resp.Error)
	res := toolResultOf(t, resp)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "started")
}

func TestToolCallFailureIsToolResultNotRPCError(t *testing.T) {
	e, _ := newTestServer(t)

	// Moving into a blocked region fails the command, not the protocol.
	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"driver/move_to_location","arguments":{"x":9050,"y":0,"z":0}}}`)

	require.Nil(t, resp.Error)
	res := toolResultOf(t, resp)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "not reachable")
}

func TestParseError(t *testing.T) {
	e, _ := newTestServer(t)
	_, resp := postRPC(t, e, `{this is not json`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeParseError, resp.Error.Code)
	assert.Equal(t, "null", string(resp.ID))
}

func TestInvalidRequestVersion(t *testing.T) {
	e, _ := newTestServer(t)
	_, resp := postRPC(t, e, `{"jsonrpc":"1.0","id":5,"method":"tools/list"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
	assert.Equal(t, "5", string(resp.ID))
}

func TestMethodNotFound(t *testing.T) {
	e, _ := newTestServer(t)
	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":6,"method":"resources/list"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestUnknownToolIsMethodNotFound(t *testing.T) {
	e, _ := newTestServer(t)
	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"driver/self_destruct"}}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "driver/self_destruct")
}

func TestMissingParamsIsInvalidParams(t *testing.T) {
	e, _ := newTestServer(t)
	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":8,"method":"tools/call"}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	e, _ := newTestServer(t)

	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":"abc-123","method":"tools/list"}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, `"abc-123"`, string(resp.ID))

	_, resp = postRPC(t, e, `{"jsonrpc":"2.0","id":99,"method":"tools/list"}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "99", string(resp.ID))
}

func TestPolicyBlocksDeniedInput(t *testing.T) {
	e, _ := newTestServer(t)

	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"driver/press_input","arguments":{"action_name":"Quit"}}}`)

	require.Nil(t, resp.Error)
	res := toolResultOf(t, resp)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "blocked by policy")

	// An ordinary input passes the same gate.
	_, resp = postRPC(t, e, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"driver/press_input","arguments":{"action_name":"Jump"}}}`)
	require.Nil(t, resp.Error)
	res = toolResultOf(t, resp)
	assert.False(t, res.IsError)
}

func TestQueryStatusReturnsJSON(t *testing.T) {
	e, _ := newTestServer(t)

	_, resp := postRPC(t, e, `{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"driver/query_status"}}`)

	require.Nil(t, resp.Error)
	res := toolResultOf(t, resp)
	assert.False(t, res.IsError)

	var status service.Status
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &status))
	assert.True(t, status.Enabled)
	assert.Equal(t, domain.RecordingStateIdle, status.RecordingState)
	assert.Equal(t, domain.PlaybackStateIdle, status.PlaybackState)
}
