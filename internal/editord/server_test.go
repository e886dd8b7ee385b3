package editord

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/opencode-ai/netforge/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t  *testing.T
	ts *httptest.Server
}

func newAPI(t *testing.T, opts ...ServerOption) (*apiClient, *Server) {
	t.Helper()
	srv := NewServer(zerolog.Nop(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &apiClient{t: t, ts: ts}, srv
}

func (c *apiClient) do(method, path, contentType string, body io.Reader) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.ts.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.ts.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *apiClient) json(method, path string, in, out any) int {
	c.t.Helper()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}
	resp, data := c.do(method, path, "application/json", body)
	if out != nil && len(data) > 0 {
		require.NoError(c.t, json.Unmarshal(data, out), string(data))
	}
	return resp.StatusCode
}

func (c *apiClient) text(method, path, text string) (int, []byte) {
	c.t.Helper()
	resp, data := c.do(method, path, "text/plain", strings.NewReader(text))
	return resp.StatusCode, data
}

type stateBody struct {
	State struct {
		Nodes     []models.Node     `json:"nodes"`
		Functions []models.Function `json:"functions"`
		Bindings  []models.Binding  `json:"bindings"`
	} `json:"state"`
	Violations []models.Violation `json:"violations"`
	Variables  map[string]string  `json:"variables"`
}

func TestHealth(t *testing.T) {
	api, _ := newAPI(t, WithVersion("1.2.3"))
	var body map[string]any
	require.Equal(t, http.StatusOK, api.json(http.MethodGet, "/healthz", nil, &body))
	require.Equal(t, true, body["ok"])
	require.Equal(t, "1.2.3", body["version"])
}

func TestStateStartsWithUnnamedFrontman(t *testing.T) {
	api, _ := newAPI(t)
	var body stateBody
	require.Equal(t, http.StatusOK, api.json(http.MethodGet, "/api/state", nil, &body))
	require.Len(t, body.State.Nodes, 1)
	require.Len(t, body.Violations, 1)
	require.Equal(t, models.ViolationMissingFrontman, body.Violations[0].Kind)
}

func TestEditAndExportNetwork(t *testing.T) {
	api, srv := newAPI(t)

	var binding models.Binding
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/variables",
		map[string]string{"name": "city", "value": "Seattle"}, &binding))
	require.NotEmpty(t, binding.ID)

	frontID := srv.Snapshot().Nodes[0].ID
	var front models.Node
	require.Equal(t, http.StatusOK, api.json(http.MethodPatch, "/api/nodes/"+frontID,
		map[string]any{"name": "frontman", "instructions": "I live in Seattle"}, &front))
	require.Equal(t, "frontman", front.Name)

	var helper models.Node
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/nodes",
		map[string]any{"name": "helper"}, &helper))
	require.Equal(t, http.StatusOK, api.json(http.MethodPatch, "/api/nodes/"+frontID,
		map[string]any{"tools": []string{"helper", "ghost"}}, &front))
	require.Equal(t, []string{"helper"}, front.Tools)

	status, data := api.text(http.MethodGet, "/api/network/export?format=json", "")
	require.Equal(t, http.StatusOK, status, string(data))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	tools := doc["tools"].([]any)
	require.Equal(t, "I live in ${city}", tools[0].(map[string]any)["instructions"])

	status, data = api.text(http.MethodGet, "/api/network/graph?hierarchical=true", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(data), "rankdir=TB;")
	require.Contains(t, string(data), `"frontman" -> "helper";`)

	var events []models.Event
	require.Equal(t, http.StatusOK, api.json(http.MethodGet, "/api/events", nil, &events))
	require.NotEmpty(t, events)
	require.Equal(t, models.EventTypeBindingAdded, events[0].Type)
}

func TestExportRefusesInvalidNetwork(t *testing.T) {
	api, _ := newAPI(t)
	var body errorResponse
	require.Equal(t, http.StatusUnprocessableEntity,
		api.json(http.MethodGet, "/api/network/export", nil, &body))
	require.NotEmpty(t, body.Violations)
}

func TestImportNetwork(t *testing.T) {
	api, srv := newAPI(t)
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/variables",
		map[string]string{"name": "city", "value": "Seattle"}, nil))

	status, data := api.text(http.MethodPost, "/api/network/import?source=net.hocon", `
tools = [
  { name = "frontman", instructions = "Weather for ${city}", tools = ["forecast"] },
  { name = "forecast", class = "weather.Forecast" }
]
`)
	require.Equal(t, http.StatusOK, status, string(data))

	snap := srv.Snapshot()
	require.Len(t, snap.Nodes, 2)
	require.Equal(t, "Weather for Seattle", snap.Nodes[0].Instructions)
	require.Len(t, snap.Bindings, 1)
}

func TestImportParseErrorKeepsState(t *testing.T) {
	api, srv := newAPI(t)
	before := srv.Snapshot()

	var body errorResponse
	resp, data := api.do(http.MethodPost, "/api/network/import?source=bad.hocon", "text/plain", strings.NewReader("tools = [ {"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.Unmarshal(data, &body))
	require.Contains(t, body.Error, "bad.hocon")

	require.Equal(t, before.Nodes[0].ID, srv.Snapshot().Nodes[0].ID)
}

func TestNameCollision(t *testing.T) {
	api, srv := newAPI(t)
	frontID := srv.Snapshot().Nodes[0].ID
	require.Equal(t, http.StatusOK, api.json(http.MethodPatch, "/api/nodes/"+frontID,
		map[string]any{"name": "alpha"}, nil))

	var body errorResponse
	require.Equal(t, http.StatusConflict, api.json(http.MethodPost, "/api/nodes",
		map[string]any{"name": "alpha"}, &body))
	require.Len(t, srv.Snapshot().Nodes, 1, "failed add must not leave a node behind")

	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/functions",
		map[string]any{"name": "lookup"}, nil))
	require.Equal(t, http.StatusConflict, api.json(http.MethodPost, "/api/functions",
		map[string]any{"name": "lookup"}, nil))
}

func TestFrontmanCannotBeRemoved(t *testing.T) {
	api, srv := newAPI(t)
	frontID := srv.Snapshot().Nodes[0].ID
	require.Equal(t, http.StatusConflict, api.json(http.MethodDelete, "/api/nodes/"+frontID, nil, nil))
	require.Equal(t, http.StatusNotFound, api.json(http.MethodDelete, "/api/nodes/missing", nil, nil))
}

func TestVariablesLifecycle(t *testing.T) {
	api, _ := newAPI(t)

	var added map[string]int
	status, data := api.text(http.MethodPost, "/api/variables/import", `x = "1"
y = "2"`)
	require.Equal(t, http.StatusOK, status, string(data))
	require.NoError(t, json.Unmarshal(data, &added))
	require.Equal(t, 2, added["added"])

	var b models.Binding
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/variables",
		map[string]string{"name": "x", "value": "9"}, &b))

	var body stateBody
	api.json(http.MethodGet, "/api/state", nil, &body)
	require.Equal(t, map[string]string{"x": "9", "y": "2"}, body.Variables)

	require.Equal(t, http.StatusOK, api.json(http.MethodPut, "/api/variables/"+b.ID,
		map[string]string{"name": "z", "value": "3"}, nil))
	require.Equal(t, http.StatusNoContent, api.json(http.MethodDelete, "/api/variables/"+b.ID, nil, nil))
	require.Equal(t, http.StatusNotFound, api.json(http.MethodPut, "/api/variables/"+b.ID,
		map[string]string{"name": "z"}, nil))

	status, data = api.text(http.MethodGet, "/api/variables/export", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "x = \"1\"\ny = \"2\"\n", string(data))
}

func TestFunctionsLifecycle(t *testing.T) {
	api, _ := newAPI(t)

	var fn models.Function
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/functions",
		map[string]any{"name": "lookup", "module": "agents", "class": "Lookup"}, &fn))
	require.Equal(t, "agents.Lookup", fn.ClassPath())

	var param models.Parameter
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/functions/"+fn.ID+"/parameters",
		map[string]any{"name": "query", "type": "string"}, &param))
	require.Equal(t, "query", param.Name)

	require.Equal(t, http.StatusBadRequest, api.json(http.MethodPatch,
		"/api/functions/"+fn.ID+"/parameters/"+param.ID, map[string]any{"type": "blob"}, nil))

	require.Equal(t, http.StatusOK, api.json(http.MethodPatch, "/api/functions/"+fn.ID,
		map[string]any{"required": []string{"query"}, "description": "find"}, &fn))
	require.Equal(t, []string{"query"}, fn.Required)

	status, data := api.text(http.MethodGet, "/api/functions/export?format=json", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(data), `"class": "agents.Lookup"`)

	require.Equal(t, http.StatusNoContent, api.json(http.MethodDelete,
		"/api/functions/"+fn.ID+"/parameters/"+param.ID, nil, nil))
	require.Equal(t, http.StatusNoContent, api.json(http.MethodDelete, "/api/functions/"+fn.ID, nil, nil))
}

func TestPreview(t *testing.T) {
	api, _ := newAPI(t)
	api.json(http.MethodPost, "/api/variables", map[string]string{"name": "city", "value": "Seattle"}, nil)

	var out map[string]string
	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/api/preview",
		map[string]string{"text": "Hello ${city} and $other"}, &out))
	require.Equal(t, "Hello Seattle and $other", out["result"])

	require.Equal(t, http.StatusOK, api.json(http.MethodPost, "/api/preview",
		map[string]string{"text": "Seattle!", "direction": "collapse"}, &out))
	require.Equal(t, "${city}!", out["result"])

	require.Equal(t, http.StatusBadRequest, api.json(http.MethodPost, "/api/preview",
		map[string]string{"text": "x", "direction": "sideways"}, nil))
}

func TestBodyLimit(t *testing.T) {
	api, _ := newAPI(t, WithMaxBodyBytes(16))
	status, _ := api.text(http.MethodPost, "/api/network/import", strings.Repeat("a", 64))
	require.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestNewNetworkAndSettings(t *testing.T) {
	api, srv := newAPI(t)
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/network",
		map[string]any{"model_name": "o1", "temperature": 0.2}, nil))
	require.Equal(t, "o1", srv.Snapshot().LLM.ModelName)

	require.Equal(t, http.StatusOK, api.json(http.MethodPatch, "/api/network",
		map[string]any{"hierarchical": true}, nil))
	require.True(t, srv.Snapshot().Hierarchical)

	require.Equal(t, http.StatusBadRequest, api.json(http.MethodPatch, "/api/network",
		map[string]any{"temperature": 3}, nil))
}

func TestStarters(t *testing.T) {
	api, srv := newAPI(t)

	var list []map[string]any
	require.Equal(t, http.StatusOK, api.json(http.MethodGet, "/api/starters", nil, &list))
	require.NotEmpty(t, list)

	require.Equal(t, http.StatusBadRequest, api.json(http.MethodPost, "/api/network/starter",
		map[string]any{"name": "customer-support"}, nil))
	require.Equal(t, http.StatusNotFound, api.json(http.MethodPost, "/api/network/starter",
		map[string]any{"name": "missing"}, nil))

	var body stateBody
	require.Equal(t, http.StatusCreated, api.json(http.MethodPost, "/api/network/starter",
		map[string]any{"name": "customer-support", "values": map[string]string{"company": "Acme"}}, &body))
	require.Len(t, body.State.Nodes, 3)
	require.Empty(t, body.Violations)
	require.Equal(t, "Acme", body.Variables["company"])
	require.Equal(t, "triage", srv.Snapshot().Nodes[0].Name)

	status, data := api.text(http.MethodGet, "/api/network/export", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(data), "Greet customers of ${company}")
}

func TestImportKeepsConcurrentEdits(t *testing.T) {
	api, srv := newAPI(t)
	doc := `tools = [ { name = "frontman" } ]`

	const edits = 20
	var wg sync.WaitGroup
	statuses := make(chan int, 2*edits)
	for i := 0; i < edits; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			statuses <- api.json(http.MethodPost, "/api/variables",
				map[string]string{"name": "v" + strings.Repeat("x", i+1), "value": "1"}, nil)
		}(i)
		go func() {
			defer wg.Done()
			status, _ := api.text(http.MethodPost, "/api/network/import", doc)
			statuses <- status
		}()
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, status)
	}
	require.Len(t, srv.Snapshot().Bindings, edits)
}
