package firebase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/config"
)

func testConfig() config.Firebase {
	return config.Firebase{
		ProjectID: "plug-demo",
		Region:    "europe-west1",
	}
}

func TestFunctionURL(t *testing.T) {
	c := NewClient(testConfig())
	assert.Equal(t, "https://europe-west1-plug-demo.cloudfunctions.net/chat", c.FunctionURL("chat"))
	assert.False(t, c.EmulatorConnected())

	require.NoError(t, c.ConnectEmulator("localhost", 5001))
	assert.True(t, c.EmulatorConnected())
	assert.Equal(t, "http://localhost:5001/plug-demo/europe-west1/chat", c.FunctionURL("chat"))
}

func TestFunctionURL_DefaultRegion(t *testing.T) {
	c := NewClient(config.Firebase{ProjectID: "p"})
	assert.Equal(t, "https://us-central1-p.cloudfunctions.net/f", c.FunctionURL("f"))
}

func TestConnectEmulator_Twice(t *testing.T) {
	c := NewClient(testConfig())
	require.NoError(t, c.ConnectEmulator("localhost", 5001))

	err := c.ConnectEmulator("localhost", 5002)
	assert.ErrorIs(t, err, ErrEmulatorAlreadyConnected)
	assert.Equal(t, "http://localhost:5001/plug-demo/europe-west1/chat", c.FunctionURL("chat"), "first address is kept")
}

func TestConnectEmulator_InvalidAddress(t *testing.T) {
	c := NewClient(testConfig())
	assert.Error(t, c.ConnectEmulator("", 5001))
	assert.Error(t, c.ConnectEmulator("localhost", 0))
	assert.False(t, c.EmulatorConnected())
}

func TestCall_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"greeting":"hi there"}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))

	var out struct {
		Greeting string `json:"greeting"`
	}
	err := c.Call(context.Background(), "echo", map[string]string{"name": "Ada"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "hi there", out.Greeting)
	assert.Equal(t, map[string]any{"data": map[string]any{"name": "Ada"}}, gotBody)
}

func TestCall_FunctionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"status":"INVALID_ARGUMENT","message":"message is required"}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))
	err := c.Call(context.Background(), "chat", nil, nil)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "chat", callErr.Function)
	assert.Equal(t, http.StatusBadRequest, callErr.HTTPStatus)
	assert.Equal(t, "INVALID_ARGUMENT", callErr.Status)
	assert.Equal(t, "message is required", callErr.Message)
}

func TestCall_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(), WithBaseURL(srv.URL))
	err := c.Call(context.Background(), "chat", nil, nil)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "UNKNOWN", callErr.Status)
	assert.Equal(t, http.StatusBadGateway, callErr.HTTPStatus)
}

func TestCall_NotConfigured(t *testing.T) {
	c := NewClient(config.Firebase{})
	assert.ErrorIs(t, c.Call(context.Background(), "chat", nil, nil), ErrNotConfigured)
}

func TestFunctionsResponder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Data struct {
				Message string `json:"message"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]string{"reply": "you said " + req.Data.Message},
		})
	}))
	defer srv.Close()

	r := NewFunctionsResponder(NewClient(testConfig(), WithBaseURL(srv.URL)), "chat")
	reply, err := r.Reply(context.Background(), chat.Message{Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "you said Hello", reply)
}

func TestFunctionsResponder_Error(t *testing.T) {
	r := NewFunctionsResponder(NewClient(config.Firebase{}), "chat")
	_, err := r.Reply(context.Background(), chat.Message{Text: "Hello"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
