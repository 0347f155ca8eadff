package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/config"
	"github.com/nfrund/plug/internal/firebase"
	"github.com/nfrund/plug/internal/pubsub"
	"github.com/nfrund/plug/internal/script"
	"github.com/nfrund/plug/internal/websocket"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	values := map[string]string{"APP_ENV": "test"}
	for k, v := range env {
		values[k] = v
	}
	cfg, err := config.FromEnv(func(key string) string { return values[key] })
	require.NoError(t, err)
	return cfg
}

func shutdown(t *testing.T, i *do.RootScope) {
	t.Helper()
	report := i.ShutdownWithContext(context.Background())
	if report != nil {
		assert.True(t, report.Succeed, report.Error())
	}
}

func TestNewInjector_CoreServices(t *testing.T) {
	i := NewInjector(testConfig(t, nil))
	defer shutdown(t, i)

	pub := do.MustInvoke[pubsub.Publisher](i)
	sub := do.MustInvoke[pubsub.Subscriber](i)
	bus := do.MustInvoke[*pubsub.WatermillBridge](i)
	assert.Same(t, bus, pub)
	assert.Same(t, bus, sub)

	assert.NotNil(t, do.MustInvoke[*websocket.Bridge](i))
	assert.NotNil(t, do.MustInvoke[*firebase.Client](i))

	assets := do.MustInvoke[afero.Fs](i)
	ok, err := afero.Exists(assets, "css/plug.css")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewInjector_CannedResponder(t *testing.T) {
	i := NewInjector(testConfig(t, map[string]string{
		"PLUG_REPLY_TEXT":  "custom reply",
		"PLUG_REPLY_DELAY": "10ms",
	}))
	defer shutdown(t, i)

	responder := do.MustInvoke[chat.Responder](i)
	canned, ok := responder.(*chat.CannedResponder)
	require.True(t, ok)
	assert.Equal(t, "custom reply", canned.Text)
}

func TestNewInjector_FunctionsResponder(t *testing.T) {
	i := NewInjector(testConfig(t, map[string]string{
		"PLUG_RESPONDER":           "functions",
		"VITE_FIREBASE_PROJECT_ID": "plug-test",
	}))
	defer shutdown(t, i)

	_, ok := do.MustInvoke[chat.Responder](i).(*firebase.FunctionsResponder)
	assert.True(t, ok)
}

func TestNewInjector_ScriptResponder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply.tengo")
	require.NoError(t, os.WriteFile(path, []byte(`reply := "scripted"`), 0o644))

	i := NewInjector(testConfig(t, map[string]string{
		"PLUG_RESPONDER":    "script",
		"PLUG_REPLY_SCRIPT": path,
	}))
	defer shutdown(t, i)

	responder, ok := do.MustInvoke[chat.Responder](i).(*script.Responder)
	require.True(t, ok)
	reply, err := responder.Reply(context.Background(), chat.Message{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "scripted", reply)
}

func TestNewInjector_ScriptResponderMissingFile(t *testing.T) {
	i := NewInjector(testConfig(t, map[string]string{
		"PLUG_RESPONDER":    "script",
		"PLUG_REPLY_SCRIPT": filepath.Join(t.TempDir(), "missing.tengo"),
	}))
	defer shutdown(t, i)

	_, err := do.Invoke[chat.Responder](i)
	assert.Error(t, err)
}

func TestDevelopmentConnectsEmulator(t *testing.T) {
	cfg := testConfig(t, nil)
	cfg.Env = config.EnvDevelopment
	cfg.Firebase.ProjectID = "plug-dev"

	i := NewInjector(cfg)
	defer shutdown(t, i)

	client := do.MustInvoke[*firebase.Client](i)
	assert.True(t, client.EmulatorConnected())
	assert.Equal(t, "http://localhost:5001/plug-dev/us-central1/chat", client.FunctionURL("chat"))
}

func TestStartServices(t *testing.T) {
	i := NewInjector(testConfig(t, nil))
	defer shutdown(t, i)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, StartServices(ctx, i))
	select {
	case <-do.MustInvoke[*websocket.Bridge](i).Started():
	default:
		t.Fatal("bridge should be running")
	}
}

func TestNewModules(t *testing.T) {
	names := map[string]bool{}
	for _, m := range NewModules() {
		names[m.Name()] = true
	}
	assert.Equal(t, map[string]bool{"chat": true, "landing": true, "dev": true}, names)
}
