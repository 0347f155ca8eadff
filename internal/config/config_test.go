package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"APP_ENV": "development",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, DefaultServerAddr, cfg.ServerAddr)
	assert.Equal(t, HomeChat, cfg.HomePage)
	assert.Equal(t, ResponderCanned, cfg.ResponderMode)
	assert.Equal(t, 2*time.Second, cfg.ReplyDelay)
	assert.Equal(t, DefaultReplyText, cfg.ReplyText)
	assert.Equal(t, "us-central1", cfg.Firebase.Region)
	assert.Equal(t, "localhost", cfg.Firebase.EmulatorHost)
	assert.Equal(t, 5001, cfg.Firebase.EmulatorPort)
	assert.NotEmpty(t, cfg.SessionSecret, "development gets a fallback session secret")
	assert.False(t, cfg.LiveReload, "live reload needs disk assets")
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"APP_ENV":                  "development",
		"APP_STATIC":               "disk",
		"PLUG_HOME":                "Landing",
		"PLUG_REPLY_DELAY":         "250ms",
		"PLUG_RESPONDER":           "functions",
		"VITE_FIREBASE_PROJECT_ID": "plug-dev",
		"FUNCTIONS_EMULATOR_PORT":  "5002",
	}))
	require.NoError(t, err)

	assert.Equal(t, HomeLanding, cfg.HomePage)
	assert.Equal(t, 250*time.Millisecond, cfg.ReplyDelay)
	assert.Equal(t, "plug-dev", cfg.Firebase.ProjectID)
	assert.Equal(t, 5002, cfg.Firebase.EmulatorPort)
	assert.True(t, cfg.LiveReload)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{}},
		{"unknown home", map[string]string{"APP_ENV": "test", "PLUG_HOME": "shop"}},
		{"bad duration", map[string]string{"APP_ENV": "test", "PLUG_REPLY_DELAY": "soon"}},
		{"bad port", map[string]string{"APP_ENV": "test", "FUNCTIONS_EMULATOR_PORT": "99999"}},
		{"functions without project", map[string]string{"APP_ENV": "test", "PLUG_RESPONDER": "functions"}},
		{"script without path", map[string]string{"APP_ENV": "test", "PLUG_RESPONDER": "script"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			assert.Error(t, err)
		})
	}
}
