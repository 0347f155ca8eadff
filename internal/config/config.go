package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment names accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Home page composition roots accepted in PLUG_HOME.
const (
	HomeChat    = "chat"
	HomeLanding = "landing"
)

// Reply backends accepted in PLUG_RESPONDER.
const (
	ResponderCanned    = "canned"
	ResponderFunctions = "functions"
	ResponderScript    = "script"
)

// Static asset sources accepted in APP_STATIC.
const (
	StaticEmbed = "embed"
	StaticDisk  = "disk"
)

// Firebase holds the web app settings. The variable names keep the VITE_
// prefix so the same .env file serves the original front end and this server.
type Firebase struct {
	APIKey            string
	AuthDomain        string
	ProjectID         string
	StorageBucket     string
	MessagingSenderID string
	AppID             string
	Region            string `validate:"required"`
	EmulatorHost      string `validate:"required"`
	EmulatorPort      int    `validate:"gt=0,lt=65536"`
}

// Config holds all configuration for the application.
type Config struct {
	Env           string `validate:"oneof=development production test"`
	ServerAddr    string `validate:"required"`
	SessionSecret string `validate:"required"`
	HomePage      string `validate:"oneof=chat landing"`
	StaticSource  string `validate:"oneof=embed disk"`
	StaticDir     string
	LiveReload    bool

	ResponderMode   string        `validate:"oneof=canned functions script"`
	ReplyDelay      time.Duration `validate:"gte=0"`
	ReplyText       string        `validate:"required"`
	ReplyFunction   string
	ReplyScript     string
	ConversationTTL time.Duration `validate:"gt=0"`
	TeardownGrace   time.Duration `validate:"gte=0"`

	Firebase Firebase
}

// Defaults.
const (
	DefaultServerAddr      = ":8080"
	DefaultReplyDelay      = 2 * time.Second
	DefaultReplyText       = "Thanks for your message! I'm here to help you find the perfect legal edibles from our registered vendors."
	DefaultReplyFunction   = "chat"
	DefaultConversationTTL = 30 * time.Minute
	DefaultTeardownGrace   = 10 * time.Second
	DefaultRegion          = "us-central1"
	DefaultEmulatorHost    = "localhost"
	DefaultEmulatorPort    = 5001
	devSessionSecret       = "plug-development-secret"
)

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == EnvDevelopment
}

// Validate checks field constraints and the cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch c.ResponderMode {
	case ResponderFunctions:
		if c.Firebase.ProjectID == "" {
			return errors.New("invalid configuration: VITE_FIREBASE_PROJECT_ID is required for the functions responder")
		}
		if c.ReplyFunction == "" {
			return errors.New("invalid configuration: PLUG_REPLY_FUNCTION is required for the functions responder")
		}
	case ResponderScript:
		if c.ReplyScript == "" {
			return errors.New("invalid configuration: PLUG_REPLY_SCRIPT is required for the script responder")
		}
	}
	return nil
}

// New loads configuration from a .env file (if present) and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a validated Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	var errs []error
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	duration := func(key string, def time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}
	boolean := func(key string, def bool) bool {
		raw := get(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return b
	}

	cfg := &Config{
		Env:           strings.ToLower(get("APP_ENV", EnvProduction)),
		ServerAddr:    get("SERVER_ADDR", DefaultServerAddr),
		SessionSecret: get("SESSION_SECRET", ""),
		HomePage:      strings.ToLower(get("PLUG_HOME", HomeChat)),
		StaticSource:  strings.ToLower(get("APP_STATIC", StaticEmbed)),
		StaticDir:     get("APP_STATIC_DIR", "web/static"),

		ResponderMode:   strings.ToLower(get("PLUG_RESPONDER", ResponderCanned)),
		ReplyDelay:      duration("PLUG_REPLY_DELAY", DefaultReplyDelay),
		ReplyText:       get("PLUG_REPLY_TEXT", DefaultReplyText),
		ReplyFunction:   get("PLUG_REPLY_FUNCTION", DefaultReplyFunction),
		ReplyScript:     get("PLUG_REPLY_SCRIPT", ""),
		ConversationTTL: duration("PLUG_CONVERSATION_TTL", DefaultConversationTTL),
		TeardownGrace:   duration("PLUG_TEARDOWN_GRACE", DefaultTeardownGrace),

		Firebase: Firebase{
			APIKey:            get("VITE_FIREBASE_API_KEY", ""),
			AuthDomain:        get("VITE_FIREBASE_AUTH_DOMAIN", ""),
			ProjectID:         get("VITE_FIREBASE_PROJECT_ID", ""),
			StorageBucket:     get("VITE_FIREBASE_STORAGE_BUCKET", ""),
			MessagingSenderID: get("VITE_FIREBASE_MESSAGING_SENDER_ID", ""),
			AppID:             get("VITE_FIREBASE_APP_ID", ""),
			Region:            get("FIREBASE_FUNCTIONS_REGION", DefaultRegion),
			EmulatorHost:      get("FUNCTIONS_EMULATOR_HOST", DefaultEmulatorHost),
			EmulatorPort:      integer("FUNCTIONS_EMULATOR_PORT", DefaultEmulatorPort),
		},
	}
	cfg.LiveReload = boolean("APP_LIVE_RELOAD", cfg.IsDev() && cfg.StaticSource == StaticDisk)

	if cfg.SessionSecret == "" && cfg.Env != EnvProduction {
		cfg.SessionSecret = devSessionSecret
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
