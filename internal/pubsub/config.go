package pubsub

import (
	"strconv"
)

// LoadTracingConfig loads tracing configuration from the given lookup,
// usually os.Getenv.
func LoadTracingConfig(getenv func(string) string) TracingConfig {
	config := DefaultTracingConfig()

	if enabledStr := getenv("PUBSUB_TRACING_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			config.Enabled = enabled
		}
	}
	if serviceName := getenv("PUBSUB_TRACING_SERVICE_NAME"); serviceName != "" {
		config.ServiceName = serviceName
	}
	if zipkinURL := getenv("PUBSUB_TRACING_ZIPKIN_URL"); zipkinURL != "" {
		config.ZipkinURL = zipkinURL
	}

	return config
}
