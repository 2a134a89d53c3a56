package ciutil

import "log/slog"

// TestDatabaseURL returns the PostgreSQL URL integration tests should use,
// or "" when none is configured and a throwaway container is needed.
func TestDatabaseURL(logger *slog.Logger) string {
	url := GetEnvWithFallbacks([]string{EnvTestDatabaseURL, EnvDatabaseURL}, "", logger)
	if url == "" && IsCI() && logger != nil {
		logger.Warn("no test database configured in CI, a container will be started",
			slog.String("env", EnvTestDatabaseURL))
	}
	return url
}
