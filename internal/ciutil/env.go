package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/roadmap-api/internal/platform/postgres"
)

// Environment variable names.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	EnvDatabaseURL        = "DATABASE_URL"
	EnvRoadmapTestDBURL   = "ROADMAP_TEST_DB_URL"
	EnvRoadmapDatabaseURL = "ROADMAP_DATABASE_URL"
)

// IsCI reports whether the process runs under a known CI provider.
func IsCI() bool {
	for _, v := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the first non-empty variable in envVars, or
// defaultValue. Falling back past the first name logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", postgres.MaskURL(val))
			}
			return val
		}
	}
	return defaultValue
}

// TestDatabaseURL returns the integration test database URL, preferring
// DATABASE_URL, then ROADMAP_TEST_DB_URL, then ROADMAP_DATABASE_URL. It
// returns "" when none is set.
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks(
		[]string{EnvDatabaseURL, EnvRoadmapTestDBURL, EnvRoadmapDatabaseURL},
		"",
		logger,
	)
}
