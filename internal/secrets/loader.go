// Package secrets resolves per-source API tokens from configuration, files or
// the environment.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// TokenSource describes where a source's API token comes from. File takes
// precedence over Value; both lose to a JOBSIFT_<SOURCE>_TOKEN environment
// variable.
type TokenSource struct {
	Value string `mapstructure:"token"`
	File  string `mapstructure:"token-file"`
}

// Resolve returns the trimmed token for the named source, or "" when nothing
// is configured. Public job boards work unauthenticated, so a missing token is
// not an error; an unreadable or empty token file is.
func Resolve(source string, ts TokenSource) (string, error) {
	if env := strings.TrimSpace(os.Getenv(envKey(source))); env != "" {
		return env, nil
	}

	file := strings.TrimSpace(ts.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s token from file %q: %w", source, file, err)
		}
		token := strings.TrimSpace(string(data))
		if token == "" {
			return "", fmt.Errorf("%s token file %q is empty", source, file)
		}
		return token, nil
	}

	return strings.TrimSpace(ts.Value), nil
}

func envKey(source string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, source)
	return "JOBSIFT_" + sanitized + "_TOKEN"
}
