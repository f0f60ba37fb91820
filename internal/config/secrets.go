package config

import (
	"os"
	"path/filepath"
	"strings"
)

// SecretResolver attempts to produce a secret value. Resolvers are evaluated
// in order until one reports ok; resolution never panics or errors.
type SecretResolver func() (value string, ok bool)

// ResolveSecret evaluates resolvers in order and returns the first value
// found. Returns ("", false) when every resolver comes up empty.
func ResolveSecret(resolvers ...SecretResolver) (string, bool) {
	for _, resolve := range resolvers {
		if resolve == nil {
			continue
		}
		if v, ok := resolve(); ok {
			return v, true
		}
	}
	return "", false
}

// EnvResolver resolves a secret from an environment variable.
func EnvResolver(name string) SecretResolver {
	return func() (string, bool) {
		v := os.Getenv(name)
		return v, v != ""
	}
}

// FileResolver resolves a secret from <dataDir>/secrets/<name>, trimming
// trailing whitespace. Missing or unreadable files report not found.
func FileResolver(dataDir, name string) SecretResolver {
	return func() (string, bool) {
		raw, err := os.ReadFile(filepath.Join(dataDir, "secrets", name))
		if err != nil {
			return "", false
		}
		v := strings.TrimSpace(string(raw))
		return v, v != ""
	}
}
