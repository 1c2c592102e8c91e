package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads a secret value using the *_FILE convention.
// If envName+"_FILE" is set, the secret is read from that file path,
// otherwise the value of envName is used. Returns empty string if neither is set.
func ResolveSecret(envName string) (string, error) {
	fileEnv := envName + "_FILE"
	if filePath := os.Getenv(fileEnv); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from %s=%s: %w", fileEnv, filePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	}

	return os.Getenv(envName), nil
}

// ResolveSecretOr is ResolveSecret with a fallback for an unset value.
func ResolveSecretOr(envName, fallback string) (string, error) {
	v, err := ResolveSecret(envName)
	if err != nil {
		return "", err
	}
	if v == "" {
		return fallback, nil
	}
	return v, nil
}
