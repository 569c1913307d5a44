// Package utils provides small helpers shared by the relay and its clients:
// environment lookups and masking of secrets for logs and debug output.
package utils

import (
	"os"
	"strconv"
	"strings"
)

// GetEnvWithDefault retrieves an environment variable or returns a default value if not set.
//
// Parameters:
//   - name: The name of the environment variable
//   - defaultValue: The default value to return if the environment variable is not set
//
// Returns the value of the environment variable, or the default value if not set.
func GetEnvWithDefault(name, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt reads an integer environment variable. Unset or malformed values
// yield defaultValue.
func GetEnvInt(name string, defaultValue int) int {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// SplitList splits a comma-separated value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// KeyPrefix returns the first n characters of a secret followed by "...".
// An empty secret returns nil so that JSON renders it as null.
func KeyPrefix(secret string, n int) *string {
	if secret == "" {
		return nil
	}
	if len(secret) > n {
		secret = secret[:n]
	}
	prefix := secret + "..."
	return &prefix
}

// MaskToken masks a token for display by showing only the first and last few characters.
// This is used when logging credentials so that their shape can be checked
// without revealing them.
func MaskToken(token string) string {
	if len(token) < 10 {
		return "***" // Too short to safely show anything
	}
	return token[:4] + "..." + token[len(token)-4:]
}
