package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential (Gemini API key, board credentials)
// comes from.
type Source struct {
	// Name labels the credential in error messages.
	Name string
	// Value is an inline value from configuration or flags.
	Value string
	// File points to a file holding the value. A configured File wins
	// over Value.
	File string
}

// Load resolves the credential, preferring File over Value, and trims the
// result. Errors when neither yields a non-empty value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
