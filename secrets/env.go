package secrets

import (
	"context"
	"os"

	"github.com/awantoch/geminiproxy/constants"
)

// EnvSecretsProvider implements SecretsProvider using environment variables
type EnvSecretsProvider struct {
	prefix string
}

var _ SecretsProvider = (*EnvSecretsProvider)(nil)

// NewEnvSecretsProvider creates a new environment variable secrets provider
func NewEnvSecretsProvider(prefix string) *EnvSecretsProvider {
	return &EnvSecretsProvider{
		prefix: prefix,
	}
}

// GetSecret reads the variable at call time, trying prefix+key first and
// falling back to the bare key.
func (e *EnvSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if e.prefix != "" {
		if value := os.Getenv(e.prefix + key); value != "" {
			return value, nil
		}
	}
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", notFound(e.Type(), key)
}

// Close cleans up resources (no-op for environment provider)
func (e *EnvSecretsProvider) Close() error {
	return nil
}

func (e *EnvSecretsProvider) Type() string {
	return constants.SecretsDriverEnv
}
