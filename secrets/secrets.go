package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
)

// awsCacheTTL bounds how long a rotated key can keep being served.
const awsCacheTTL = 5 * time.Minute

// NewSecretsProvider creates a secrets provider from configuration
func NewSecretsProvider(ctx context.Context, cfg *config.SecretsConfig) (SecretsProvider, error) {
	if cfg == nil {
		return NewEnvSecretsProvider(""), nil
	}

	switch strings.ToLower(cfg.Driver) {
	case "", constants.SecretsDriverEnv:
		return NewEnvSecretsProvider(cfg.Prefix), nil
	case constants.SecretsDriverAWS, constants.SecretsDriverAWSv2:
		if cfg.Region == "" {
			return nil, fmt.Errorf("region is required for AWS Secrets Manager")
		}
		p, err := NewAWSSecretsProvider(ctx, cfg.Region, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return NewCachedProvider(p, awsCacheTTL), nil
	default:
		return nil, fmt.Errorf("unsupported secrets driver: %s", cfg.Driver)
	}
}
