package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/awantoch/geminiproxy/constants"
)

// secretsManagerAPI is the slice of the Secrets Manager client we use.
type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsProvider implements SecretsProvider using AWS Secrets Manager
type AWSSecretsProvider struct {
	client secretsManagerAPI
	prefix string
}

var _ SecretsProvider = (*AWSSecretsProvider)(nil)

// NewAWSSecretsProvider creates a new AWS Secrets Manager provider
func NewAWSSecretsProvider(ctx context.Context, region, prefix string) (*AWSSecretsProvider, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required for AWS Secrets Manager")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newAWSSecretsProvider(secretsmanager.NewFromConfig(cfg), prefix), nil
}

func newAWSSecretsProvider(client secretsManagerAPI, prefix string) *AWSSecretsProvider {
	return &AWSSecretsProvider{client: client, prefix: prefix}
}

// GetSecret retrieves a secret from AWS Secrets Manager, trying the prefixed
// name first and then the bare key when the prefixed one does not exist.
func (a *AWSSecretsProvider) GetSecret(ctx context.Context, key string) (string, error) {
	if a.prefix != "" {
		value, err := a.get(ctx, a.prefix+key)
		if err == nil || !errors.Is(err, ErrSecretNotFound) {
			return value, err
		}
	}
	return a.get(ctx, key)
}

func (a *AWSSecretsProvider) get(ctx context.Context, name string) (string, error) {
	result, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var rnf *types.ResourceNotFoundException
		if errors.As(err, &rnf) {
			return "", notFound(a.Type(), name)
		}
		return "", &SecretError{Provider: a.Type(), Key: name, Cause: err}
	}
	if result.SecretString == nil || *result.SecretString == "" {
		return "", notFound(a.Type(), name)
	}
	return *result.SecretString, nil
}

// Close cleans up resources (no-op for AWS provider)
func (a *AWSSecretsProvider) Close() error {
	return nil
}

func (a *AWSSecretsProvider) Type() string {
	return constants.SecretsDriverAWS
}
