package secrets

import (
	"context"
	"errors"
)

// SecretsProvider resolves named secrets from a backing store.
type SecretsProvider interface {
	GetSecret(ctx context.Context, key string) (string, error)
	Close() error
	// Type identifies the backend in logs.
	Type() string
}

// ErrSecretNotFound is returned (wrapped) when a backend has no value for a key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretError carries the provider and key alongside the underlying cause.
// The secret value itself is never part of the error.
type SecretError struct {
	Provider string
	Key      string
	Cause    error
}

func (e *SecretError) Error() string {
	return e.Provider + ": secret " + e.Key + ": " + e.Cause.Error()
}

func (e *SecretError) Unwrap() error {
	return e.Cause
}

func notFound(provider, key string) error {
	return &SecretError{Provider: provider, Key: key, Cause: ErrSecretNotFound}
}
