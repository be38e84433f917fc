package auth

import (
	"os"

	"unsplashfetch/pkg/config"
)

// EnvironmentStore reads the key from UNSPLASH_ACCESS_KEY. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based key store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Name() string { return "environment" }

func (e *EnvironmentStore) Get() (string, error) {
	if key := os.Getenv(config.AccessKeyEnv); key != "" {
		return key, nil
	}
	return "", ErrKeyNotFound
}

func (e *EnvironmentStore) Set(string) error { return ErrStoreReadOnly }

func (e *EnvironmentStore) Delete() error { return ErrStoreReadOnly }
