package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// KeyStore is a place an Unsplash access key can be read from and,
// optionally, written to
type KeyStore interface {
	// Name identifies the store in messages
	Name() string

	// Get returns the stored key or ErrKeyNotFound
	Get() (string, error)

	// Set stores the key, or returns ErrStoreReadOnly
	Set(key string) error

	// Delete removes the key, or returns ErrKeyNotFound / ErrStoreReadOnly
	Delete() error
}

// Manager looks up the access key across stores in priority order
type Manager struct {
	stores []KeyStore
}

// NewManager creates the default chain: environment, system keyring, encrypted file
func NewManager() (*Manager, error) {
	stores := []KeyStore{NewEnvironmentStore()}

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit chain
func NewManagerWithStores(stores ...KeyStore) *Manager {
	return &Manager{stores: stores}
}

// Resolve returns the first key found and the name of the store holding it
func (m *Manager) Resolve() (string, string, error) {
	for _, store := range m.stores {
		key, err := store.Get()
		if err == nil && key != "" {
			return key, store.Name(), nil
		}
	}
	return "", "", ErrKeyNotFound
}

// Store saves the key in the first writable store
func (m *Manager) Store(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	var lastErr error
	for _, store := range m.stores {
		err := store.Set(key)
		if err == nil {
			return store.Name(), nil
		}
		if !errors.Is(err, ErrStoreReadOnly) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store access key: %w", lastErr)
	}
	return "", errors.New("no writable key stores")
}

// Delete removes the key from every writable store
func (m *Manager) Delete() error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete()
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrStoreReadOnly), errors.Is(err, ErrKeyNotFound):
		default:
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to delete access key: %w", lastErr)
	}
	if !deleted {
		return ErrKeyNotFound
	}
	return nil
}

// Stores returns the names of the configured stores in priority order
func (m *Manager) Stores() []string {
	names := make([]string, len(m.stores))
	for i, s := range m.stores {
		names[i] = s.Name()
	}
	return names
}

// getConfigDir returns the configuration directory path without creating it
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin", "windows":
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(base, "unsplashfetch")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "unsplashfetch")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "unsplashfetch")
		}
	}

	return configDir, nil
}

// MaskKey masks all but the first 4 and last 4 characters of a key
func MaskKey(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrKeyNotFound   = errors.New("access key not found")
	ErrInvalidKey    = errors.New("invalid access key")
	ErrStoreReadOnly = errors.New("key store is read-only")
)
