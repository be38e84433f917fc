package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"unsplashfetch/pkg/config"
)

func TestManagerResolveOrder(t *testing.T) {
	env := NewReadOnlyMockStore("environment", "")
	ring := NewMockStore("keyring", "ring-key")
	file := NewMockStore("encrypted file", "file-key")
	manager := NewManagerWithStores(env, ring, file)

	key, source, err := manager.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "ring-key", key)
	assert.Equal(t, "keyring", source)

	ring.GetError = errors.New("locked")
	key, source, err = manager.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "file-key", key)
	assert.Equal(t, "encrypted file", source)
}

func TestManagerResolveNotFound(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore("a", ""), NewMockStore("b", ""))

	_, _, err := manager.Resolve()
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestManagerStoreSkipsReadOnly(t *testing.T) {
	env := NewReadOnlyMockStore("environment", "")
	ring := NewMockStore("keyring", "")
	manager := NewManagerWithStores(env, ring)

	name, err := manager.Store("new-key")
	require.NoError(t, err)
	assert.Equal(t, "keyring", name)

	key, err := ring.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-key", key)
}

func TestManagerStoreFallsBack(t *testing.T) {
	ring := NewMockStore("keyring", "")
	ring.SetError = errors.New("keyring locked")
	file := NewMockStore("encrypted file", "")
	manager := NewManagerWithStores(ring, file)

	name, err := manager.Store("new-key")
	require.NoError(t, err)
	assert.Equal(t, "encrypted file", name)
}

func TestManagerStoreErrors(t *testing.T) {
	_, err := NewManagerWithStores(NewMockStore("a", "")).Store("")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewManagerWithStores(NewReadOnlyMockStore("env", "")).Store("k")
	assert.Error(t, err)

	broken := NewMockStore("a", "")
	broken.SetError = errors.New("disk full")
	_, err = NewManagerWithStores(broken).Store("k")
	assert.ErrorContains(t, err, "disk full")
}

func TestManagerDelete(t *testing.T) {
	env := NewReadOnlyMockStore("environment", "env-key")
	ring := NewMockStore("keyring", "ring-key")
	file := NewMockStore("encrypted file", "")
	manager := NewManagerWithStores(env, ring, file)

	require.NoError(t, manager.Delete())
	_, err := ring.Get()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.ErrorIs(t, manager.Delete(), ErrKeyNotFound)
	assert.Equal(t, []string{"environment", "keyring", "encrypted file"}, manager.Stores())
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(config.AccessKeyEnv, "")
	_, err := store.Get()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	t.Setenv(config.AccessKeyEnv, "env-key")
	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	assert.ErrorIs(t, store.Set("x"), ErrStoreReadOnly)
	assert.ErrorIs(t, store.Delete(), ErrStoreReadOnly)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	_, err = store.Get()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set("ring-key"))
	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "ring-key", key)

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), ErrKeyNotFound)
	assert.ErrorIs(t, store.Set(""), ErrInvalidKey)
}

func TestEncryptedFileStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(PassphraseEnv, "")

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)

	_, err = store.Get()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set("secret-access-key"))

	raw, err := os.ReadFile(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-access-key")

	reopened, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	key, err := reopened.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret-access-key", key)

	require.NoError(t, store.Delete())
	assert.ErrorIs(t, store.Delete(), ErrKeyNotFound)
}

func TestEncryptedFileStoreLookupLeavesDiskAlone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "unsplashfetch")
	t.Setenv(PassphraseEnv, "")

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)

	_, err = store.Get()
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, store.Delete(), ErrKeyNotFound)
	assert.NoDirExists(t, dir)

	require.NoError(t, store.Set("secret"))
	assert.FileExists(t, filepath.Join(dir, ".passphrase"))
	assert.FileExists(t, filepath.Join(dir, "credentials.enc"))
}

func TestKeyringStoreUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no dbus session"))
	t.Cleanup(keyring.MockInit)

	_, err := NewKeyringStore()
	assert.Error(t, err)
}

func TestKeyringStoreLeavesExistingKey(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, keyringUser, "existing"))

	store, err := NewKeyringStore()
	require.NoError(t, err)

	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "existing", key)
	require.NoError(t, store.Delete())
}

func TestNewManagerCreatesNothing(t *testing.T) {
	keyring.MockInit()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(PassphraseEnv, "")
	t.Setenv(config.AccessKeyEnv, "")

	manager, err := NewManager()
	require.NoError(t, err)

	_, _, err = manager.Resolve()
	assert.ErrorIs(t, err, ErrKeyNotFound)

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("secret"))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Get()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "********", MaskKey("short"))
	assert.Equal(t, "abcd...wxyz", MaskKey("abcdefghijklmnopqrstuvwxyz"))
}
