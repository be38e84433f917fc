package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"unsplashfetch/pkg/auth"
	"unsplashfetch/pkg/config"
)

type testApp struct {
	app        *app
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
	keyLookups int
}

// isolate points HOME and XDG_CONFIG_HOME at a fresh directory, swaps in
// the in-memory keyring and runs the test from an empty working directory,
// so no user config, .env file or stored key leaks in or gets written.
// It returns the temporary home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(config.AccessKeyEnv, "")
	t.Setenv(auth.PassphraseEnv, "")
	keyring.MockInit()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func newTestApp(t *testing.T, stores ...auth.KeyStore) *testApp {
	t.Helper()
	isolate(t)
	ta := &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	ta.app = &app{
		stdout: ta.stdout,
		stderr: ta.stderr,
		keyManager: func() (*auth.Manager, error) {
			ta.keyLookups++
			return auth.NewManagerWithStores(stores...), nil
		},
	}
	return ta
}

func (ta *testApp) execute(args ...string) error {
	cmd := ta.app.rootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

// fakeUnsplash serves /photos/random and the image URLs it hands out.
// Requests numbered in failAt get a 403.
func fakeUnsplash(t *testing.T, failAt ...int64) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/photos/random", func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Query().Get("client_id") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		for _, f := range failAt {
			if n == f {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, "Rate Limit Exceeded")
				return
			}
		}
		fmt.Fprintf(w, `{"id":"p%d","urls":{"regular":"%s/photo-%d.jpg"}}`, n, server.URL, n)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "image"+r.URL.Path)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func TestWrongArgumentCount(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"two arguments", []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := fakeUnsplash(t)
			t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
			dir := filepath.Join(t.TempDir(), "images")

			ta := newTestApp(t)
			err := ta.execute(append([]string{"--output", dir}, tt.args...)...)
			require.Error(t, err)

			assert.Contains(t, err.Error(), "expected exactly one argument")
			output := ta.stdout.String() + ta.stderr.String()
			assert.Contains(t, output, "Usage:")
			assert.Contains(t, output, "unsplashfetch [flags] <num>")
			assert.NoDirExists(t, dir)
			assert.Equal(t, int64(0), calls.Load())
			assert.Equal(t, 0, ta.keyLookups)
		})
	}
}

func TestRunExitCodes(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "images")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--output", dir}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
	assert.NoDirExists(t, dir)

	stdout.Reset()
	stderr.Reset()
	code = run(context.Background(), []string{"version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "unsplashfetch "+version)
}

func TestRunWithoutKeyWritesNothingUnderHome(t *testing.T) {
	home := isolate(t)
	server, calls := fakeUnsplash(t)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	dir := filepath.Join(t.TempDir(), "images")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--output", dir, "1"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Failed to fetch image 1\n", stdout.String())
	assert.Equal(t, int64(1), calls.Load())

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoDirExists(t, filepath.Join(home, ".config", "unsplashfetch"))
}

func TestNonNumericCount(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t)
	err := ta.execute("--output", dir, "five")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "invalid image count")
	assert.NotContains(t, ta.stdout.String()+ta.stderr.String(), "Usage:")
	assert.NoDirExists(t, dir)
}

func TestFetchSavesImages(t *testing.T) {
	server, calls := fakeUnsplash(t)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t)
	t.Setenv(config.AccessKeyEnv, "test-key")
	require.NoError(t, ta.execute("--output", dir, "3"))

	assert.Equal(t, int64(3), calls.Load())
	assert.Empty(t, ta.stdout.String())
	assert.Equal(t, 0, ta.keyLookups)

	for i := 1; i <= 3; i++ {
		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("image_%d.jpg", i)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("image/photo-%d.jpg", i), string(data))
	}
}

func TestFetchReportsFailedIndex(t *testing.T) {
	server, _ := fakeUnsplash(t, 2)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	dir := filepath.Join(t.TempDir(), "images")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image_9.jpg"), []byte("old"), 0644))

	ta := newTestApp(t)
	t.Setenv(config.AccessKeyEnv, "test-key")
	require.NoError(t, ta.execute("--output", dir, "3"))

	assert.Equal(t, "Failed to fetch image 2\n", ta.stdout.String())
	assert.FileExists(t, filepath.Join(dir, "image_1.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "image_2.jpg"))
	assert.FileExists(t, filepath.Join(dir, "image_3.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "image_9.jpg"))
}

func TestFetchWithoutKey(t *testing.T) {
	server, calls := fakeUnsplash(t)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	t.Setenv(config.AccessKeyEnv, "")
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t, auth.NewMockStore("mock", ""))
	require.NoError(t, ta.execute("--output", dir, "2"))

	assert.Equal(t, 1, ta.keyLookups)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, "Failed to fetch image 1\nFailed to fetch image 2\n", ta.stdout.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchUsesStoredKey(t *testing.T) {
	server, _ := fakeUnsplash(t)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	t.Setenv(config.AccessKeyEnv, "")
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t, auth.NewMockStore("mock", "test-key"))
	require.NoError(t, ta.execute("--output", dir, "1"))

	assert.Empty(t, ta.stdout.String())
	assert.FileExists(t, filepath.Join(dir, "image_1.jpg"))
}

func TestFetchVerboseSummary(t *testing.T) {
	server, _ := fakeUnsplash(t)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t)
	t.Setenv(config.AccessKeyEnv, "test-key")
	require.NoError(t, ta.execute("--verbose", "--output", dir, "2"))

	out := ta.stdout.String()
	assert.Contains(t, out, "Saved image 1")
	assert.Contains(t, out, "Saved image 2")
	assert.Contains(t, out, "Fetched 2 of 2 images (0 failed")
	assert.Contains(t, out, "On disk: 2 files in "+dir)
	assert.NotContains(t, out, "Failed:")
}

func TestFetchVerboseListsFailedIndices(t *testing.T) {
	server, _ := fakeUnsplash(t, 2, 4)
	t.Setenv("UNSPLASHFETCH_API_URL", server.URL)
	dir := filepath.Join(t.TempDir(), "images")

	ta := newTestApp(t)
	t.Setenv(config.AccessKeyEnv, "test-key")
	require.NoError(t, ta.execute("--verbose", "--output", dir, "4"))

	out := ta.stdout.String()
	assert.Contains(t, out, "Fetched 2 of 4 images (2 failed")
	assert.Contains(t, out, "Failed: 2, 4")
	assert.Contains(t, out, "On disk: 2 files in "+dir)
}

func TestRunPrintsFatalErrorOnStderr(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"five"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), "Error: "))
	assert.Contains(t, stderr.String(), `invalid image count "five"`)
	assert.Empty(t, stdout.String())
}

func TestAuthStatus(t *testing.T) {
	t.Setenv(config.AccessKeyEnv, "")

	ta := newTestApp(t, auth.NewMockStore("mock", "abcd1234efgh5678"))
	require.NoError(t, ta.execute("auth", "status"))

	out := ta.stdout.String()
	assert.Contains(t, out, "Stores: mock")
	assert.Contains(t, out, "Access key: abcd...5678")
	assert.Contains(t, out, "Source: mock")
	assert.NotContains(t, out, "abcd1234efgh5678")
}

func TestAuthStatusNotConfigured(t *testing.T) {
	ta := newTestApp(t, auth.NewMockStore("mock", ""))
	require.NoError(t, ta.execute("auth", "status"))
	assert.Contains(t, ta.stdout.String(), "Access key: not configured")
}

func TestAuthSetAndDelete(t *testing.T) {
	store := auth.NewMockStore("mock", "")
	ta := newTestApp(t, auth.NewReadOnlyMockStore("env", ""), store)

	cmd := ta.app.rootCmd()
	cmd.SetIn(strings.NewReader("my-new-key\n"))
	cmd.SetArgs([]string{"auth", "set"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	key, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "my-new-key", key)
	assert.Contains(t, ta.stdout.String(), "Access key stored in: mock")

	ta.stdout.Reset()
	require.NoError(t, ta.execute("auth", "delete"))
	assert.Contains(t, ta.stdout.String(), "Access key: deleted")

	_, err = store.Get()
	assert.ErrorIs(t, err, auth.ErrKeyNotFound)

	ta.stdout.Reset()
	require.NoError(t, ta.execute("auth", "delete"))
	assert.Contains(t, ta.stdout.String(), "none stored")
}

func TestAuthSetRejectsEmptyKey(t *testing.T) {
	ta := newTestApp(t, auth.NewMockStore("mock", ""))

	cmd := ta.app.rootCmd()
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{"auth", "set"})
	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidKey)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	ta := newTestApp(t)
	t.Setenv(config.AccessKeyEnv, "secretkey-1234567")
	require.NoError(t, ta.execute("config", "init", "--config", path))
	assert.FileExists(t, path)

	err := ta.execute("config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	ta.stdout.Reset()
	require.NoError(t, ta.execute("config", "show", "--config", path, "--output", "pics"))
	out := ta.stdout.String()
	assert.Contains(t, out, "directory: pics")
	assert.Contains(t, out, "secr...4567")
	assert.NotContains(t, out, "secretkey-1234567")
}
