package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todolist/internal/store"
)

// isolate runs the test in an empty directory with no TODO_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	for _, name := range []string{
		"TODO_STORE", "TODO_DATA_FILE", "TODO_STORAGE_KEY", "TODO_THEME",
		"TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_SEED_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("TODO_SEED_URL", "")
	os.Unsetenv("TODO_SEED_URL")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, rest, err := Load([]string{"ls"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ls"}, rest)
	assert.Equal(t, StoreJSON, cfg.Store)
	assert.Equal(t, "todos.json", cfg.DataFile)
	assert.Equal(t, store.DefaultKey, cfg.StorageKey)
	assert.Equal(t, DefaultSeedURL, cfg.SeedURL)
	assert.Equal(t, 10*time.Second, cfg.SeedTimeout)
	assert.Equal(t, DefaultTheme, cfg.Theme)
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	dir := isolate(t)
	toml := `
store = "sqlite"
storage_key = "from-file"
theme = "neon"
seed_timeout = "3s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(toml), 0o644))
	t.Setenv("TODO_STORAGE_KEY", "from-env")
	t.Setenv("TODO_THEME", "mono")

	cfg, rest, err := Load([]string{"--theme", "classic", "add", "--not-a-root-flag", "milk"})
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "todos.db", cfg.DataFile)
	assert.Equal(t, "from-env", cfg.StorageKey)
	assert.Equal(t, "classic", cfg.Theme)
	assert.Equal(t, 3*time.Second, cfg.SeedTimeout)
	assert.Equal(t, []string{"add", "--not-a-root-flag", "milk"}, rest)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("TODO_DATA_FILE")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TODO_DATA_FILE=list.json\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TODO_DATA_FILE") })

	cfg, _, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "list.json", cfg.DataFile)
}

func TestLoad_EmptySeedURLDisablesFetch(t *testing.T) {
	isolate(t)

	cfg, _, err := Load([]string{"--seed-url", ""})
	require.NoError(t, err)
	assert.Empty(t, cfg.SeedURL)

	t.Setenv("TODO_SEED_URL", "")
	cfg, _, err = Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.SeedURL)
}

func TestLoad_UnknownStore(t *testing.T) {
	isolate(t)

	_, _, err := Load([]string{"--store", "redis"})
	assert.ErrorIs(t, err, ErrUnknownStore)
}

func TestLoad_BadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("store = "), 0o644))

	_, _, err := Load([]string{"--config", path})
	assert.Error(t, err)
}

func TestLoad_BadSeedTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("TODO_SEED_TIMEOUT", "soon")

	_, _, err := Load(nil)
	assert.Error(t, err)
}

func TestLoad_SeedTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
		want time.Duration
	}{
		{"env seconds", "4", nil, 4 * time.Second},
		{"env duration", "1500ms", nil, 1500 * time.Millisecond},
		{"flag wins over env", "4", []string{"--seed-timeout", "2s"}, 2 * time.Second},
		{"non-positive falls back", "0", nil, DefaultSeedTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("TODO_SEED_TIMEOUT", tt.env)

			cfg, _, err := Load(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SeedTimeout)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
