package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSaveDatasets_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveDatasets(path, []string{"a", "b"}))

	cfg := loadConfig(t, path)
	require.Equal(t, []string{"a", "b"}, cfg.Collection.Datasets)
}

func TestSaveDatasets_PreservesOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SaveDatasets(path, []string{"s1", "s2"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "# In-process info cache")
	require.Contains(t, content, "# Training command construction")

	cfg := loadConfig(t, path)
	require.Equal(t, []string{"s1", "s2"}, cfg.Collection.Datasets)
	require.Equal(t, "default", cfg.Collection.Name)
	require.Equal(t, "python3", cfg.Launch.Program)
}

func TestSaveDatasets_ReplacesExistingList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := "collection:\n  name: mine\n  datasets:\n    - a\n    - b\n    - c\nruns:\n  - name: r\n    batch_size: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(initial), 0600))

	require.NoError(t, SaveDatasets(path, []string{"c", "a"}))

	cfg := loadConfig(t, path)
	require.Equal(t, []string{"c", "a"}, cfg.Collection.Datasets)
	require.Equal(t, "mine", cfg.Collection.Name)
	require.Len(t, cfg.Runs, 1)
}

func TestSaveDatasets_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collection:\n  datasets: [a]\n"), 0600))

	require.NoError(t, SaveDatasets(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "datasets: []")
}

func TestSaveDatasets_QuotesAmbiguousNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveDatasets(path, []string{"2019", "007"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"2019"`)
	require.Equal(t, []string{"2019", "007"}, loadConfig(t, path).Collection.Datasets)
}

func TestSaveDatasets_RejectsNonMappingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0600))

	err := SaveDatasets(path, []string{"a"})

	require.ErrorContains(t, err, "not a mapping")
}

func TestSaveDatasets_AtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, SaveDatasets(path, []string{"a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), ".runmanager.yaml.tmp"), "temp file left behind: %s", e.Name())
	}
}
