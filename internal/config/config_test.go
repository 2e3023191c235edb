package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"pdfmerge/internal/config"
	"pdfmerge/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
merge:
  pattern: "report*.pdf"
  output: "{directory}_merged_{date}.pdf"
  mode: "whole-root"
store:
  root_configs: "/srv/pdfmerge/roots.json"
  components: "/srv/pdfmerge/components.json"
history:
  enabled: true
  path: "/srv/pdfmerge/history.db"
  limit: 5
watch:
  debounce_ms: 250
log:
  debug: true
theme:
  name: "dark"
`
	invalidSyntaxYAML = `
merge:
  pattern: "*.pdf
  output: [unclosed
`
	invalidModeYAML = `
merge:
  mode: "recursive"
`
	sharedStoreYAML = `
store:
  root_configs: "/tmp/same.json"
  components: "/tmp/same.json"
`
	nestedOutputYAML = `
merge:
  output: "out/{directory}.pdf"
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid config", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, "report*.pdf", cfg.Merge.Pattern)
		assert.Equal(t, "{directory}_merged_{date}.pdf", cfg.Merge.Output)
		assert.Equal(t, types.ModeWholeRoot, cfg.SelectionMode())
		assert.Equal(t, "/srv/pdfmerge/roots.json", cfg.Store.RootConfigs)
		assert.Equal(t, "/srv/pdfmerge/components.json", cfg.Store.Components)
		assert.True(t, cfg.History.Enabled)
		assert.Equal(t, 5, cfg.History.Limit)
		assert.Equal(t, 250, cfg.Watch.DebounceMillis)
		assert.True(t, cfg.Log.Debug)
		assert.Equal(t, "dark", cfg.Theme.Name)
		assert.Equal(t, config.GetTheme("dark")["error"], cfg.Theme.Error)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
		require.NoError(t, err, "missing file means defaults")

		defaults := config.New()
		assert.Equal(t, defaults.Merge, cfg.Merge)
		assert.Equal(t, "*.pdf", cfg.Merge.Pattern)
		assert.Equal(t, "{directory}_{date}.pdf", cfg.Merge.Output)
		assert.Equal(t, types.ModePattern, cfg.SelectionMode())
		assert.Equal(t, config.RootConfigFile, filepath.Base(cfg.Store.RootConfigs))
		assert.Equal(t, config.ComponentsFile, filepath.Base(cfg.Store.Components))
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, "merge:\n  pattern: \"*.PDF\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "*.PDF", cfg.Merge.Pattern)
		assert.Equal(t, "{directory}_{date}.pdf", cfg.Merge.Output)
		assert.Equal(t, 1500, cfg.Watch.DebounceMillis)
	})

	t.Run("invalid YAML syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, invalidModeYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "unknown selection mode")
	})

	t.Run("keyspaces must not share a file", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, sharedStoreYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different files")
	})

	t.Run("output template must be a bare name", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, nestedOutputYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a file name")
	})
}

func TestLoadConfigFileOverrides(t *testing.T) {
	t.Run("explicit colours override the named theme", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, "theme:\n  name: \"dark\"\n  error: \"201\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "201", cfg.Theme.Error)
		assert.Equal(t, config.GetTheme("dark")["success"], cfg.Theme.Success)
	})

	t.Run("colours without a theme name start from the default theme", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, "theme:\n  info: \"#00afff\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "#00afff", cfg.Theme.Info)
		assert.Equal(t, config.GetTheme("default")["warning"], cfg.Theme.Warning)
	})

	t.Run("zero debounce is kept", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestYAML(t, "watch:\n  debounce_ms: 0\n"))
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Watch.DebounceMillis)
	})

	t.Run("negative debounce is rejected", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestYAML(t, "watch:\n  debounce_ms: -5\n"))
		assert.Error(t, err)
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"defaults", func(*config.Config) {}, false},
		{"empty pattern", func(c *config.Config) { c.Merge.Pattern = " " }, true},
		{"empty output", func(c *config.Config) { c.Merge.Output = "" }, true},
		{"bad mode", func(c *config.Config) { c.Merge.Mode = "everything" }, true},
		{"alias mode", func(c *config.Config) { c.Merge.Mode = "component" }, false},
		{"history without path", func(c *config.Config) { c.History.Enabled = true; c.History.Path = "" }, true},
		{"negative debounce", func(c *config.Config) { c.Watch.DebounceMillis = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := config.NewTestConfig(dir)
	cfg.Merge.Pattern = "chapter*.pdf"
	cfg.Merge.Mode = "per-directory"
	cfg.History.Enabled = true
	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "chapter*.pdf", loaded.Merge.Pattern)
	assert.Equal(t, types.ModePerDirectory, loaded.SelectionMode())
	assert.Equal(t, cfg.Store, loaded.Store)
	assert.True(t, loaded.History.Enabled)
}

func TestThemes(t *testing.T) {
	for _, name := range config.ListThemes() {
		theme := config.GetTheme(name)
		assert.NotEmpty(t, theme["success"], name)
	}
	assert.Equal(t, config.GetTheme("default"), config.GetTheme("no-such-theme"))
}
