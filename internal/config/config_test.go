package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/puppetrec/internal/codegen"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, "127.0.0.1:8123", cfg.Address)
	assert.Equal(t, codegen.DefaultOptions(), cfg.Options())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("PUPPETREC_LOG_LEVEL", "debug")
	t.Setenv("PUPPETREC_ADDRESS", "0.0.0.0:9000")
	t.Setenv("PUPPETREC_DB_PATH", "/tmp/rec.db")
	t.Setenv("PUPPETREC_HEADLESS", "false")
	t.Setenv("PUPPETREC_CUSTOM_LINE_AFTER_CLICK", "await page.waitForTimeout(100)")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", cfg.Address)
	assert.Equal(t, "/tmp/rec.db", cfg.DBPath)

	opts := cfg.Options()
	assert.False(t, opts.Headless)
	assert.Equal(t, "await page.waitForTimeout(100)", opts.CustomLineAfterClick)
	assert.True(t, opts.WrapAsync, "unset options keep their defaults")
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("PUPPETREC_LOG_LEVEL", "verbose")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadOptionsFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "options.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("wrapAsync: false\nblankLinesBetweenBlocks: false\ndataAttribute: data-test data-qa\n"), 0o644))

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	opts := cfg.Options()
	assert.False(t, opts.WrapAsync)
	assert.False(t, opts.BlankLinesBetweenBlocks)
	assert.Equal(t, "data-test data-qa", opts.DataAttribute)
	assert.True(t, opts.Headless)

	jsonPath := filepath.Join(dir, "options.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"headless": false, "waitForNavigation": false}`), 0o644))

	overrides, err := ReadOptionsFile(jsonPath)
	require.NoError(t, err)
	require.NotNil(t, overrides.Headless)
	assert.False(t, *overrides.Headless)
	assert.Nil(t, overrides.WrapAsync)
}

func TestOptionsPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: false\nwrapAsync: false\n"), 0o644))
	t.Setenv("PUPPETREC_HEADLESS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	wrap := true
	opts := cfg.Options(codegen.Overrides{WrapAsync: &wrap})
	assert.True(t, opts.Headless, "environment beats the options file")
	assert.True(t, opts.WrapAsync, "explicit overrides beat the options file")
}

func TestLoadMissingOptionsFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidDataAttributePattern(t *testing.T) {
	t.Setenv("PUPPETREC_DATA_ATTRIBUTE", "data-(test")
	t.Setenv("PUPPETREC_USE_REGEX_FOR_DATA_ATTRIBUTE", "true")

	_, err := Load("")
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8123", cfg.Address)
	assert.NoError(t, cfg.Validate())
}

func TestAttributeMatcher(t *testing.T) {
	tests := []struct {
		name      string
		opts      codegen.Options
		attribute string
		want      bool
	}{
		{"empty list", codegen.Options{}, "data-test", false},
		{"exact name", codegen.Options{DataAttribute: "data-test data-qa"}, "data-qa", true},
		{"no partial match", codegen.Options{DataAttribute: "data-test"}, "data-test-id", false},
		{"regex", codegen.Options{DataAttribute: "^data-(test|qa)$", UseRegexForDataAttribute: true}, "data-qa", true},
		{"regex miss", codegen.Options{DataAttribute: "^data-(test|qa)$", UseRegexForDataAttribute: true}, "data-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewAttributeMatcher(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.attribute))
		})
	}
}

func TestAttributeMatcherNames(t *testing.T) {
	m, err := NewAttributeMatcher(codegen.Options{DataAttribute: "  data-test   data-qa "})
	require.NoError(t, err)
	assert.Equal(t, []string{"data-test", "data-qa"}, m.Names())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PUPPETREC_BLANK_LINES_BETWEEN_BLOCKS=false\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { os.Unsetenv("PUPPETREC_BLANK_LINES_BETWEEN_BLOCKS") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Options().BlankLinesBetweenBlocks)
}
