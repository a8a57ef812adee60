package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfigFromPathMissingFile(t *testing.T) {
	cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfigFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
github:
  token: file-token
pacing:
  min_interval_seconds: 10
  pace_reads: true
retry:
  max_attempts: 5
`)

	cfg, err := LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.GitHub.Token)
	assert.Equal(t, 10*time.Second, cfg.MinInterval())
	assert.True(t, cfg.Pacing.PaceReads)
	assert.Equal(t, 5, cfg.MaxAttempts())
}

func TestLoadConfigFromPathInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "github: [broken")

	_, err := LoadConfigFromPath(path)
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.MinInterval())
	assert.Equal(t, 3, cfg.MaxAttempts())
}

func TestResolveTokenFromEnvironment(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")

	token, err := resolveToken(&Config{}, t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestResolveTokenFromCwdDotenv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	cwd := t.TempDir()
	home := t.TempDir()
	writeFile(t, filepath.Join(cwd, ".env"), "GITHUB_TOKEN=cwd-token\n")
	writeFile(t, filepath.Join(home, ".env"), "GITHUB_TOKEN=home-token\n")

	token, err := resolveToken(&Config{}, cwd, home)
	require.NoError(t, err)
	assert.Equal(t, "cwd-token", token, "the current directory's .env wins over home")
}

func TestResolveTokenFromHomeDotenv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".env"), "GITHUB_TOKEN=home-token\n")

	token, err := resolveToken(&Config{}, t.TempDir(), home)
	require.NoError(t, err)
	assert.Equal(t, "home-token", token)
}

func TestResolveTokenFromConfigFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	token, err := resolveToken(&Config{GitHub: GitHubConfig{Token: "cfg-token"}}, t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "cfg-token", token)
}

func TestResolveTokenEnvironmentWinsOverDotenv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, ".env"), "GITHUB_TOKEN=cwd-token\n")

	token, err := resolveToken(&Config{}, cwd, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestResolveTokenMissingIsError(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	_, err := resolveToken(&Config{}, t.TempDir(), t.TempDir())
	assert.Error(t, err)
}
