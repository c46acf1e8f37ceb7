package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisPachulski/sync-and-setup/pkg/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default("/home/analyst")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/home/analyst/production", cfg.Repo.Checkout)
	assert.Equal(t, cfg.Repo.Checkout, cfg.Localize.Root)
	assert.Len(t, cfg.Localize.Rules, 3)
	assert.Len(t, cfg.Extract.FunctionsDests, 4)
	assert.NotEmpty(t, cfg.Conda.Requirements)
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "missing_repo_url",
			mutate:  func(c *config.Config) { c.Repo.URL = "" },
			wantErr: "repo.url is required",
		},
		{
			name:    "missing_checkout",
			mutate:  func(c *config.Config) { c.Repo.Checkout = "" },
			wantErr: "repo.checkout is required",
		},
		{
			name:    "missing_suffixes",
			mutate:  func(c *config.Config) { c.Localize.Suffixes = nil },
			wantErr: "localize.suffixes is required",
		},
		{
			name:    "empty_rule_from",
			mutate:  func(c *config.Config) { c.Localize.Rules[0].From = "" },
			wantErr: "from is required",
		},
		{
			name:    "missing_env_name",
			mutate:  func(c *config.Config) { c.Conda.EnvName = "" },
			wantErr: "conda.env_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DefaultsBranch(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Repo.Branch = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "main", cfg.Repo.Branch)
}

func TestLoadConfig_YAMLLayersOverDefaults(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, ".syncsetup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repo:
  url: https://example.com/org/prod.git
  branch: release
conda:
  env_name: research
`), 0644))

	cfg, err := config.LoadConfig(path, home)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/org/prod.git", cfg.Repo.URL)
	assert.Equal(t, "release", cfg.Repo.Branch)
	assert.Equal(t, "research", cfg.Conda.EnvName)
	// Untouched sections keep their defaults
	assert.Equal(t, filepath.Join(home, "production"), cfg.Repo.Checkout)
	assert.Len(t, cfg.Localize.Rules, 3)
}

func TestLoadConfig_UnknownYAMLFieldRejected(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_field: true\n"), 0644))

	_, err := config.LoadConfig(path, home)
	require.Error(t, err)
}

func TestLoadConfig_JSON(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"docker": {"image": "mysql:9.1.0"}}`), 0644))

	cfg, err := config.LoadConfig(path, home)
	require.NoError(t, err)
	assert.Equal(t, "mysql:9.1.0", cfg.Docker.Image)
}

func TestLoadConfig_HCL(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "cfg.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
repo {
  url    = "https://example.com/org/prod.git"
  branch = "hcl-branch"
}

localize {
  suffixes = ["*.sh"]
  rules = [
    { from = "/remote/keys", to = "/local/keys" },
  ]
}
`), 0644))

	cfg, err := config.LoadConfig(path, home)
	require.NoError(t, err)

	assert.Equal(t, "hcl-branch", cfg.Repo.Branch)
	assert.Equal(t, []string{"*.sh"}, cfg.Localize.Suffixes)
	require.Len(t, cfg.Localize.Rules, 1)
	assert.Equal(t, "/remote/keys", cfg.Localize.Rules[0].From)
	assert.Equal(t, "/local/keys", cfg.Localize.Rules[0].To)
}

func TestLoadConfig_UnsupportedExtension(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	_, err := config.LoadConfig(path, home)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestHomeDir_PrefersOverride(t *testing.T) {
	cfg := config.Default("/custom/home")
	home, err := cfg.HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", home)
}
