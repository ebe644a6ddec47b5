package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{MaxWorkers: 2, QueueSize: 10},
		GitHub: GitHubConfig{WebhookSecret: "s3cret", Token: "ghp_token"},
		Detector: DetectorConfig{
			ModelPath:           "models/vuln_model.json",
			Threshold:           0.5,
			Extensions:          []string{".py"},
			FileConcurrency:     4,
			CollaboratorTimeout: time.Second,
		},
	}
}

func TestValidateForServer(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid with token", mutate: func(*Config) {}},
		{
			name: "valid with app credentials",
			mutate: func(c *Config) {
				c.GitHub.Token = ""
				c.GitHub.AppID = 42
				c.GitHub.PrivateKeyPath = "key.pem"
			},
		},
		{name: "missing webhook secret", mutate: func(c *Config) { c.GitHub.WebhookSecret = "" }, wantErr: true},
		{name: "no credentials", mutate: func(c *Config) { c.GitHub.Token = "" }, wantErr: true},
		{name: "app id without key", mutate: func(c *Config) { c.GitHub.Token = ""; c.GitHub.AppID = 42 }, wantErr: true},
		{name: "threshold zero", mutate: func(c *Config) { c.Detector.Threshold = 0 }, wantErr: true},
		{name: "threshold above one", mutate: func(c *Config) { c.Detector.Threshold = 1.2 }, wantErr: true},
		{name: "threshold one is allowed", mutate: func(c *Config) { c.Detector.Threshold = 1 }},
		{name: "missing model", mutate: func(c *Config) { c.Detector.ModelPath = "" }, wantErr: true},
		{name: "extension without dot", mutate: func(c *Config) { c.Detector.Extensions = []string{"py"} }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Server.MaxWorkers = 0 }, wantErr: true},
		{name: "no queue", mutate: func(c *Config) { c.Server.QueueSize = 0 }, wantErr: true},
		{name: "no file concurrency", mutate: func(c *Config) { c.Detector.FileConcurrency = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.ValidateForServer()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateForCLIIgnoresGitHub(t *testing.T) {
	cfg := validConfig()
	cfg.GitHub = GitHubConfig{}
	assert.NoError(t, cfg.ValidateForCLI())
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_WEBHOOK_SECRET", "from-env")
	t.Setenv("DETECTOR_THRESHOLD", "0.7")
	t.Setenv("SERVER_MAX_WORKERS", "9")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 9, cfg.Server.MaxWorkers)
	assert.Equal(t, "from-env", cfg.GitHub.WebhookSecret)
	assert.InDelta(t, 0.7, cfg.Detector.Threshold, 1e-9)
	assert.Equal(t, []string{".py"}, cfg.Detector.Extensions)
	assert.Equal(t, 15*time.Second, cfg.Detector.CollaboratorTimeout)
	assert.Equal(t, ".hybrid-warden.yml", cfg.Detector.RepoConfigPath)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yamlConfig := `
server:
  port: "9090"
detector:
  threshold: 0.65
  extensions: [".py", ".pyw"]
slack:
  webhook_url: "https://hooks.slack.com/services/T000/B000/XXX"
database:
  host: "db.internal"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlConfig), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.InDelta(t, 0.65, cfg.Detector.Threshold, 1e-9)
	assert.Equal(t, []string{".py", ".pyw"}, cfg.Detector.Extensions)
	assert.Equal(t, "https://hooks.slack.com/services/T000/B000/XXX", cfg.Slack.WebhookURL)
	assert.True(t, cfg.Database.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal port=5432")
}

func TestDetectorMatches(t *testing.T) {
	d := DetectorConfig{Extensions: []string{".py"}}
	assert.True(t, d.Matches("app/views.py"))
	assert.True(t, d.Matches("APP/VIEWS.PY"))
	assert.False(t, d.Matches("app/views.pyc"))
	assert.False(t, d.Matches("README.md"))
}

func TestLoadRepoConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadRepoConfig(dir)
	assert.ErrorIs(t, err, ErrConfigNotFound)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.ExcludeDirs)

	content := "exclude_dirs:\n  - migrations\nexclude_paths:\n  - \"scripts/*.py\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultRepoConfigFile), []byte(content), 0600))

	cfg, err = LoadRepoConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"migrations"}, cfg.ExcludeDirs)
	assert.Equal(t, []string{"scripts/*.py"}, cfg.ExcludePaths)
	assert.True(t, cfg.Excludes("scripts/seed.py"))
}

func TestParseRepoConfigInvalid(t *testing.T) {
	_, err := ParseRepoConfig([]byte("exclude_dirs: {not: [a list"))
	assert.ErrorIs(t, err, ErrConfigParsing)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("GITHUB_WEBHOOK_SECRET=dotenv-secret\nDETECTOR_MODEL_PATH=/opt/model.json\n"), 0600))
	t.Setenv("DETECTOR_MODEL_PATH", "/env/model.json")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.GitHub.WebhookSecret)
	assert.Equal(t, "/env/model.json", cfg.Detector.ModelPath)
}

func TestDBConfigEnabled(t *testing.T) {
	assert.False(t, DBConfig{Driver: DriverPostgres}.Enabled())
	assert.True(t, DBConfig{Driver: DriverPostgres, Host: "localhost"}.Enabled())
	assert.False(t, DBConfig{Driver: DriverSQLite, Host: "localhost"}.Enabled())
	assert.True(t, DBConfig{Driver: DriverSQLite, Path: "warden.db"}.Enabled())

	assert.NoError(t, DBConfig{Driver: DriverSQLite}.Validate())
	assert.Error(t, DBConfig{Driver: "mysql"}.Validate())
}
