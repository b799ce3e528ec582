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
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Store:    StoreConfig{DataPath: "/tmp/homeshelf", Driver: DriverJSON},
		Server:   ServerConfig{Port: "8080"},
		Resolver: ResolverConfig{BaseURL: "https://openlibrary.org", Timeout: 5 * time.Second, Enabled: true},
		Export:   ExportConfig{ReportEnabled: true},
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"

	assert.ErrorContains(t, cfg.Validate(), "invalid environment")
}

func TestValidate_RejectsBadDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "postgres"

	assert.ErrorContains(t, cfg.Validate(), "invalid store driver")
}

func TestValidate_RequiresResolverURLWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Resolver.BaseURL = ""

	assert.ErrorContains(t, cfg.Validate(), "OPENLIBRARY_URL")

	cfg.Resolver.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestCatalogPath_PerDriver(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, filepath.Join("/tmp/homeshelf", "books.json"), cfg.CatalogPath())

	cfg.Store.Driver = DriverSQLite
	assert.Equal(t, filepath.Join("/tmp/homeshelf", "books.db"), cfg.CatalogPath())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("HOMESHELF_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "HOMESHELF_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "HOMESHELF_TEST_KEY", "default"))

	os.Unsetenv("HOMESHELF_TEST_KEY")
	assert.Equal(t, "default", getConfigValue("", "HOMESHELF_TEST_KEY", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "HOMESHELF_UNSET", false))
	assert.False(t, getBoolConfigValue("nope", "HOMESHELF_UNSET", true))
	assert.True(t, getBoolConfigValue("", "HOMESHELF_UNSET", true))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nHOMESHELF_ENV_FILE_KEY=\"quoted\"\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("HOMESHELF_ENV_FILE_KEY") })

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "quoted", os.Getenv("HOMESHELF_ENV_FILE_KEY"))
}

func TestLoadEnvFile_DoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("HOMESHELF_WINS=file\n"), 0o644))
	t.Setenv("HOMESHELF_WINS", "env")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "env", os.Getenv("HOMESHELF_WINS"))
}
