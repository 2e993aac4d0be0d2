package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workpulse/internal/productivity"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Security.EnableCORS)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Equal(t, []string{".csv", ".xlsx", ".xls"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, productivity.DefaultPolicy(), cfg.Policy.Policy())
	assert.Equal(t, 100, cfg.Sample.DefaultCount)
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 5s
policy:
  threshold: 85
  fulltime_standard_hours: 160
upload:
  allowed_extensions: ["CSV", "xlsx"]
sheets:
  api_key: from-file
`)

	t.Setenv("WORKPULSE_SERVER_PORT", "9191")
	t.Setenv("WORKPULSE_POLICY_PRECISION", "3")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout, "file wins over defaults")
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout, "untouched defaults survive")

	policy := cfg.Policy.Policy()
	assert.Equal(t, 85.0, policy.Threshold)
	assert.Equal(t, 160.0, policy.FullTimeStandardHours)
	assert.Equal(t, 100.0, policy.PartTimeStandardHours)
	assert.Equal(t, 3, policy.Precision)

	assert.Equal(t, []string{".csv", ".xlsx"}, cfg.Upload.AllowedExtensions)
	assert.True(t, cfg.Sheets.Enabled())
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad port", env: map[string]string{"WORKPULSE_SERVER_PORT": "70000"}},
		{name: "bad log level", env: map[string]string{"WORKPULSE_LOGGING_LEVEL": "verbose"}},
		{name: "bad log format", env: map[string]string{"WORKPULSE_LOGGING_FORMAT": "xml"}},
		{name: "bad trace exporter", env: map[string]string{"WORKPULSE_TELEMETRY_TRACE_EXPORTER": "jaeger"}},
		{name: "invalid policy", env: map[string]string{"WORKPULSE_POLICY_PARTTIME_STANDARD_HOURS": "0"}},
		{name: "sample default over max", env: map[string]string{"WORKPULSE_SAMPLE_DEFAULT_COUNT": "20000"}},
		{name: "unparseable env", env: map[string]string{"WORKPULSE_SERVER_PORT": "eighty"}},
		{name: "malformed yaml", file: "server: [oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFilePath_EnvOverride(t *testing.T) {
	t.Setenv("WORKPULSE_CONFIG_FILE", "/etc/workpulse/custom.yaml")
	assert.Equal(t, "/etc/workpulse/custom.yaml", getConfigFilePath())
}

func TestLoadFrom_ExampleFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join("..", "..", "workpulse.example.yaml"))
	require.NoError(t, err)

	defaults := Default()
	defaults.Security.AllowedOrigins = []string{"http://localhost:3000"}
	assert.Equal(t, defaults, cfg)
}
