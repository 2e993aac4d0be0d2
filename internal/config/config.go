package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"workpulse/internal/productivity"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "WORKPULSE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Policy    PolicyConfig    `yaml:"policy" envconfig:"POLICY"`
	Sample    SampleConfig    `yaml:"sample" envconfig:"SAMPLE"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// UploadConfig bounds what the analyzer accepts
type UploadConfig struct {
	MaxSizeBytes      int64    `yaml:"max_size_bytes" envconfig:"MAX_SIZE_BYTES"`
	AllowedExtensions []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS"`
	MaxRows           int      `yaml:"max_rows" envconfig:"MAX_ROWS"`
}

// PolicyConfig holds the productivity rule constants
type PolicyConfig struct {
	FullTimeStandardHours float64 `yaml:"fulltime_standard_hours" envconfig:"FULLTIME_STANDARD_HOURS"`
	PartTimeStandardHours float64 `yaml:"parttime_standard_hours" envconfig:"PARTTIME_STANDARD_HOURS"`
	HoursPerLeaveDay      float64 `yaml:"hours_per_leave_day" envconfig:"HOURS_PER_LEAVE_DAY"`
	Threshold             float64 `yaml:"threshold" envconfig:"THRESHOLD"`
	Precision             int     `yaml:"precision" envconfig:"PRECISION"`
}

// Policy converts the configured values into a productivity.Policy
func (p PolicyConfig) Policy() productivity.Policy {
	return productivity.Policy{
		FullTimeStandardHours: p.FullTimeStandardHours,
		PartTimeStandardHours: p.PartTimeStandardHours,
		HoursPerLeaveDay:      p.HoursPerLeaveDay,
		Threshold:             p.Threshold,
		Precision:             p.Precision,
	}
}

// SampleConfig bounds sample roster generation
type SampleConfig struct {
	DefaultCount int `yaml:"default_count" envconfig:"DEFAULT_COUNT"`
	MaxCount     int `yaml:"max_count" envconfig:"MAX_COUNT"`
}

// ReportConfig configures PDF rendering
type ReportConfig struct {
	Title      string        `yaml:"title" envconfig:"TITLE"`
	ChromePath string        `yaml:"chrome_path" envconfig:"CHROME_PATH"`
	PDFTimeout time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT"`
}

// SheetsConfig enables the Google Sheets roster source
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	APIKey          string `yaml:"api_key" envconfig:"API_KEY"`
	DefaultRange    string `yaml:"default_range" envconfig:"DEFAULT_RANGE"`
}

// Enabled reports whether any Sheets credentials are configured
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsFile != "" || s.APIKey != ""
}

// Load reads configuration in order of increasing precedence:
// built-in defaults, the YAML config file, a .env file, then the environment.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified when CORS is enabled")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter)
	}
	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unsupported metric exporter: %q", c.Telemetry.MetricExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be between 0 and 1")
	}

	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}
	if c.Upload.MaxRows <= 0 {
		return fmt.Errorf("upload max rows must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one upload extension must be allowed")
	}
	for i, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Upload.AllowedExtensions[i] = ext
	}

	if c.Sample.DefaultCount <= 0 || c.Sample.MaxCount <= 0 || c.Sample.DefaultCount > c.Sample.MaxCount {
		return fmt.Errorf("sample counts must be positive with default <= max (got %d/%d)", c.Sample.DefaultCount, c.Sample.MaxCount)
	}

	if c.Report.PDFTimeout <= 0 {
		return fmt.Errorf("report pdf timeout must be positive")
	}

	if err := c.Policy.Policy().Validate(); err != nil {
		return err
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none exists
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"workpulse.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/workpulse.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "workpulse",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		Upload: UploadConfig{
			MaxSizeBytes:      10 << 20, // 10MB
			AllowedExtensions: []string{".csv", ".xlsx", ".xls"},
			MaxRows:           100000,
		},
		Policy: PolicyConfig{
			FullTimeStandardHours: productivity.DefaultFullTimeStandardHours,
			PartTimeStandardHours: productivity.DefaultPartTimeStandardHours,
			HoursPerLeaveDay:      productivity.DefaultHoursPerLeaveDay,
			Threshold:             productivity.DefaultThreshold,
			Precision:             productivity.DefaultPrecision,
		},
		Sample: SampleConfig{
			DefaultCount: 100,
			MaxCount:     10000,
		},
		Report: ReportConfig{
			Title:      "Employee Productivity Report",
			PDFTimeout: 30 * time.Second,
		},
		Sheets: SheetsConfig{
			DefaultRange: "A1:F",
		},
	}
}
