package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	errorslib "github.com/goliatone/go-errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-report-export/export"
)

// EnvPrefix is prepended to every environment override, e.g. REPORT_EXPORT_SERVER_ADDRESS.
const EnvPrefix = "REPORT_EXPORT"

// ConfigName is the file looked up in the working directory when no path is given.
const ConfigName = "report-export"

// Server configures the download API listener.
type Server struct {
	Address string `mapstructure:"address"`
}

// Export configures the exporter.
type Export struct {
	TemplateExtension string `mapstructure:"template_extension"`
	TimeParameter     string `mapstructure:"time_parameter"`
	TemplatePrefix    string `mapstructure:"template_prefix"`
	Timezone          string `mapstructure:"timezone"`
	MaxBytes          int64  `mapstructure:"max_bytes"`
}

// S3 holds the bucket settings used when resources.type is s3.
type S3 struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	Prefix         string `mapstructure:"prefix"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// Resources selects where report templates are read from.
type Resources struct {
	Type  string            `mapstructure:"type"`
	Roots map[string]string `mapstructure:"roots"`
	S3    S3                `mapstructure:"s3"`
}

// Database points at the store holding evaluated report requests.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logging configures the CLI logger.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full service configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Export    Export    `mapstructure:"export"`
	Resources Resources `mapstructure:"resources"`
	Database  Database  `mapstructure:"database"`
	Logging   Logging   `mapstructure:"logging"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Server: Server{Address: ":8080"},
		Export: Export{
			TemplateExtension: export.DefaultTemplateExtension,
			TimeParameter:     export.DefaultTimeParameter,
			TemplatePrefix:    "reports",
		},
		Resources: Resources{
			Type:  "fs",
			Roots: map[string]string{},
			S3:    S3{Region: "us-east-1"},
		},
		Database: Database{DSN: "file:report-export.db?cache=shared"},
		Logging:  Logging{Level: "info", Format: "text"},
	}
}

// Load reads configuration from path (or ./report-export.yaml when path is empty),
// applies REPORT_EXPORT_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v, Defaults())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Resources.Roots == nil {
		cfg.Resources.Roots = map[string]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.address", d.Server.Address)

	v.SetDefault("export.template_extension", d.Export.TemplateExtension)
	v.SetDefault("export.time_parameter", d.Export.TimeParameter)
	v.SetDefault("export.template_prefix", d.Export.TemplatePrefix)
	v.SetDefault("export.timezone", d.Export.Timezone)
	v.SetDefault("export.max_bytes", d.Export.MaxBytes)

	v.SetDefault("resources.type", d.Resources.Type)
	v.SetDefault("resources.roots", d.Resources.Roots)
	v.SetDefault("resources.s3.region", d.Resources.S3.Region)
	v.SetDefault("resources.s3.bucket", d.Resources.S3.Bucket)
	v.SetDefault("resources.s3.endpoint", d.Resources.S3.Endpoint)
	v.SetDefault("resources.s3.access_key", d.Resources.S3.AccessKey)
	v.SetDefault("resources.s3.secret_key", d.Resources.S3.SecretKey)
	v.SetDefault("resources.s3.prefix", d.Resources.S3.Prefix)
	v.SetDefault("resources.s3.force_path_style", d.Resources.S3.ForcePathStyle)

	v.SetDefault("database.dsn", d.Database.DSN)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return invalid("server.address is required", "SERVER_ADDRESS_REQUIRED")
	}
	if strings.TrimSpace(c.Export.TemplateExtension) == "" {
		return invalid("export.template_extension is required", "TEMPLATE_EXTENSION_REQUIRED")
	}
	if c.Export.MaxBytes < 0 {
		return invalid("export.max_bytes must not be negative", "MAX_BYTES_INVALID")
	}
	if _, err := c.Location(); err != nil {
		return invalid(fmt.Sprintf("export.timezone %q is unknown", c.Export.Timezone), "TIMEZONE_INVALID")
	}

	switch c.Resources.Type {
	case "fs":
	case "s3":
		if strings.TrimSpace(c.Resources.S3.Bucket) == "" {
			return invalid("resources.s3.bucket is required for s3 resources", "S3_BUCKET_REQUIRED")
		}
	default:
		return invalid(fmt.Sprintf("resources.type %q must be fs or s3", c.Resources.Type), "RESOURCES_TYPE_INVALID")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format), "LOGGING_FORMAT_INVALID")
	}
	return nil
}

// Location resolves the export timezone. An empty value returns nil so
// dates keep the zone they were recorded in.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Export.Timezone) == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Export.Timezone)
}

func invalid(msg, code string) error {
	return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode(code)
}
